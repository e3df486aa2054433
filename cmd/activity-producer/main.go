package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/IBM/sarama"

	"github.com/defi-rpg/engine/internal/domain"
)

var actions = []domain.ActivityType{
	domain.ActivitySwap,
	domain.ActivityLiquidity,
	domain.ActivityStake,
	domain.ActivityBridge,
}

// amountRanges gives each action a plausible USD amount band
var amountRanges = map[domain.ActivityType][2]int{
	domain.ActivitySwap:      {50, 5000},
	domain.ActivityLiquidity: {500, 20000},
	domain.ActivityStake:     {100, 10000},
	domain.ActivityBridge:    {200, 8000},
}

func walletAddress(idx int) string {
	return fmt.Sprintf("0x%040x", idx+1)
}

func randomAmount(action domain.ActivityType) int {
	bounds := amountRanges[action]
	return rand.Intn(bounds[1]-bounds[0]+1) + bounds[0]
}

func randomTxHash() string {
	return fmt.Sprintf("0x%064x", rand.Int63())
}

func main() {
	// Command line flags
	brokers := flag.String("brokers", "localhost:9092", "Kafka brokers (comma-separated)")
	topic := flag.String("topic", "defi-activity", "Kafka topic")
	totalWallets := flag.Int("wallets", 50, "Number of distinct wallets")
	eventsPerSecond := flag.Int("rate", 10, "Activity events per second")
	duration := flag.Duration("duration", 0, "Duration to run (0 = forever)")
	flag.Parse()

	brokerList := strings.Split(*brokers, ",")

	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println("  🚀 DeFi Activity Producer")
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Printf("  Brokers:          %s\n", *brokers)
	fmt.Printf("  Topic:            %s\n", *topic)
	fmt.Printf("  Wallets:          %d\n", *totalWallets)
	fmt.Printf("  Events/sec:       %d\n", *eventsPerSecond)
	fmt.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
	fmt.Println()

	// Configure Sarama producer
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForLocal
	config.Producer.Compression = sarama.CompressionSnappy
	config.Producer.Flush.Frequency = 100 * time.Millisecond
	config.Producer.Flush.Messages = 100
	config.Producer.Return.Successes = true
	config.Producer.Return.Errors = true

	// Create producer
	producer, err := sarama.NewAsyncProducer(brokerList, config)
	if err != nil {
		log.Fatalf("Failed to create producer: %v", err)
	}
	defer producer.Close()

	// Handle producer errors and successes
	var successCount, errorCount int64
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for range producer.Successes() {
			atomic.AddInt64(&successCount, 1)
		}
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for err := range producer.Errors() {
			atomic.AddInt64(&errorCount, 1)
			log.Printf("Producer error: %v", err)
		}
	}()

	// Handle shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})

	sendEvent := func(event domain.ActivityEvent) {
		data, err := json.Marshal(event)
		if err != nil {
			log.Printf("Failed to marshal event: %v", err)
			return
		}

		msg := &sarama.ProducerMessage{
			Topic: *topic,
			Key:   sarama.StringEncoder(event.PlayerAddress),
			Value: sarama.ByteEncoder(data),
		}

		select {
		case producer.Input() <- msg:
		case <-done:
			return
		}
	}

	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	interval := time.Second / time.Duration(*eventsPerSecond)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	statsTicker := time.NewTicker(5 * time.Second)
	defer statsTicker.Stop()

	var endTime time.Time
	if *duration > 0 {
		endTime = time.Now().Add(*duration)
	}

	var eventCount int64

	shutdown := func() {
		close(done)
		producer.AsyncClose()
		wg.Wait()
		fmt.Printf("\n✓ Completed. Sent: %d, Errors: %d\n", atomic.LoadInt64(&successCount), atomic.LoadInt64(&errorCount))
	}

	for {
		select {
		case <-sigChan:
			fmt.Println("\n\nShutting down...")
			shutdown()
			return

		case <-ticker.C:
			if *duration > 0 && time.Now().After(endTime) {
				fmt.Println("\n\nDuration reached, shutting down...")
				shutdown()
				return
			}

			// 70% of events come from the 10 most active wallets
			var walletIdx int
			if rand.Intn(100) < 70 && *totalWallets > 10 {
				walletIdx = rand.Intn(10)
			} else {
				walletIdx = rand.Intn(*totalWallets)
			}

			action := actions[rand.Intn(len(actions))]
			event := domain.ActivityEvent{
				PlayerAddress: walletAddress(walletIdx),
				Action:        action,
				Amount:        randomAmount(action),
				TxHash:        randomTxHash(),
				Timestamp:     time.Now(),
			}
			sendEvent(event)
			atomic.AddInt64(&eventCount, 1)

		case <-statsTicker.C:
			fmt.Printf("[%s] Events: %d | Sent: %d | Errors: %d\n",
				time.Now().Format("15:04:05"),
				atomic.LoadInt64(&eventCount),
				atomic.LoadInt64(&successCount),
				atomic.LoadInt64(&errorCount),
			)
		}
	}
}
