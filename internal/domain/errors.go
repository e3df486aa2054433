package domain

import "errors"

// Domain errors. The progression core treats unknown ids and duplicate
// actions as silent no-ops; these sentinels serve the read and HTTP
// surfaces only.
var (
	ErrPlayerNotFound      = errors.New("player not found")
	ErrQuestNotFound       = errors.New("quest not found")
	ErrAchievementNotFound = errors.New("achievement not found")
	ErrInvalidRequest      = errors.New("invalid request")
	ErrInternalError       = errors.New("internal server error")
)

// IsNotFoundError checks if an error is a not-found type error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrPlayerNotFound) ||
		errors.Is(err, ErrQuestNotFound) ||
		errors.Is(err, ErrAchievementNotFound)
}
