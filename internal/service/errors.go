package service

import (
	"alcyxob/coaching-app/internal/domain"
	"errors"
	"fmt"
)

// --- Error Definitions ---
// Every sentinel wraps a domain error so handlers can classify it with
// errors.Is without knowing each service's vocabulary.
var (
	ErrUserAlreadyExists    = fmt.Errorf("user with this email already exists: %w", domain.ErrConflict)
	ErrAuthenticationFailed = errors.New("authentication failed: invalid email or password")
	ErrHashingFailed        = errors.New("failed to hash password")
	ErrTokenGeneration      = errors.New("failed to generate authentication token")

	ErrUserNotFound          = fmt.Errorf("user %w", domain.ErrNotFound)
	ErrAthleteNotFound       = fmt.Errorf("athlete %w", domain.ErrNotFound)
	ErrNotAthlete            = fmt.Errorf("%w: user found but is not an athlete", domain.ErrInvalidInput)
	ErrAthleteAlreadyCoached = fmt.Errorf("athlete is already coached by another coach: %w", domain.ErrConflict)
	ErrAthleteNotManaged     = fmt.Errorf("athlete is not on this coach's roster: %w", domain.ErrForbidden)

	ErrTeamNotFound     = fmt.Errorf("team %w", domain.ErrNotFound)
	ErrTeamAccessDenied = fmt.Errorf("access denied to this team: %w", domain.ErrForbidden)

	ErrWorkoutNotFound     = fmt.Errorf("workout %w", domain.ErrNotFound)
	ErrWorkoutAccessDenied = fmt.Errorf("access denied to this workout: %w", domain.ErrForbidden)
	ErrWorkoutExercise     = fmt.Errorf("workout exercise %w", domain.ErrNotFound)
	ErrTemplateHasNoSets   = fmt.Errorf("%w: templates have no athlete to log sets for", domain.ErrInvalidInput)
	ErrNotATemplate        = fmt.Errorf("%w: source workout is not a template", domain.ErrInvalidInput)

	ErrExerciseNotFound     = fmt.Errorf("exercise %w", domain.ErrNotFound)
	ErrExerciseAccessDenied = fmt.Errorf("access denied to modify or delete this exercise: %w", domain.ErrForbidden)
	ErrExerciseNameTaken    = fmt.Errorf("an exercise with this name already exists: %w", domain.ErrConflict)

	ErrNoVideo            = fmt.Errorf("video %w", domain.ErrNotFound)
	ErrStorageUnavailable = errors.New("file storage is not configured")
	ErrUploadURLError     = errors.New("failed to generate upload URL")
	ErrDownloadURLError   = errors.New("failed to generate download URL")
	ErrUploadNotFound     = fmt.Errorf("%w: object was not uploaded", domain.ErrInvalidInput)
	ErrUploadKeyMismatch  = fmt.Errorf("%w: object key was not issued for this exercise", domain.ErrInvalidInput)
	ErrUploadTooLarge     = fmt.Errorf("%w: video exceeds the size limit", domain.ErrInvalidInput)
)

// invalidf builds an input validation error.
func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", domain.ErrInvalidInput, fmt.Sprintf(format, args...))
}
