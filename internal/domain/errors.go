package domain

import "errors"

var (
	ErrSessionNotFound      = errors.New("session not found")
	ErrUniversityNotFound   = errors.New("university not found")
	ErrNarrativeUnavailable = errors.New("narrative service unavailable")
	ErrInvalidPreference    = errors.New("invalid preference")
	ErrEmptyDataset         = errors.New("dataset is empty")
	ErrInvalidDeadline      = errors.New("invalid deadline")
)
