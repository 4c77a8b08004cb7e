package service

import (
	"errors"

	"pollsapi/internal/domain"
	"pollsapi/internal/model"
)

var (
	ErrIDRequired     = errors.New("id is required")
	ErrNotFound       = errors.New("question not found")
	ErrChoiceNotFound = errors.New("choice not found")
	ErrConflict       = errors.New("question was modified concurrently")
	ErrInvalidInput   = errors.New("invalid input")
	ErrExportDisabled = errors.New("results export is disabled")
)

// translate maps repository and model errors onto the service sentinels.
// Anything unrecognised is returned unchanged.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, domain.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, domain.ErrConflict):
		return ErrConflict
	case errors.Is(err, model.ErrChoiceNotFound):
		return ErrChoiceNotFound
	case errors.Is(err, domain.ErrInvalidIdentity):
		return ErrIDRequired
	}
	return err
}
