package trainer

import (
	"errors"
	"fmt"

	"github.com/starford/fretwise/internal/apperr"
	"github.com/starford/fretwise/internal/quiz"
	"github.com/starford/fretwise/internal/theory"
)

// classify tags domain errors with the apperr kind the transport maps to a
// status code. Errors already carrying a kind pass through unchanged.
func classify(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, apperr.ErrNotFound),
		errors.Is(err, apperr.ErrInvalid),
		errors.Is(err, apperr.ErrConflict):
		return err
	case errors.Is(err, quiz.ErrSessionNotFound):
		return fmt.Errorf("%w: %w", apperr.ErrNotFound, err)
	case errors.Is(err, theory.ErrUnknownChord),
		errors.Is(err, theory.ErrInvalidPitch),
		errors.Is(err, theory.ErrCellOutOfRange),
		errors.Is(err, theory.ErrInvalidTemplate):
		return fmt.Errorf("%w: %w", apperr.ErrInvalid, err)
	case errors.Is(err, quiz.ErrRoundInProgress),
		errors.Is(err, quiz.ErrRoundComplete),
		errors.Is(err, quiz.ErrWrongMode),
		errors.Is(err, quiz.ErrStoreFull):
		return fmt.Errorf("%w: %w", apperr.ErrConflict, err)
	}
	return err
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", apperr.ErrInvalid, err)
}
