package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to handler errors.
const (
	CodeInvalidMessage = "MDEXPAND_INVALID_MESSAGE"
	CodeCancelled      = "MDEXPAND_RUN_CANCELLED"
	CodeTimedOut       = "MDEXPAND_RUN_TIMED_OUT"
	CodeRunFailed      = "MDEXPAND_RUN_FAILED"
)

type errorKind struct {
	category goerrors.Category
	code     string
	message  string
}

var (
	kindInvalidMessage = errorKind{goerrors.CategoryValidation, CodeInvalidMessage, "invalid document command"}
	kindCancelled      = errorKind{goerrors.CategoryCommand, CodeCancelled, "document run cancelled"}
	kindTimedOut       = errorKind{goerrors.CategoryCommand, CodeTimedOut, "document run timed out"}
	kindRunFailed      = errorKind{goerrors.CategoryCommand, CodeRunFailed, "document run failed"}
)

// classifyRunError picks the kind for an error returned while running.
func classifyRunError(err error) errorKind {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return kindTimedOut
	case errors.Is(err, context.Canceled):
		return kindCancelled
	default:
		return kindRunFailed
	}
}

// tag wraps err with the kind's category and text code. Errors already
// tagged upstream are returned unchanged.
func tag(err error, kind errorKind) error {
	if err == nil {
		return nil
	}
	if goerrors.IsWrapped(err) {
		return err
	}
	return goerrors.Wrap(err, kind.category, kind.message).
		WithTextCode(kind.code)
}

// ErrorCode returns the text code of a tagged error, or "" when err carries
// none.
func ErrorCode(err error) string {
	var tagged *goerrors.Error
	if errors.As(err, &tagged) {
		return tagged.TextCode
	}
	return ""
}
