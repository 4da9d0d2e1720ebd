package rules

import "errors"

var (
	// ErrInvalidRule reports a rule set outside the admissible shapes. It is
	// fatal: no document is touched when normalization fails.
	ErrInvalidRule = errors.New("rules: invalid rule")
	// ErrContentFailed wraps a failure raised while producing rule content.
	ErrContentFailed = errors.New("rules: content failed")
	// ErrEmptyContent marks a rule that produced no output.
	ErrEmptyContent = errors.New("rules: empty content")
	// ErrDuplicateBuiltin indicates an attempt to register a built-in twice.
	ErrDuplicateBuiltin = errors.New("rules: duplicate builtin")
	// ErrUnknownBuiltin is returned when a rule file names an unregistered built-in.
	ErrUnknownBuiltin = errors.New("rules: unknown builtin")
)
