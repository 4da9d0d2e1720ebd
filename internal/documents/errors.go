package documents

import "errors"

var (
	// ErrNoFiles is returned when a request names no files or its patterns
	// match nothing.
	ErrNoFiles = errors.New("documents: no input files")
	// ErrFileNotFound is returned for a literal path that does not exist.
	ErrFileNotFound = errors.New("documents: file not found")
	// ErrNameNeedsSingleFile is returned when an output name is given for
	// more than one input.
	ErrNameNeedsSingleFile = errors.New("documents: output name requires a single input file")
	// ErrUnsupportedPattern is returned for relative patterns leaving the
	// working directory when no base directory is configured.
	ErrUnsupportedPattern = errors.New("documents: unsupported pattern")
)
