// Package identity derives the ids attached to processed documents and runs.
package identity

import (
	"path/filepath"
	"strings"

	hashid "github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// UUID derives a deterministic UUID from a stable key using go-hashid.
func UUID(key string) uuid.UUID {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return uuid.Nil
	}
	uid, err := hashid.NewUUID(trimmed, hashid.WithHashAlgorithm(hashid.SHA256), hashid.WithNormalization(true))
	if err != nil || uid == uuid.Nil {
		return uuid.NewSHA1(uuid.NameSpaceOID, []byte(trimmed))
	}
	return uid
}

// DocumentID is stable for a given file path across runs.
func DocumentID(path string) uuid.UUID {
	cleaned := strings.TrimSpace(path)
	if cleaned == "" {
		return uuid.Nil
	}
	return UUID("mdexpand:document:" + filepath.ToSlash(filepath.Clean(cleaned)))
}

// RunID returns a fresh id correlating the log entries of one invocation.
func RunID() uuid.UUID {
	return uuid.New()
}
