package identity

import (
	"testing"

	"github.com/google/uuid"
)

func TestDocumentIDIsStable(t *testing.T) {
	first := DocumentID("docs/README.md")
	if first == uuid.Nil {
		t.Fatal("expected a non-nil id")
	}
	if again := DocumentID("docs/./README.md"); again != first {
		t.Fatalf("expected cleaned paths to share an id, got %s and %s", first, again)
	}
	if other := DocumentID("CHANGELOG.md"); other == first {
		t.Fatal("expected distinct paths to get distinct ids")
	}
}

func TestDocumentIDBlankPath(t *testing.T) {
	if id := DocumentID("  "); id != uuid.Nil {
		t.Fatalf("expected nil id for blank path, got %s", id)
	}
}

func TestRunIDIsRandom(t *testing.T) {
	if RunID() == RunID() {
		t.Fatal("expected distinct run ids")
	}
}
