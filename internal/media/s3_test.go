package media

import (
	"strings"
	"testing"
)

func TestObjectKey_KeepsExtension(t *testing.T) {
	t.Parallel()

	key := objectKey("Resume Final.PDF")

	if !strings.HasPrefix(key, "users/") {
		t.Errorf("expected users/ prefix, got %s", key)
	}
	if !strings.HasSuffix(key, ".pdf") {
		t.Errorf("expected lowercased .pdf extension, got %s", key)
	}
}

func TestObjectKey_NoExtension(t *testing.T) {
	t.Parallel()

	key := objectKey("README")

	if strings.Contains(key, ".") {
		t.Errorf("expected no extension, got %s", key)
	}
}

func TestObjectKey_Unique(t *testing.T) {
	t.Parallel()

	if objectKey("a.png") == objectKey("a.png") {
		t.Error("keys for identical filenames should not collide")
	}
}
