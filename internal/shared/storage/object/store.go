package object

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"resume-builder/internal/shared/util"
)

// ErrNotFound is returned by Open when no object exists for the key.
var ErrNotFound = errors.New("object not found")

// ObjectStore defines the contract for saving and retrieving binary objects.
type ObjectStore interface {
	SaveWithKey(ctx context.Context, storageKey string, contentType string, r io.Reader) (int64, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
}

// GenerationKey builds the storage key for a generated artifact.
func GenerationKey(generationID, fileName string) (string, error) {
	id := strings.TrimSpace(generationID)
	if id == "" || strings.ContainsAny(id, "/\\") || strings.Contains(id, "..") {
		return "", errors.New("invalid generation id")
	}
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", err
	}
	return path.Join("resumes", id, name), nil
}
