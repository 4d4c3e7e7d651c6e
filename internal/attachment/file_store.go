package attachment

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// fileStore implements Store on the local file system.
type fileStore struct {
	dir    string
	logger zerolog.Logger
}

// NewFileStore creates a store that writes below dir.
func NewFileStore(dir string, logger zerolog.Logger) Store {
	return &fileStore{
		dir:    dir,
		logger: logger.With().Str("component", "file-store").Logger(),
	}
}

// Put writes the object below the store directory and returns a file:// URL.
func (s *fileStore) Put(ctx context.Context, obj Object) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target := filepath.Join(s.dir, filepath.FromSlash(obj.Key))
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		s.logger.Error().Err(err).Str("path", target).Msg("failed to create attachment directory")
		return "", fmt.Errorf("failed to create attachment directory: %w", err)
	}

	if err := os.WriteFile(target, obj.Body, 0o644); err != nil {
		s.logger.Error().Err(err).Str("path", target).Msg("failed to write attachment")
		return "", fmt.Errorf("failed to write attachment %s: %w", obj.Key, err)
	}

	abs, err := filepath.Abs(target)
	if err != nil {
		abs = target
	}

	s.logger.Info().
		Str("path", abs).
		Int("size", len(obj.Body)).
		Msg("attachment stored on local file system")

	return "file://" + filepath.ToSlash(abs), nil
}
