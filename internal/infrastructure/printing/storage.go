package printing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ArtifactStore writes rendered artifacts to scratch files for the spooler
type ArtifactStore interface {
	// Save writes the artifact and returns its absolute path
	Save(ctx context.Context, artifact *Artifact) (string, error)
	// Remove deletes a scratch file. Failures are logged, never returned.
	Remove(path string)
	// CleanupOlderThan removes scratch files older than age
	CleanupOlderThan(ctx context.Context, age time.Duration) (int, error)
	// Dir returns the scratch directory
	Dir() string
}

// ScratchStoreConfig contains configuration for the scratch directory store
type ScratchStoreConfig struct {
	// Dir is the scratch directory. Empty means a per-process directory
	// under the OS temp dir.
	Dir    string
	Logger *zap.Logger
}

// ScratchStore keeps artifacts as uniquely named files in one directory
type ScratchStore struct {
	dir    string
	logger *zap.Logger
}

// NewScratchStore creates the scratch directory if needed
func NewScratchStore(config *ScratchStoreConfig) (*ScratchStore, error) {
	if config == nil {
		config = &ScratchStoreConfig{}
	}

	logger := config.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	dir := config.Dir
	if dir == "" {
		tmp, err := os.MkdirTemp("", "labelprint-")
		if err != nil {
			return nil, NewRenderError(ErrCodeStorageFailed, "failed to create scratch directory", err)
		}
		dir = tmp
	} else if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed,
			fmt.Sprintf("failed to create scratch directory: %s", dir), err)
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, NewRenderError(ErrCodeStorageFailed, "failed to resolve scratch directory", err)
	}

	return &ScratchStore{dir: abs, logger: logger}, nil
}

// Dir returns the scratch directory
func (s *ScratchStore) Dir() string {
	return s.dir
}

// Save writes the artifact under a fresh name
func (s *ScratchStore) Save(ctx context.Context, artifact *Artifact) (string, error) {
	select {
	case <-ctx.Done():
		return "", NewRenderError(ErrCodeStorageFailed, "operation cancelled", ctx.Err())
	default:
	}

	if artifact == nil || len(artifact.Data) == 0 {
		return "", NewRenderError(ErrCodeStorageFailed, "artifact is empty", nil)
	}
	if !artifact.Kind.IsValid() {
		return "", NewRenderError(ErrCodeStorageFailed, "unknown artifact kind", nil)
	}

	path := filepath.Join(s.dir, uuid.NewString()+artifact.Kind.Ext())
	if err := os.WriteFile(path, artifact.Data, 0o644); err != nil {
		return "", NewRenderError(ErrCodeStorageFailed, "failed to write artifact", err)
	}

	s.logger.Debug("artifact stored",
		zap.String("path", path),
		zap.String("kind", string(artifact.Kind)),
		zap.Int("size", len(artifact.Data)))
	return path, nil
}

// Remove deletes a scratch file inside the store directory
func (s *ScratchStore) Remove(path string) {
	if !s.owns(path) {
		s.logger.Warn("refusing to remove file outside scratch directory", zap.String("path", path))
		return
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Warn("failed to remove scratch artifact", zap.String("path", path), zap.Error(err))
		return
	}
	s.logger.Debug("artifact removed", zap.String("path", path))
}

// owns reports whether path resolves to a file directly under the store dir
func (s *ScratchStore) owns(path string) bool {
	if containsDotDot(path) {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return strings.HasPrefix(abs, s.dir+string(filepath.Separator))
}

// CleanupOlderThan removes artifacts older than the specified duration
func (s *ScratchStore) CleanupOlderThan(ctx context.Context, age time.Duration) (int, error) {
	cutoff := time.Now().Add(-age)
	deleted := 0

	err := filepath.Walk(s.dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if info.IsDir() {
			return nil
		}
		if ext := filepath.Ext(path); ext != ArtifactPDF.Ext() && ext != ArtifactPNG.Ext() {
			return nil
		}

		if info.ModTime().Before(cutoff) {
			if err := os.Remove(path); err == nil {
				deleted++
				s.logger.Debug("deleted stale artifact", zap.String("path", path))
			}
		}
		return nil
	})

	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		return deleted, NewRenderError(ErrCodeStorageFailed, "cleanup walk failed", err)
	}

	s.logger.Info("scratch cleanup completed",
		zap.Int("deleted", deleted),
		zap.Duration("age", age))
	return deleted, nil
}

// containsDotDot checks if a path contains ".." components
func containsDotDot(path string) bool {
	parts := strings.FieldsFunc(path, func(r rune) bool {
		return r == '/' || r == '\\' || r == filepath.Separator
	})
	return slices.Contains(parts, "..")
}

var _ ArtifactStore = (*ScratchStore)(nil)
