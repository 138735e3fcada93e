package localmedia

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/firelightacademy/protocols-backend/internal/logger"
)

// Store writes generated media (user avatars) under a local directory
// served by the router at /media.
type Store interface {
	Save(key string, r io.Reader) (string, error)
	Delete(key string) error
	PublicURL(key string) string
	Root() string
}

type store struct {
	log  *logger.Logger
	root string
}

func New(log *logger.Logger, root string) (Store, error) {
	slog := log.With("service", "LocalMediaStore")
	root = strings.TrimSpace(root)
	if root == "" {
		root = "media"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create media root: %w", err)
	}
	return &store{log: slog, root: root}, nil
}

func (s *store) Save(key string, r io.Reader) (string, error) {
	clean, err := s.cleanKey(key)
	if err != nil {
		return "", err
	}
	path := filepath.Join(s.root, clean)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("create media dir: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("write media file: %w", err)
	}
	return path, nil
}

func (s *store) Delete(key string) error {
	clean, err := s.cleanKey(key)
	if err != nil {
		return err
	}
	err = os.Remove(filepath.Join(s.root, clean))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *store) PublicURL(key string) string {
	return "/media/" + filepath.ToSlash(strings.TrimPrefix(key, "/"))
}

func (s *store) Root() string {
	return s.root
}

func (s *store) cleanKey(key string) (string, error) {
	clean := filepath.Clean(strings.TrimPrefix(key, "/"))
	if clean == "." || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid media key %q", key)
	}
	return clean, nil
}
