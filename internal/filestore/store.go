package filestore

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

const (
	documentsDir = "documents"
	modulesDir   = "prompt_module"
)

// ErrOutsideRoot is returned for paths that escape the media root.
var ErrOutsideRoot = errors.New("path escapes media root")

// Store manages files under the media root. Paths handed out and accepted
// are relative to the root and use forward slashes.
type Store struct {
	root string
}

// New creates a store rooted at root, creating the directory if needed.
func New(root string) (*Store, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve media root: %w", err)
	}
	if err := os.MkdirAll(abs, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media root: %w", err)
	}
	return &Store{root: abs}, nil
}

// Root returns the absolute media root.
func (s *Store) Root() string {
	return s.root
}

// AbsPath resolves relPath under the media root.
func (s *Store) AbsPath(relPath string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(relPath))
	if clean == "." || filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, relPath)
	}
	return filepath.Join(s.root, clean), nil
}

// SaveDocument writes an uploaded file to documents/<documentID>/<name> and
// returns its relative path.
func (s *Store) SaveDocument(documentID, fileName string, r io.Reader) (string, error) {
	relPath := documentsDir + "/" + documentID + "/" + sanitizeName(fileName)
	abs, err := s.AbsPath(relPath)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0755); err != nil {
		return "", fmt.Errorf("failed to create document directory: %w", err)
	}

	f, err := os.OpenFile(abs, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to create %s: %w", relPath, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(abs)
		return "", fmt.Errorf("failed to write %s: %w", relPath, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(abs)
		return "", fmt.Errorf("failed to close %s: %w", relPath, err)
	}
	return relPath, nil
}

// Open opens a stored file for reading.
func (s *Store) Open(relPath string) (*os.File, error) {
	abs, err := s.AbsPath(relPath)
	if err != nil {
		return nil, err
	}
	return os.Open(abs)
}

// ReadText returns the content of a stored text file.
func (s *Store) ReadText(relPath string) (string, error) {
	abs, err := s.AbsPath(relPath)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", relPath, err)
	}
	return string(data), nil
}

// Remove deletes a stored file and its directory when that becomes empty.
// A missing file is not an error.
func (s *Store) Remove(relPath string) error {
	abs, err := s.AbsPath(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", relPath, err)
	}
	if dir := filepath.Dir(abs); dir != s.root {
		// Fails harmlessly when other files remain.
		_ = os.Remove(dir)
	}
	return nil
}

// sanitizeName keeps the base name and replaces characters that are awkward
// in paths.
func sanitizeName(name string) string {
	name = filepath.Base(filepath.FromSlash(strings.ReplaceAll(name, "\\", "/")))
	name = strings.Map(func(r rune) rune {
		switch {
		case r < 0x20, r == '/', r == '\\', r == ':', r == '*', r == '?', r == '"', r == '<', r == '>', r == '|':
			return '_'
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." {
		return "upload"
	}
	return name
}
