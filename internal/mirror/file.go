package mirror

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"miru/internal/models"

	"github.com/rs/zerolog"
)

// FileStore keeps the list in one JSON file.
type FileStore struct {
	path   string
	logger *zerolog.Logger
}

func NewFileStore(path string, logger *zerolog.Logger) *FileStore {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &FileStore{path: path, logger: logger}
}

func (s *FileStore) Path() string { return s.path }

func (s *FileStore) Read(_ context.Context) ([]models.Booking, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return []models.Booking{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read mirror %s: %w", s.path, err)
	}
	return decode(data, s.path, s.logger), nil
}

// Write replaces the file atomically via a temp file in the same directory.
func (s *FileStore) Write(_ context.Context, bookings []models.Booking) error {
	data, err := encode(bookings)
	if err != nil {
		return fmt.Errorf("encode mirror: %w", err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create mirror dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp mirror: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp mirror: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp mirror: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace mirror: %w", err)
	}
	return nil
}
