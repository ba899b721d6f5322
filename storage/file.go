package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ruteri/land-certificate-registry/interfaces"
)

// FileStore implements a metadata store using the local file system.
// Each record is one JSON file under <baseDir>/records.
type FileStore struct {
	baseDir     string
	recordsDir  string
	log         *slog.Logger
	locationURI string
}

// NewFileStore creates a new file store using the specified base directory.
// It creates the records subdirectory if it doesn't exist.
func NewFileStore(baseDir string, log *slog.Logger) (*FileStore, error) {
	recordsDir := filepath.Join(baseDir, "records")
	if err := os.MkdirAll(recordsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create records directory: %w", err)
	}

	return &FileStore{
		baseDir:     baseDir,
		recordsDir:  recordsDir,
		log:         log,
		locationURI: fmt.Sprintf("file://%s", baseDir),
	}, nil
}

// Get reads a record from disk. Returns ErrRecordNotFound if the file doesn't exist.
func (s *FileStore) Get(ctx context.Context, id interfaces.CertificateID) (interfaces.CertificateRecord, error) {
	filePath := s.getFilePath(id)

	data, err := os.ReadFile(filePath)
	if errors.Is(err, os.ErrNotExist) {
		return interfaces.CertificateRecord{}, interfaces.ErrRecordNotFound
	}
	if err != nil {
		return interfaces.CertificateRecord{}, fmt.Errorf("failed to read file: %w", err)
	}

	s.log.Debug("Read record from file",
		slog.String("path", filePath),
		slog.Int("size", len(data)))

	return decodeRecord(data)
}

// Put writes the record to a temporary file and renames it into place, so readers never
// observe a partially written record.
func (s *FileStore) Put(ctx context.Context, record interfaces.CertificateRecord) error {
	data, err := encodeRecord(record)
	if err != nil {
		return err
	}

	filePath := s.getFilePath(record.ID)

	tmp, err := os.CreateTemp(s.recordsDir, ".record-*")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to move file into place: %w", err)
	}

	s.log.Debug("Stored record in file",
		slog.String("path", filePath),
		slog.String("certificateID", record.ID.String()))

	return nil
}

// Delete removes the record file.
func (s *FileStore) Delete(ctx context.Context, id interfaces.CertificateID) error {
	err := os.Remove(s.getFilePath(id))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove file: %w", err)
	}
	return nil
}

// Available checks if the file store is accessible by verifying the records directory exists.
func (s *FileStore) Available(ctx context.Context) bool {
	_, err := os.Stat(s.recordsDir)
	if err != nil {
		s.log.Debug("File store unavailable", "err", err)
		return false
	}
	return true
}

// Name returns a unique identifier for this store.
func (s *FileStore) Name() string {
	return fmt.Sprintf("file-%s", filepath.Base(s.baseDir))
}

// LocationURI returns the URI that identifies this store.
func (s *FileStore) LocationURI() string {
	return s.locationURI
}

// getFilePath generates a file path for a certificate ID.
func (s *FileStore) getFilePath(id interfaces.CertificateID) string {
	return filepath.Join(s.recordsDir, recordKey(id)+".json")
}
