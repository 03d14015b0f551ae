package storage

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofrs/flock"
	"github.com/rs/zerolog"

	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/deps"
	"github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/entities"
	checkererrors "github.com/Conte777/NewsFlow/services/account-checker/internal/domain/checker/errors"
)

const (
	recordExt  = ".json"
	lockDir    = ".locks"
	lockSuffix = ".lock"
)

// RecordStore keeps account records as JSON files on the local filesystem
type RecordStore struct {
	logger zerolog.Logger
}

// NewRecordStore creates a file-backed record store
func NewRecordStore(logger zerolog.Logger) *RecordStore {
	return &RecordStore{
		logger: logger.With().Str("component", "record_store").Logger(),
	}
}

// Read decodes and validates the record at path
func (s *RecordStore) Read(path string) (*entities.AccountRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}

	var record entities.AccountRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	if err := record.Validate(); err != nil {
		return nil, err
	}

	return &record, nil
}

// Write replaces the record at path with an indented UTF-8 encoding.
// The new content is written to a temporary file in the same directory and renamed over path.
func (s *RecordStore) Write(path string, record *entities.AccountRecord) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(record); err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}

	mode := fs.FileMode(0o600)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write record: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to sync record: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close record: %w", err)
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		return fmt.Errorf("failed to set record permissions: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to replace record: %w", err)
	}

	s.logger.Debug().Str("path", path).Msg("Record written")
	return nil
}

// Lock takes a non-blocking exclusive lock on the record.
// Lock files live in a hidden .locks directory beside the record, one per record name.
// They are not removed on unlock; List skips the directory.
func (s *RecordStore) Lock(path string) (func(), error) {
	lockPath := LockPath(path)
	if err := os.MkdirAll(filepath.Dir(lockPath), 0o700); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	lock := flock.New(lockPath)

	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire record lock: %w", err)
	}
	if !ok {
		return nil, checkererrors.ErrRecordBusy
	}

	return func() {
		if err := lock.Unlock(); err != nil {
			s.logger.Warn().Err(err).Str("path", path).Msg("Failed to release record lock")
		}
	}, nil
}

// LockPath returns the lock file guarding the record at path
func LockPath(path string) string {
	return filepath.Join(filepath.Dir(path), lockDir, filepath.Base(path)+lockSuffix)
}

// List walks dir and returns every *.json file, skipping hidden entries
func (s *RecordStore) List(dir string) ([]string, error) {
	var paths []string

	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()
		if path != dir && strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(name), recordExt) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return paths, nil
}

var _ deps.RecordStore = (*RecordStore)(nil)
