package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/evroutex/fleet-dispatch/internal/models"
)

// FileStore persists the document as a single JSON file. All mutating
// operations are serialized behind an exclusive mutex, which removes the
// load-mutate-save lost-update race on the shared file.
type FileStore struct {
	mu        sync.Mutex
	path      string
	bootstrap Bootstrap
}

// NewFileStore creates a file-backed store. The file is created lazily
// on first access.
func NewFileStore(path string, bootstrap Bootstrap) *FileStore {
	return &FileStore{path: path, bootstrap: bootstrap}
}

// Load returns the current document, healing missing or corrupt state.
func (s *FileStore) Load(ctx context.Context) (*models.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

// Update applies mutate under the store lock and commits the result.
func (s *FileStore) Update(ctx context.Context, mutate func(*models.Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}
	if err := mutate(doc); err != nil {
		return err
	}
	doc.Version++
	return s.save(doc)
}

// load must be called with the lock held.
func (s *FileStore) load() (*models.Document, error) {
	raw, err := os.ReadFile(s.path)
	if err == nil {
		var doc models.Document
		if jsonErr := json.Unmarshal(raw, &doc); jsonErr == nil && valid(&doc) {
			return &doc, nil
		}
		log.WithField("path", s.path).Warn("Resetting corrupted state file")
	} else if !os.IsNotExist(err) {
		log.WithError(err).WithField("path", s.path).Warn("Resetting unreadable state file")
	}

	doc, err := DefaultDocument(s.bootstrap)
	if err != nil {
		return nil, err
	}
	if err := s.save(doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// save writes to a temp file and renames it into place so readers never
// observe a partially written document.
func (s *FileStore) save(doc *models.Document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: encode: %v", ErrPersistence, err)
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: create %s: %v", ErrPersistence, dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".state-*.json")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
