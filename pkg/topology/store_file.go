package topology

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/golang/snappy"
)

// FileStore persists one snappy-compressed JSON document per project under a
// data directory. Writes go through a temp file and an atomic rename, so a
// crashed or canceled save never leaves a torn document behind.
type FileStore struct {
	dataDir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewFileStore creates a file-backed topology store rooted at dataDir.
func NewFileStore(dataDir string) (*FileStore, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create topology data directory: %w", err)
	}
	return &FileStore{
		dataDir: dataDir,
		locks:   make(map[string]*sync.Mutex),
	}, nil
}

func (s *FileStore) projectLock(projectID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.locks[projectID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[projectID] = lock
	}
	return lock
}

// docPath encodes the project ID so arbitrary IDs cannot escape the data dir.
func (s *FileStore) docPath(projectID string) string {
	safe := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		default:
			return '_'
		}
	}, projectID)
	return filepath.Join(s.dataDir, safe+".topo.snappy")
}

// Save validates and durably writes a document, replacing any prior version.
func (s *FileStore) Save(ctx context.Context, doc *Document) error {
	if err := ValidateDocument(doc); err != nil {
		return err
	}

	lock := s.projectLock(doc.ProjectID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return unavailable("Save", "file", doc.ProjectID, err)
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return &StoreError{Op: "Save", Backend: "file", ProjectID: doc.ProjectID, Cause: err}
	}
	compressed := snappy.Encode(nil, data)

	path := s.docPath(doc.ProjectID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, compressed, 0644); err != nil {
		return unavailable("Save", "file", doc.ProjectID, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return unavailable("Save", "file", doc.ProjectID, err)
	}
	return nil
}

// Load reads the current document for the project, or ok=false when none
// has been saved.
func (s *FileStore) Load(ctx context.Context, projectID string) (*Document, bool, error) {
	if err := ValidateProjectID(projectID); err != nil {
		return nil, false, err
	}

	lock := s.projectLock(projectID)
	lock.Lock()
	defer lock.Unlock()

	if err := ctx.Err(); err != nil {
		return nil, false, unavailable("Load", "file", projectID, err)
	}

	compressed, err := os.ReadFile(s.docPath(projectID))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, unavailable("Load", "file", projectID, err)
	}

	data, err := snappy.Decode(nil, compressed)
	if err != nil {
		return nil, false, &StoreError{Op: "Load", Backend: "file", ProjectID: projectID, Cause: err}
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, false, &StoreError{Op: "Load", Backend: "file", ProjectID: projectID, Cause: err}
	}

	applyDefaultIcons(&doc)
	return &doc, true, nil
}

var _ Store = (*FileStore)(nil)
