// Package store holds cross-stage wizard state in memory. State lives
// for the process lifetime only; there is deliberately no database
// behind this.
package store

import (
	"errors"
	"sync"
	"time"

	"floorplan-extractor/internal/extraction"
)

var ErrNotFound = errors.New("project not found")

// Project is one user session moving through the sketch → floorplan →
// extraction stages. Only the extraction result matters to this
// pipeline; the other fields are opaque references owned by the
// upstream stages.
type Project struct {
	ID           string             `json:"project_id"`
	SketchURL    string             `json:"sketch_url,omitempty"`
	FloorplanURL string             `json:"floorplan_url,omitempty"`
	Extraction   *extraction.Result `json:"extraction,omitempty"`
	CreatedAt    time.Time          `json:"created_at"`
	UpdatedAt    time.Time          `json:"updated_at"`
}

// MemoryStore is a concurrency-safe project map.
type MemoryStore struct {
	mu       sync.RWMutex
	projects map[string]*Project
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		projects: make(map[string]*Project),
		now:      time.Now,
	}
}

// Create registers a new empty project under id.
func (s *MemoryStore) Create(id string) *Project {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	project := &Project{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.projects[id] = project
	return project
}

// Get returns a copy of the project so callers cannot mutate shared
// state outside the store.
func (s *MemoryStore) Get(id string) (*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	project, ok := s.projects[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *project
	return &copied, nil
}

// SetExtraction attaches an extraction result to the project.
func (s *MemoryStore) SetExtraction(id string, result *extraction.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, ok := s.projects[id]
	if !ok {
		return ErrNotFound
	}
	project.Extraction = result
	project.UpdatedAt = s.now()
	return nil
}

// SetFloorplanURL records the generated floorplan reference.
func (s *MemoryStore) SetFloorplanURL(id, url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	project, ok := s.projects[id]
	if !ok {
		return ErrNotFound
	}
	project.FloorplanURL = url
	project.UpdatedAt = s.now()
	return nil
}

// Delete removes a project; deleting a missing project is not an error.
func (s *MemoryStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.projects, id)
}
