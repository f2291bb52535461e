package tasks

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"slices"

	"github.com/google/uuid"

	"mytasks/internal/storage"
)

var (
	ErrEmptyTitle         = errors.New("title cannot be empty")
	ErrOutOfRange         = errors.New("task index out of range")
	ErrNotFound           = errors.New("task not found")
	ErrStorageUnavailable = errors.New("storage unavailable")
)

// LoadStatus describes what the last Load found in storage.
type LoadStatus int

const (
	// Fresh means nothing was stored under the key yet.
	Fresh LoadStatus = iota
	Loaded
	// Corrupt means a value was stored but could not be parsed.
	Corrupt
	// Unavailable means the storage read itself failed.
	Unavailable
)

func (s LoadStatus) String() string {
	switch s {
	case Fresh:
		return "fresh"
	case Loaded:
		return "loaded"
	case Corrupt:
		return "corrupt"
	case Unavailable:
		return "unavailable"
	}
	return fmt.Sprintf("LoadStatus(%d)", int(s))
}

// Store owns the canonical task list. Every mutation rewrites the whole list
// under one key before it becomes visible; a failed write leaves the list as it was.
type Store struct {
	kv     storage.KV
	key    string
	list   []Task
	status LoadStatus
	newID  func() string
}

// Open loads the list stored under key.
func Open(kv storage.KV, key string) (*Store, error) {
	if kv == nil {
		return nil, errors.New("tasks: nil storage")
	}
	if key == "" {
		return nil, errors.New("tasks: storage key is empty")
	}
	s := &Store{
		kv:    kv,
		key:   key,
		newID: func() string { return uuid.NewString() },
	}
	s.Load()
	return s, nil
}

// Load re-reads the durable copy. A missing, unreadable or corrupt value
// yields an empty list; LoadStatus tells these cases apart.
func (s *Store) Load() []Task {
	s.list, s.status = s.read()
	return s.Tasks()
}

func (s *Store) read() ([]Task, LoadStatus) {
	raw, ok, err := s.kv.Get(s.key)
	if err != nil {
		log.Printf("tasks: read %q: %v", s.key, err)
		return nil, Unavailable
	}
	if !ok {
		return nil, Fresh
	}
	var list []Task
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		log.Printf("tasks: stored value under %q is corrupt: %v", s.key, err)
		return nil, Corrupt
	}
	out := make([]Task, 0, len(list))
	for _, t := range list {
		t = t.normalized()
		if t.Title == "" {
			continue
		}
		if t.ID == "" {
			t.ID = s.newID()
		}
		out = append(out, t)
	}
	return out, Loaded
}

func (s *Store) LoadStatus() LoadStatus {
	return s.status
}

// Tasks returns a copy of the canonical list.
func (s *Store) Tasks() []Task {
	return slices.Clone(s.list)
}

func (s *Store) Len() int {
	return len(s.list)
}

// Get returns the task with the given id.
func (s *Store) Get(id string) (Task, bool) {
	i := s.indexOf(id)
	if i < 0 {
		return Task{}, false
	}
	return s.list[i], true
}

// Create appends candidate with a fresh id. An empty title is rejected and
// nothing is written.
func (s *Store) Create(candidate Task) ([]Task, error) {
	t := candidate.normalized()
	if t.Title == "" {
		return s.Tasks(), ErrEmptyTitle
	}
	t.ID = s.newID()
	next := append(slices.Clone(s.list), t)
	return s.commit(next)
}

// Update replaces the task at index, keeping its position and id.
func (s *Store) Update(index int, patch Task) ([]Task, error) {
	if err := s.checkIndex(index); err != nil {
		return s.Tasks(), err
	}
	t := patch.normalized()
	if t.Title == "" {
		return s.Tasks(), ErrEmptyTitle
	}
	t.ID = s.list[index].ID
	next := slices.Clone(s.list)
	next[index] = t
	return s.commit(next)
}

// Delete removes the task at index; later tasks shift down by one.
func (s *Store) Delete(index int) ([]Task, error) {
	if err := s.checkIndex(index); err != nil {
		return s.Tasks(), err
	}
	next := slices.Delete(slices.Clone(s.list), index, index+1)
	return s.commit(next)
}

func (s *Store) UpdateByID(id string, patch Task) ([]Task, error) {
	i := s.indexOf(id)
	if i < 0 {
		return s.Tasks(), fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.Update(i, patch)
}

func (s *Store) DeleteByID(id string) ([]Task, error) {
	i := s.indexOf(id)
	if i < 0 {
		return s.Tasks(), fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.Delete(i)
}

// Filter is a read-only projection of the canonical list.
func (s *Store) Filter(c Criteria) []Task {
	return Filter(s.list, c)
}

// SortByState moves every task in target to the front and persists the new order.
func (s *Store) SortByState(target State) ([]Task, error) {
	return s.commit(PartitionByState(s.list, target))
}

// SortByDeadline orders the canonical list by deadline and persists it.
func (s *Store) SortByDeadline() ([]Task, error) {
	return s.commit(SortByDeadline(s.list))
}

func (s *Store) commit(next []Task) ([]Task, error) {
	if next == nil {
		next = []Task{}
	}
	data, err := json.Marshal(next)
	if err != nil {
		return s.Tasks(), err
	}
	if err := s.kv.Set(s.key, string(data)); err != nil {
		log.Printf("tasks: write %q: %v", s.key, err)
		return s.Tasks(), fmt.Errorf("%w: %w", ErrStorageUnavailable, err)
	}
	s.list = next
	return s.Tasks(), nil
}

func (s *Store) checkIndex(index int) error {
	if index < 0 || index >= len(s.list) {
		return fmt.Errorf("%w: %d (have %d tasks)", ErrOutOfRange, index, len(s.list))
	}
	return nil
}

func (s *Store) indexOf(id string) int {
	if id == "" {
		return -1
	}
	return slices.IndexFunc(s.list, func(t Task) bool { return t.ID == id })
}
