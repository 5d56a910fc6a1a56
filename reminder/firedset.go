package reminder

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"reminder-board/component"
)

// FiredSet remembers which alerts already fired today. Keys of other days
// are never reported as fired.
type FiredSet interface {
	HasFired(key AlertKey) (bool, error)
	MarkFired(key AlertKey) error
	CurrentDayKey() string
}

type MemoryFiredSet struct {
	clock Clock

	mu   sync.Mutex
	day  string
	keys map[string]struct{}
}

func NewMemoryFiredSet(clock Clock) *MemoryFiredSet {
	if clock == nil {
		clock = SystemClock
	}
	return &MemoryFiredSet{clock: clock, keys: map[string]struct{}{}}
}

func (s *MemoryFiredSet) CurrentDayKey() string {
	return component.DayKey(s.clock.Now())
}

func (s *MemoryFiredSet) HasFired(key AlertKey) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if key.Day != s.day {
		return false, nil
	}
	_, ok := s.keys[key.String()]
	return ok, nil
}

func (s *MemoryFiredSet) MarkFired(key AlertKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if key.Day != s.day {
		s.day = key.Day
		s.keys = map[string]struct{}{}
	}
	s.keys[key.String()] = struct{}{}
	return nil
}

// firedFile is the on-disk form of a FileFiredSet.
type firedFile struct {
	Date string   `json:"date"`
	Keys []string `json:"keys"`
}

// FileFiredSet persists the fired keys of the current day in a JSON file so a
// restarted poller does not alert twice.
type FileFiredSet struct {
	path  string
	clock Clock

	mu     sync.Mutex
	loaded bool
	mem    *MemoryFiredSet
}

func NewFileFiredSet(path string, clock Clock) *FileFiredSet {
	if clock == nil {
		clock = SystemClock
	}
	return &FileFiredSet{path: path, clock: clock, mem: NewMemoryFiredSet(clock)}
}

func (s *FileFiredSet) CurrentDayKey() string {
	return component.DayKey(s.clock.Now())
}

func (s *FileFiredSet) load() error {
	if s.loaded {
		return nil
	}
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.loaded = true
			return nil
		}
		return fmt.Errorf("read fired set: %w", err)
	}
	var f firedFile
	if err := json.Unmarshal(b, &f); err != nil {
		// A corrupt file only costs us the memory of today's alerts.
		s.loaded = true
		return nil
	}
	s.mem.day = f.Date
	for _, k := range f.Keys {
		s.mem.keys[k] = struct{}{}
	}
	s.loaded = true
	return nil
}

func (s *FileFiredSet) HasFired(key AlertKey) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return false, err
	}
	return s.mem.HasFired(key)
}

func (s *FileFiredSet) MarkFired(key AlertKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.load(); err != nil {
		return err
	}
	s.mem.MarkFired(key)
	return s.save()
}

func (s *FileFiredSet) save() error {
	s.mem.mu.Lock()
	f := firedFile{Date: s.mem.day, Keys: make([]string, 0, len(s.mem.keys))}
	for k := range s.mem.keys {
		f.Keys = append(f.Keys, k)
	}
	s.mem.mu.Unlock()

	b, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}
	if dir := filepath.Dir(s.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir: %w", err)
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write temp: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("rename: %w", err)
	}
	return nil
}
