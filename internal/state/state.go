package state

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tcalmant/nfc-voting/internal/vote"
)

// State is what survives a kiosk restart: the session identity, the vote
// tally and the last association.
type State struct {
	Session    string            `json:"session"`
	StartedAt  time.Time         `json:"started_at"`
	Tally      map[string]int    `json:"tally"`
	Assignment map[string]string `json:"assignment"` // value -> reader ID
}

// Store owns state.json. It also acts as a hub publisher so every vote
// bumps the tally.
type Store struct {
	mu    sync.Mutex
	path  string
	st    State
	dirty bool
}

// LoadOrInit reads state.json, or creates it with a fresh session ID.
func LoadOrInit(path string) (*Store, error) {
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("creating state dir: %w", err)
		}
		st := State{
			Session:   uuid.NewString(),
			StartedAt: time.Now().UTC(),
			Tally:     map[string]int{},
		}
		data, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encoding initial state: %w", err)
		}
		if err := os.WriteFile(path, data, 0o644); err != nil {
			return nil, fmt.Errorf("writing %s: %w", path, err)
		}
		log.Printf("[state] initialized %s, session %s", path, st.Session)
		return &Store{path: path, st: st}, nil
	} else if err != nil {
		return nil, fmt.Errorf("checking %s: %w", path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	if st.Tally == nil {
		st.Tally = map[string]int{}
	}
	if st.Session == "" {
		st.Session = uuid.NewString()
	}
	log.Printf("[state] loaded %s, session %s", path, st.Session)
	return &Store{path: path, st: st}, nil
}

func (s *Store) Session() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.st.Session
}

func (s *Store) SetAssignment(ids map[string]string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Assignment = ids
	s.dirty = true
}

// Snapshot returns a deep copy for the status API.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.st
	out.Tally = make(map[string]int, len(s.st.Tally))
	for k, v := range s.st.Tally {
		out.Tally[k] = v
	}
	out.Assignment = make(map[string]string, len(s.st.Assignment))
	for k, v := range s.st.Assignment {
		out.Assignment[k] = v
	}
	return out
}

func (s *Store) Name() string { return "tally" }

func (s *Store) NotifyVote(rec vote.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.st.Tally[rec.Value]++
	s.dirty = true
	return nil
}

// Save writes state.json if anything changed since the last save.
func (s *Store) Save() error {
	s.mu.Lock()
	if !s.dirty {
		s.mu.Unlock()
		return nil
	}
	data, err := json.MarshalIndent(s.st, "", "  ")
	s.dirty = false
	path := s.path
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("encoding state: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// AutoSave persists the tally on a timer until ctx ends, then once more.
func (s *Store) AutoSave(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			if err := s.Save(); err != nil {
				log.Printf("[state] final save: %v", err)
			}
			return
		case <-ticker.C:
			if err := s.Save(); err != nil {
				log.Printf("[state] save: %v", err)
			}
		}
	}
}
