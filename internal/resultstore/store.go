// Package resultstore keeps the latest outcome of each analysis kind. Every
// rerun of a kind overwrites its slot. A store opened on a directory also
// persists the slots as results.json so that later commands (report, serve)
// can pick them up.
package resultstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ctalab/ctaeval/internal/models"
)

// FileName is the name of the persisted snapshot inside the results directory.
const FileName = "results.json"

var (
	// ErrNoResult is returned when a kind has not been run yet.
	ErrNoResult = errors.New("no result for this analysis yet")

	// ErrUnknownKind is returned for a kind that is not an analysis.
	ErrUnknownKind = errors.New("unknown analysis")
)

// Snapshot is the content of all slots at one point in time.
type Snapshot struct {
	Transliteration *models.Outcome[models.TransliterationReport] `json:"transliteration,omitempty"`
	Risk            *models.Outcome[models.RiskReport]            `json:"risk,omitempty"`
	Cognate         *models.Outcome[models.CognateReport]         `json:"cognate,omitempty"`
	Effectiveness   *models.Outcome[models.EffectivenessReport]   `json:"effectiveness,omitempty"`
	UpdatedAt       time.Time                                     `json:"updated_at"`
}

// Empty reports whether no slot is filled.
func (s Snapshot) Empty() bool {
	return s.Transliteration == nil && s.Risk == nil && s.Cognate == nil && s.Effectiveness == nil
}

// Get returns the outcome stored for kind as an untyped value.
func (s Snapshot) Get(kind models.TaskKind) (any, error) {
	var v any
	switch kind {
	case models.TaskTransliteration:
		if s.Transliteration != nil {
			v = s.Transliteration
		}
	case models.TaskRisk:
		if s.Risk != nil {
			v = s.Risk
		}
	case models.TaskCognate:
		if s.Cognate != nil {
			v = s.Cognate
		}
	case models.TaskEffectiveness:
		if s.Effectiveness != nil {
			v = s.Effectiveness
		}
	default:
		return nil, fmt.Errorf("%w %q", ErrUnknownKind, kind)
	}
	if v == nil {
		return nil, ErrNoResult
	}
	return v, nil
}

// Store is safe for concurrent use.
type Store struct {
	dir string
	now func() time.Time

	mu     sync.RWMutex
	snap   Snapshot
	loaded bool
}

// New returns a store. An empty dir keeps results in memory only.
func New(dir string) *Store {
	return &Store{dir: dir, now: time.Now}
}

// Path returns the snapshot file, or "" for an in-memory store.
func (s *Store) Path() string {
	if s.dir == "" {
		return ""
	}
	return filepath.Join(s.dir, FileName)
}

func (s *Store) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Store) loadLocked() error {
	s.snap = Snapshot{}
	if s.dir == "" {
		s.loaded = true
		return nil
	}

	data, err := os.ReadFile(s.Path())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.loaded = true
			return nil
		}
		return fmt.Errorf("reading results: %w", err)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parsing %s: %w", s.Path(), err)
	}
	s.snap = snap
	s.loaded = true
	return nil
}

func (s *Store) ensureLoaded() error {
	s.mu.RLock()
	if s.loaded {
		s.mu.RUnlock()
		return nil
	}
	s.mu.RUnlock()
	return s.load()
}

// Reload re-reads the snapshot from disk, discarding unsaved state.
func (s *Store) Reload() error {
	return s.load()
}

// Snapshot returns a deep copy of the current slots; callers may modify it
// freely.
func (s *Store) Snapshot() (Snapshot, error) {
	if err := s.ensureLoaded(); err != nil {
		return Snapshot{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.clone()
}

func (s Snapshot) clone() (Snapshot, error) {
	out := Snapshot{UpdatedAt: s.UpdatedAt}
	var err error
	if out.Transliteration, err = clone(s.Transliteration); err != nil {
		return Snapshot{}, err
	}
	if out.Risk, err = clone(s.Risk); err != nil {
		return Snapshot{}, err
	}
	if out.Cognate, err = clone(s.Cognate); err != nil {
		return Snapshot{}, err
	}
	if out.Effectiveness, err = clone(s.Effectiveness); err != nil {
		return Snapshot{}, err
	}
	return out, nil
}

// clone copies v through its JSON encoding, the same form the store
// persists, so a copy never shares slices, maps or pointers with v.
func clone[T any](v *T) (*T, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("copying result: %w", err)
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("copying result: %w", err)
	}
	return &out, nil
}

// Get returns the outcome stored for kind.
func (s *Store) Get(kind models.TaskKind) (any, error) {
	snap, err := s.Snapshot()
	if err != nil {
		return nil, err
	}
	return snap.Get(kind)
}

func (s *Store) update(fn func(*Snapshot)) error {
	if err := s.ensureLoaded(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.snap)
	s.snap.UpdatedAt = s.now().UTC()
	return s.saveLocked()
}

// PutTransliteration stores a copy of o; later changes to o do not reach
// the store. The other Put methods behave the same.
func (s *Store) PutTransliteration(o models.Outcome[models.TransliterationReport]) error {
	c, err := clone(&o)
	if err != nil {
		return err
	}
	return s.update(func(snap *Snapshot) { snap.Transliteration = c })
}

func (s *Store) PutRisk(o models.Outcome[models.RiskReport]) error {
	c, err := clone(&o)
	if err != nil {
		return err
	}
	return s.update(func(snap *Snapshot) { snap.Risk = c })
}

func (s *Store) PutCognate(o models.Outcome[models.CognateReport]) error {
	c, err := clone(&o)
	if err != nil {
		return err
	}
	return s.update(func(snap *Snapshot) { snap.Cognate = c })
}

func (s *Store) PutEffectiveness(o models.Outcome[models.EffectivenessReport]) error {
	c, err := clone(&o)
	if err != nil {
		return err
	}
	return s.update(func(snap *Snapshot) { snap.Effectiveness = c })
}

// Clear empties the slot of kind, or every slot when kind is "".
func (s *Store) Clear(kind models.TaskKind) error {
	if kind != "" {
		if _, err := (Snapshot{}).Get(kind); errors.Is(err, ErrUnknownKind) {
			return err
		}
	}
	return s.update(func(snap *Snapshot) {
		switch kind {
		case "":
			*snap = Snapshot{}
		case models.TaskTransliteration:
			snap.Transliteration = nil
		case models.TaskRisk:
			snap.Risk = nil
		case models.TaskCognate:
			snap.Cognate = nil
		case models.TaskEffectiveness:
			snap.Effectiveness = nil
		}
	})
}

// saveLocked writes the snapshot through a temporary file so a crash never
// leaves a truncated results.json behind.
func (s *Store) saveLocked() error {
	if s.dir == "" {
		return nil
	}
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating results directory: %w", err)
	}
	data, err := json.MarshalIndent(s.snap, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding results: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, FileName+".*")
	if err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()           //nolint:errcheck
		os.Remove(tmp.Name()) //nolint:errcheck
		return fmt.Errorf("writing results: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name()) //nolint:errcheck
		return fmt.Errorf("writing results: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.Path()); err != nil {
		return fmt.Errorf("writing results: %w", err)
	}
	return nil
}
