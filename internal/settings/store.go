package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/rs/zerolog"

	"proforma/internal"
	"proforma/internal/logger"
	"proforma/internal/util"
)

// Store persists Settings as one JSON file. Writes replace the whole file.
type Store struct {
	path        string
	defaultPath string
	mu          sync.Mutex
	log         zerolog.Logger
}

func NewStore(path, defaultPath string) *Store {
	return &Store{path: path, defaultPath: defaultPath, log: logger.WithComponent("settings")}
}

func (s *Store) Path() string { return s.path }

// Defaults reads the default document when one is configured and present,
// otherwise the built-in defaults are used.
func (s *Store) Defaults() (Settings, error) {
	def := Defaults()
	if s.defaultPath == "" {
		return def, nil
	}
	blob, err := os.ReadFile(s.defaultPath)
	if errors.Is(err, os.ErrNotExist) {
		return def, nil
	}
	if err != nil {
		return Settings{}, err
	}

	fromFile, err := mergeOver(def, blob)
	if err != nil {
		return Settings{}, fmt.Errorf("parse %s: %w", s.defaultPath, err)
	}
	return fromFile, nil
}

func (s *Store) Load() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (Settings, error) {
	def, err := s.Defaults()
	if err != nil {
		return Settings{}, err
	}

	blob, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return def, nil
	}
	if err != nil {
		return Settings{}, err
	}

	merged, err := mergeOver(def, blob)
	if err != nil {
		s.log.Warn().Err(err).Str("path", s.path).Msg("settings unreadable, using defaults")
		return def, nil
	}
	return Migrate(merged), nil
}

// mergeOver decodes blob on top of base: fields present in blob win, absent
// ones keep the base value.
func mergeOver(base Settings, blob []byte) (Settings, error) {
	out := base
	out.Prices = map[string]Number{}
	out.CustomProducts = map[string]CustomProduct{}
	out.InStock = map[string]bool{}
	for k, v := range base.Prices {
		out.Prices[k] = v
	}
	for k, v := range base.CustomProducts {
		out.CustomProducts[k] = v
	}
	for k, v := range base.InStock {
		out.InStock[k] = v
	}
	if err := json.Unmarshal(blob, &out); err != nil {
		return Settings{}, err
	}
	out.normalize()
	return out, nil
}

func (s *Store) Save(st Settings) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.write(s.path, st); err != nil {
		return Settings{}, err
	}
	return s.load()
}

func (s *Store) write(path string, st Settings) error {
	st.normalize()
	blob, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return err
	}
	return util.WriteFileAtomic(path, blob, 0o644)
}

func (s *Store) Reset() (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	def, err := s.Defaults()
	if err != nil {
		return Settings{}, err
	}
	if err := s.write(s.path, def); err != nil {
		return Settings{}, err
	}
	s.log.Info().Str("path", s.path).Msg("settings reset to defaults")
	return s.load()
}

// Import makes the document at path the current settings, merged over the
// defaults.
func (s *Store) Import(path string) (Settings, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	def, err := s.Defaults()
	if err != nil {
		return Settings{}, err
	}
	merged, err := mergeOver(def, blob)
	if err != nil {
		return Settings{}, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := s.write(s.path, merged); err != nil {
		return Settings{}, err
	}
	s.log.Info().Str("from", path).Msg("settings imported")
	return s.load()
}

// Export writes st to path without touching the current settings file.
func (s *Store) Export(path string, st Settings) error {
	return s.write(path, st)
}

// CommitGeneration stores the sequence value for the next batch and puts the
// history record at the front of the list.
func (s *Store) CommitGeneration(nextNumber int, record internal.HistoryRecord) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		return Settings{}, err
	}
	st.Invoice.NextNumber = Number(nextNumber)
	st.InvoiceHistory = append([]internal.HistoryRecord{record}, st.InvoiceHistory...)
	if err := s.write(s.path, st); err != nil {
		return Settings{}, err
	}
	s.log.Info().Str("invoice", record.InvoiceNumber).Int("next", nextNumber).Msg("generation committed")
	return st, nil
}

// Update applies fn to the current settings and saves the result.
func (s *Store) Update(fn func(*Settings) error) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.load()
	if err != nil {
		return Settings{}, err
	}
	if err := fn(&st); err != nil {
		return Settings{}, err
	}
	if err := s.write(s.path, st); err != nil {
		return Settings{}, err
	}
	return st, nil
}
