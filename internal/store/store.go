// Package store owns the live dashboard state: it loads the persisted
// document, applies actions through the reducer and writes every new state
// back to the database.
package store

import (
	"bytes"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/taxilian/dayplan/internal/dates"
	"github.com/taxilian/dayplan/internal/db"
	"github.com/taxilian/dayplan/internal/model"
	"github.com/taxilian/dayplan/internal/state"
)

// cleanupEvery is how many dispatches pass between action log trims.
const cleanupEvery = 100

// Options configures a Store.
type Options struct {
	WeekStart    time.Weekday
	HistoryLimit int              // undo snapshots kept; 0 means db.DefaultHistoryLimit
	Now          func() time.Time // clock; nil means time.Now
}

// Store holds the current AppState and mirrors it to the database.
// It is safe for concurrent use.
type Store struct {
	db           *db.DB
	logger       zerolog.Logger
	reducer      state.Reducer
	historyLimit int
	now          func() time.Time

	mu         sync.Mutex
	state      model.AppState
	dispatched int
}

// New returns a store backed by database. Call Load before dispatching.
func New(database *db.DB, logger zerolog.Logger, opts Options) *Store {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		db:           database,
		logger:       logger,
		reducer:      state.Reducer{WeekStart: opts.WeekStart},
		historyLimit: opts.HistoryLimit,
		now:          now,
		state:        model.NewAppState(dates.Today(now())),
	}
}

// Load reads the persisted state, migrating older document shapes and
// refreshing habit streaks against today. A missing document yields a fresh
// state. An unreadable document is logged and replaced by a fresh state; the
// next save keeps the old document in the undo history.
func (s *Store) Load() (model.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	today := dates.Today(now)

	data, err := s.db.LoadState(db.StateKey)
	if errors.Is(err, db.ErrNoState) {
		s.state = model.NewAppState(today)
		return s.state, nil
	}
	if err != nil {
		return model.AppState{}, fmt.Errorf("failed to load state: %w", err)
	}

	st, err := state.Decode(data, today)
	if err != nil {
		s.logger.Error().Err(err).Msg("stored state is unreadable, starting fresh")
		st = model.NewAppState(today)
	} else {
		s.rewriteMigrated(data, st)
	}
	s.state = s.reducer.RefreshStreaks(st, now)
	return s.state, nil
}

// rewriteMigrated stores st in place of data when decoding changed the
// document's shape, so older documents are upgraded once.
func (s *Store) rewriteMigrated(data []byte, st model.AppState) {
	encoded, err := state.Encode(st)
	if err != nil || bytes.Equal(encoded, data) {
		return
	}
	if err := s.db.ReplaceState(db.StateKey, encoded); err != nil {
		s.logger.Warn().Err(err).Msg("failed to store migrated state")
		return
	}
	s.logger.Info().Msg("migrated stored state")
}

// State returns the current state.
func (s *Store) State() model.AppState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Save makes st the current state and persists it.
func (s *Store) Save(st model.AppState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
	return s.persist(st)
}

// Dispatch validates a, applies it and persists the result. Only validation
// errors are returned; in that case the state is left unchanged. Persistence
// failures are logged and the new state is kept in memory.
func (s *Store) Dispatch(a state.Action) (model.AppState, error) {
	if err := state.Validate(a); err != nil {
		return s.State(), err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.state = s.reducer.Reduce(s.state, a, now)

	log := s.logger.With().Str("action", state.Name(a)).Str("target", a.Target()).Logger()
	if err := s.persist(s.state); err != nil {
		log.Error().Err(err).Msg("failed to persist state")
	}
	if err := s.db.AddActionLog(state.Name(a), a.Target(), now); err != nil {
		log.Warn().Err(err).Msg("failed to record action")
	}
	log.Debug().Msg("dispatched")

	s.dispatched++
	if s.dispatched%cleanupEvery == 0 {
		if _, err := s.db.CleanupActionLog(db.CleanupOptions{}); err != nil {
			log.Warn().Err(err).Msg("failed to trim action log")
		}
	}
	return s.state, nil
}

// Undo restores the state saved before the most recent change. It returns
// db.ErrNoHistory when there is nothing to undo.
func (s *Store) Undo() (model.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := s.db.Undo(db.StateKey)
	if err != nil {
		return s.state, err
	}
	now := s.now()
	st, err := state.Decode(data, dates.Today(now))
	if err != nil {
		return s.state, fmt.Errorf("failed to decode restored state: %w", err)
	}
	s.state = s.reducer.RefreshStreaks(st, now)
	return s.state, nil
}

// Import decodes a document in any supported shape, makes it the current
// state and persists it. The replaced state stays available to Undo.
func (s *Store) Import(data []byte) (model.AppState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	st, err := state.Decode(data, dates.Today(now))
	if err != nil {
		return s.state, fmt.Errorf("failed to import state: %w", err)
	}
	s.state = s.reducer.RefreshStreaks(st, now)
	if err := s.persist(s.state); err != nil {
		return s.state, err
	}
	if err := s.db.AddActionLog("Import", "", now); err != nil {
		s.logger.Warn().Err(err).Msg("failed to record import")
	}
	return s.state, nil
}

func (s *Store) persist(st model.AppState) error {
	data, err := state.Encode(st)
	if err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	return s.db.SaveState(db.StateKey, data, s.historyLimit)
}
