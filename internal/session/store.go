// Package session holds per-conversation state for the loan assistant:
// message history, accumulated extracted fields and the one-shot pipeline
// trigger flag. The store is in-memory with sliding idle expiry; restarts
// drop all sessions by design.
package session

import (
	"sync"
	"time"

	"github.com/saarthi/loan-assistant-go/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Store is a thread-safe in-memory session store. Each session carries its
// own mutex so that read-modify-write sequences (append message, merge
// fields, check-and-claim the trigger) are serialized per session id while
// unrelated sessions proceed in parallel.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry

	timeout time.Duration
	logger  *zap.Logger

	stopOnce sync.Once
	stop     chan struct{}
}

type entry struct {
	mu sync.Mutex
	s  domain.Session
}

// NewStore creates a session store with the given idle timeout. If
// sweepInterval is positive, a background sweeper evicts idle sessions on
// that cadence until Close is called.
func NewStore(timeout, sweepInterval time.Duration, logger *zap.Logger) *Store {
	st := &Store{
		sessions: make(map[string]*entry),
		timeout:  timeout,
		logger:   logger,
		stop:     make(chan struct{}),
	}
	if sweepInterval > 0 {
		go st.sweepLoop(sweepInterval)
	}
	return st
}

// Create allocates a fresh session and returns its id. Never fails.
func (st *Store) Create() string {
	now := time.Now()
	id := uuid.New().String()

	st.mu.Lock()
	st.sessions[id] = &entry{s: domain.Session{
		ID:             id,
		CreatedAt:      now,
		LastActivityAt: now,
	}}
	st.mu.Unlock()

	st.logger.Debug("session created", zap.String("session_id", id))
	return id
}

// Get returns a snapshot of the session, refreshing its activity timestamp
// (sliding expiry). Expired sessions are evicted and reported as not found.
func (st *Store) Get(id string) (domain.Session, error) {
	e, err := st.resolve(id)
	if err != nil {
		return domain.Session{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return snapshot(&e.s), nil
}

// AddMessage appends a message with the current timestamp.
func (st *Store) AddMessage(id, role, content string) error {
	e, err := st.resolve(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.s.Messages = append(e.s.Messages, domain.Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	})
	return nil
}

// MergeFields applies the merge invariant: incoming non-nil values win,
// nil values never erase previously extracted ones.
func (st *Store) MergeFields(id string, partial domain.ExtractedFields) error {
	e, err := st.resolve(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.s.Fields.Merge(partial)
	return nil
}

// IsComplete reports whether name, amount and tenure are all present.
func (st *Store) IsComplete(id string) bool {
	e, err := st.resolve(id)
	if err != nil {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.s.Fields.Complete()
}

// MergeAndGate merges this turn's extraction result and evaluates the
// completion gate as one atomic step. When the gate fires it claims the
// trigger immediately (pipelineTriggered=true), so two concurrent turns
// for the same session can never both start the pipeline. The returned
// fields are the post-merge snapshot.
func (st *Store) MergeAndGate(id string, partial domain.ExtractedFields) (domain.ExtractedFields, bool, error) {
	e, err := st.resolve(id)
	if err != nil {
		return domain.ExtractedFields{}, false, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	e.s.Fields.Merge(partial)

	shouldRun := e.s.Fields.Complete() && !e.s.PipelineTriggered
	if shouldRun {
		e.s.PipelineTriggered = true
	}
	return e.s.Fields, shouldRun, nil
}

// MarkTriggered sets the trigger flag and stores the pipeline result.
// Idempotent: repeated calls only refresh the stored result when a
// non-nil one is passed.
func (st *Store) MarkTriggered(id string, result *domain.PipelineResult) error {
	e, err := st.resolve(id)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.s.PipelineTriggered = true
	if result != nil {
		e.s.Result = result
	}
	return nil
}

// IsTriggered reports whether the pipeline already ran for this session.
func (st *Store) IsTriggered(id string) bool {
	e, err := st.resolve(id)
	if err != nil {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	return e.s.PipelineTriggered
}

// Delete removes a session explicitly.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// SweepExpired evicts all sessions idle past the timeout and returns how
// many were removed. Safe to call concurrently with live turns: only
// sessions observably idle at sweep time are touched.
func (st *Store) SweepExpired() int {
	now := time.Now()

	st.mu.Lock()
	defer st.mu.Unlock()

	n := 0
	for id, e := range st.sessions {
		e.mu.Lock()
		idle := now.Sub(e.s.LastActivityAt) > st.timeout
		e.mu.Unlock()
		if idle {
			delete(st.sessions, id)
			n++
		}
	}
	return n
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// Close stops the background sweeper.
func (st *Store) Close() {
	st.stopOnce.Do(func() { close(st.stop) })
}

// resolve finds a live session and refreshes its activity timestamp.
// Expired sessions are evicted here, so a held id past the idle timeout
// behaves exactly like an unknown one.
func (st *Store) resolve(id string) (*entry, error) {
	now := time.Now()

	st.mu.RLock()
	e, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "session", ID: id}
	}

	e.mu.Lock()
	if now.Sub(e.s.LastActivityAt) > st.timeout {
		e.mu.Unlock()
		st.Delete(id)
		st.logger.Debug("session expired", zap.String("session_id", id))
		return nil, &domain.ErrNotFound{Resource: "session", ID: id}
	}
	e.s.LastActivityAt = now
	e.mu.Unlock()

	return e, nil
}

func (st *Store) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-st.stop:
			return
		case <-ticker.C:
			if n := st.SweepExpired(); n > 0 {
				st.logger.Info("expired sessions swept", zap.Int("count", n))
			}
		}
	}
}

// snapshot copies a session so callers can never mutate store-owned state.
// PipelineResult is immutable once stored, so sharing the pointer is fine.
func snapshot(s *domain.Session) domain.Session {
	out := *s
	out.Messages = append([]domain.Message(nil), s.Messages...)
	return out
}
