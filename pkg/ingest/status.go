package ingest

import (
	"cmp"
	"slices"
	"sync"
	"time"
)

// State is the lifecycle state of a book ingestion.
type State string

const (
	StateQueued            State = "queued"
	StateProcessing        State = "processing"
	StateSuccess           State = "success"
	StateError             State = "error"
	StateTimeout           State = "timeout"
	StateAlreadyProcessing State = "already_processing"
	// StateBusy is only ever returned in a Result; busy requests leave no
	// registry entry.
	StateBusy State = "busy"
)

// Terminal reports whether no further transitions follow s.
func (s State) Terminal() bool {
	switch s {
	case StateSuccess, StateError, StateTimeout:
		return true
	}
	return false
}

// Mode says whether an ingestion ran inline or on the background worker.
type Mode string

const (
	ModeSync  Mode = "sync"
	ModeAsync Mode = "async"
)

// Status is the registry record of a book's latest ingestion.
type Status struct {
	BookID      int64         `json:"book_id"`
	State       State         `json:"state"`
	JobID       string        `json:"job_id"`
	Mode        Mode          `json:"mode"`
	StartedAt   time.Time     `json:"started_at"`
	UpdatedAt   time.Time     `json:"updated_at"`
	Progress    int           `json:"progress"`
	Message     string        `json:"message,omitempty"`
	WordsTotal  int           `json:"words_total,omitempty"`
	UniqueWords int           `json:"unique_words,omitempty"`
	Duration    time.Duration `json:"duration,omitempty"`
}

// registry holds one Status per book. Only the job that owns an entry
// mutates it; readers get copies. running tracks the job whose goroutine
// still owns a book, which can outlive its entry turning terminal on a
// timeout.
type registry struct {
	mu      sync.RWMutex
	m       map[int64]*Status
	running map[int64]string
	now     func() time.Time
}

func newRegistry(now func() time.Time) *registry {
	return &registry{m: make(map[int64]*Status), running: make(map[int64]string), now: now}
}

// claim registers a queued job for bookID. It fails with the current entry
// when the book is queued or processing, or while an earlier job for it has
// not stopped yet. prev is the entry that was replaced, for unclaim.
func (r *registry) claim(bookID int64, jobID string, mode Mode) (prev *Status, cur Status, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, exists := r.m[bookID]
	if exists && (st.State == StateQueued || st.State == StateProcessing) {
		return nil, *st, false
	}
	if owner, busy := r.running[bookID]; busy {
		if exists {
			return nil, *st, false
		}
		return nil, Status{BookID: bookID, State: StateProcessing, JobID: owner}, false
	}
	if exists {
		prev = st
	}
	now := r.now()
	st = &Status{BookID: bookID, State: StateQueued, JobID: jobID, Mode: mode, StartedAt: now, UpdatedAt: now}
	r.m[bookID] = st
	r.running[bookID] = jobID
	return prev, *st, true
}

// done releases the book once jobID's goroutine has stopped touching it.
func (r *registry) done(bookID int64, jobID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running[bookID] == jobID {
		delete(r.running, bookID)
	}
}

// unclaim restores the entry replaced by a claim that never ran.
func (r *registry) unclaim(bookID int64, jobID string, prev *Status) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.running[bookID] == jobID {
		delete(r.running, bookID)
	}
	if st, ok := r.m[bookID]; !ok || st.JobID != jobID {
		return
	}
	if prev == nil {
		delete(r.m, bookID)
		return
	}
	r.m[bookID] = prev
}

// update applies fn to the entry of jobID while it is not terminal and
// reports whether it did.
func (r *registry) update(bookID int64, jobID string, fn func(*Status)) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	st, ok := r.m[bookID]
	if !ok || st.JobID != jobID || st.State.Terminal() {
		return false
	}
	fn(st)
	st.UpdatedAt = r.now()
	return true
}

func (r *registry) get(bookID int64) (Status, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	st, ok := r.m[bookID]
	if !ok {
		return Status{}, false
	}
	return *st, true
}

func (r *registry) snapshot() []Status {
	r.mu.RLock()
	out := make([]Status, 0, len(r.m))
	for _, st := range r.m {
		out = append(out, *st)
	}
	r.mu.RUnlock()
	slices.SortFunc(out, func(a, b Status) int { return cmp.Compare(a.BookID, b.BookID) })
	return out
}

// sweep drops terminal entries not updated for maxAge and fails processing
// entries started more than stuckAfter ago.
func (r *registry) sweep(maxAge, stuckAfter time.Duration) (dropped, reset int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := r.now()
	for id, st := range r.m {
		switch {
		case st.State.Terminal() && now.Sub(st.UpdatedAt) > maxAge:
			delete(r.m, id)
			dropped++
		case st.State == StateProcessing && now.Sub(st.StartedAt) > stuckAfter:
			st.State = StateError
			st.Message = "stuck, reset"
			st.UpdatedAt = now
			reset++
		}
	}
	return dropped, reset
}
