package analytics

import (
	"sync"
	"time"

	"github.com/angelmondragon/pointsdash/pkg/enums"
)

// Token identifies one snapshot computation for a user.
type Token struct {
	UserID     string
	Generation uint64
}

// State is the observable lifecycle of a user's dashboard.
type State struct {
	Status     enums.DashboardStatus `json:"status"`
	Generation uint64                `json:"generation"`
	UpdatedAt  time.Time             `json:"updatedAt"`
	Error      string                `json:"error,omitempty"`
}

type trackerEntry struct {
	state    State
	snapshot *Snapshot
}

// DefaultIdleTTL is how long a settled dashboard is kept after its last update.
const DefaultIdleTTL = 30 * time.Minute

// Tracker hands out generation tokens and only lets the latest generation settle.
// A computation that finishes after a newer one began is discarded.
// Settled entries idle for longer than the TTL are evicted; loading ones never are.
type Tracker struct {
	mu        sync.Mutex
	entries   map[string]*trackerEntry
	now       func() time.Time
	idleTTL   time.Duration
	lastSweep time.Time
	// floor is the highest generation ever evicted. Recreated entries start above
	// it so a late token from before the eviction can never match.
	floor uint64
}

type TrackerOption func(*Tracker)

// WithIdleTTL sets the eviction age. ttl <= 0 keeps entries forever.
func WithIdleTTL(ttl time.Duration) TrackerOption {
	return func(t *Tracker) {
		t.idleTTL = ttl
	}
}

func NewTracker(opts ...TrackerOption) *Tracker {
	t := &Tracker{
		entries: make(map[string]*trackerEntry),
		now:     timeNowUTC,
		idleTTL: DefaultIdleTTL,
	}
	for _, opt := range opts {
		opt(t)
	}
	t.lastSweep = t.now()
	return t
}

// Sweep evicts settled entries idle for longer than the TTL and reports how many went.
func (t *Tracker) Sweep() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sweepLocked(t.now())
}

func (t *Tracker) sweepLocked(now time.Time) int {
	t.lastSweep = now
	if t.idleTTL <= 0 {
		return 0
	}
	evicted := 0
	for userID, entry := range t.entries {
		if entry.state.Status == enums.DashboardLoading {
			continue
		}
		if now.Sub(entry.state.UpdatedAt) < t.idleTTL {
			continue
		}
		t.floor = max(t.floor, entry.state.Generation)
		delete(t.entries, userID)
		evicted++
	}
	return evicted
}

// Begin starts a new generation for userID and moves it to loading.
func (t *Tracker) Begin(userID string) Token {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	if t.idleTTL > 0 && now.Sub(t.lastSweep) >= t.idleTTL {
		t.sweepLocked(now)
	}

	entry := t.entry(userID)
	entry.state.Generation++
	entry.state.Status = enums.DashboardLoading
	entry.state.Error = ""
	entry.state.UpdatedAt = now
	return Token{UserID: userID, Generation: entry.state.Generation}
}

// Commit stores snapshot as ready if token is still the latest generation.
func (t *Tracker) Commit(token Token, snapshot *Snapshot) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[token.UserID]
	if !ok || entry.state.Generation != token.Generation {
		return false
	}
	entry.state.Status = enums.DashboardReady
	entry.state.Error = ""
	entry.state.UpdatedAt = t.now()
	entry.snapshot = snapshot
	return true
}

// Fail moves the latest generation to error. The previous snapshot is dropped
// so nothing partial outlives a failed cycle.
func (t *Tracker) Fail(token Token, err error) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[token.UserID]
	if !ok || entry.state.Generation != token.Generation {
		return false
	}
	entry.state.Status = enums.DashboardError
	entry.state.UpdatedAt = t.now()
	if err != nil {
		entry.state.Error = err.Error()
	}
	entry.snapshot = nil
	return true
}

// State returns the user's current lifecycle state; unknown users are idle.
func (t *Tracker) State(userID string) State {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[userID]
	if !ok {
		return State{Status: enums.DashboardIdle}
	}
	return entry.state
}

// Latest returns the last committed snapshot, if the user is ready.
func (t *Tracker) Latest(userID string) (*Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	entry, ok := t.entries[userID]
	if !ok || entry.state.Status != enums.DashboardReady || entry.snapshot == nil {
		return nil, false
	}
	return entry.snapshot, true
}

func (t *Tracker) entry(userID string) *trackerEntry {
	entry, ok := t.entries[userID]
	if !ok {
		entry = &trackerEntry{state: State{Status: enums.DashboardIdle, Generation: t.floor}}
		t.entries[userID] = entry
	}
	return entry
}
