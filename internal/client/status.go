package client

import "sync"

// Status is the loading/error pair a collection client exposes to its callers.
type Status struct {
	Loading bool
	Err     string
}

// Tracker holds one Status shared by every operation of a client instance.
// Concurrent operations overwrite each other's flags: the last Begin clears the error,
// the first End clears Loading.
type Tracker struct {
	mu     sync.Mutex
	status Status
}

// Begin marks an operation as started and clears the previous error.
func (t *Tracker) Begin() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status = Status{Loading: true}
}

// Fail records a human-readable failure message.
func (t *Tracker) Fail(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.Err = msg
}

// End marks the operation as finished. The error, if any, is kept.
func (t *Tracker) End() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.status.Loading = false
}

// Snapshot returns a copy of the current status.
func (t *Tracker) Snapshot() Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.status
}
