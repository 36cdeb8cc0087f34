package realtime

import "sync"

// Registry looks up (or lazily creates) the Hub for a given job id, and
// lets the orchestrator drop a Hub once a job reaches a terminal state.
type Registry struct {
	mu   sync.Mutex
	hubs map[string]*Hub
}

// NewRegistry creates an empty job-hub registry.
func NewRegistry() *Registry {
	return &Registry{hubs: make(map[string]*Hub)}
}

// HubFor returns the Hub for jobID, creating it if necessary.
func (r *Registry) HubFor(jobID string) *Hub {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.hubs[jobID]
	if !ok {
		h = NewHub(jobID)
		r.hubs[jobID] = h
	}
	return h
}

// Drop removes jobID's Hub once its job has reached a terminal state and
// every subscriber has received the terminal event.
func (r *Registry) Drop(jobID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.hubs, jobID)
}
