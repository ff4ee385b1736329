package work

import (
	"sync"
)

// Registry holds poll job definitions in registration order and indexes them by settings section.
type Registry struct {
	mu        sync.RWMutex
	jobs      map[string]PollJob
	ordered   []string
	bySection map[string][]string
}

// NewRegistry creates a new job registry.
func NewRegistry() *Registry {
	return &Registry{
		jobs:      make(map[string]PollJob),
		bySection: make(map[string][]string),
	}
}

// Register adds a job definition.
// If a job with the same name already exists, it will be replaced.
func (r *Registry) Register(job PollJob) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.jobs[job.Name]; exists {
		r.unindex(job.Name)
	} else {
		r.ordered = append(r.ordered, job.Name)
	}
	r.jobs[job.Name] = job
	for _, section := range job.Sections {
		r.bySection[section] = append(r.bySection[section], job.Name)
	}
}

// Get returns a job definition by name.
func (r *Registry) Get(name string) (PollJob, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[name]
	return job, ok
}

// Names returns all job names in registration order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return append([]string(nil), r.ordered...)
}

// JobsFor returns the jobs whose configuration touches section, in registration order.
func (r *Registry) JobsFor(section string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := r.bySection[section]
	out := make([]string, 0, len(names))
	for _, name := range r.ordered {
		for _, n := range names {
			if n == name {
				out = append(out, name)
				break
			}
		}
	}
	return out
}

func (r *Registry) unindex(name string) {
	for section, names := range r.bySection {
		kept := names[:0]
		for _, n := range names {
			if n != name {
				kept = append(kept, n)
			}
		}
		r.bySection[section] = kept
	}
}
