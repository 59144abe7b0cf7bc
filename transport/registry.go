package transport

import (
	"slices"
	"sort"
	"sync"
)

// Entry is a snapshot of a registry entry
type Entry struct {
	Name      string
	Active    bool
	Listeners []*Listener
}

// entry holds the listener set of one channel in insertion order
type entry struct {
	active    bool
	listeners []*Listener
	members   map[*Listener]struct{}
}

func newEntry() *entry {
	return &entry{
		active:  true,
		members: make(map[*Listener]struct{}),
	}
}

// Registry maps channel names to their entries.
// Entries are created lazily and never removed, only emptied or deactivated.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[string]*entry),
	}
}

// Ensure creates an active empty entry for name if none exists.
// An existing entry is left untouched. Returns true if an entry was created.
func (r *Registry) Ensure(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; ok {
		return false
	}
	r.entries[name] = newEntry()
	return true
}

// Get returns a snapshot of the entry for name
func (r *Registry) Get(name string) (Entry, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok {
		return Entry{}, false
	}
	return Entry{
		Name:      name,
		Active:    e.active,
		Listeners: slices.Clone(e.listeners),
	}, true
}

// SetActive sets the active flag of an existing entry.
// Returns false if the entry does not exist.
func (r *Registry) SetActive(name string, active bool) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[name]
	if !ok {
		return false
	}
	e.active = active
	return true
}

// Add appends l to an existing active entry.
// Returns false if the entry is missing or inactive, or l is already present.
func (r *Registry) Add(name string, l *Listener) bool {
	if l == nil {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[name]
	if !ok || !e.active {
		return false
	}
	if _, dup := e.members[l]; dup {
		return false
	}
	e.members[l] = struct{}{}
	e.listeners = append(e.listeners, l)
	return true
}

// Remove deletes l from the entry, keeping the order of the others
func (r *Registry) Remove(name string, l *Listener) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[name]
	if !ok {
		return false
	}
	if _, present := e.members[l]; !present {
		return false
	}
	delete(e.members, l)
	e.listeners = slices.DeleteFunc(e.listeners, func(x *Listener) bool { return x == l })
	return true
}

// Clear empties the listener set of an entry and returns how many were removed
func (r *Registry) Clear(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.entries[name]
	if !ok {
		return 0
	}
	n := len(e.listeners)
	e.listeners = nil
	clear(e.members)
	return n
}

// Listeners returns a copy of the listeners of an active entry.
// Missing and inactive entries yield nil.
func (r *Registry) Listeners(name string) []*Listener {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok || !e.active {
		return nil
	}
	return slices.Clone(e.listeners)
}

// Count returns the listener count of an active entry, 0 otherwise
func (r *Registry) Count(name string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entries[name]
	if !ok || !e.active {
		return 0
	}
	return len(e.listeners)
}

// Names returns all channel names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	r.mu.RUnlock()
	sort.Strings(names)
	return names
}
