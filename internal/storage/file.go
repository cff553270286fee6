package storage

import (
	"encoding/json"
	"os"
	"sync"

	"go.uber.org/zap"
)

// FileStore is a Store backed by a JSON file. All operations serve the
// in-memory map; the file is rewritten after each mutation. Reload re-reads
// the file and notifies subscribers about keys that changed, which is how
// changes made by another process of the same client become visible.
type FileStore struct {
	path string
	log  *zap.Logger

	mu      sync.Mutex
	values  map[string]string
	subs    map[int]ChangeFunc
	nextSub int
}

// NewFileStore opens (or lazily creates) the store at path. A missing or
// unreadable file yields an empty store rather than an error.
func NewFileStore(path string, log *zap.Logger) *FileStore {
	if log == nil {
		log = zap.NewNop()
	}
	s := &FileStore{
		path:   path,
		log:    log,
		values: make(map[string]string),
		subs:   make(map[int]ChangeFunc),
	}
	if vals, err := readFile(path); err != nil {
		s.log.Warn("storage file unreadable, starting empty",
			zap.String("path", path), zap.Error(err))
	} else {
		s.values = vals
	}
	return s
}

func readFile(path string) (map[string]string, error) {
	vals := make(map[string]string)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return vals, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(data, &vals); err != nil {
		return nil, err
	}
	return vals, nil
}

// Get returns the value for key and whether it is present.
func (s *FileStore) Get(key string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.values[key]
	return v, ok
}

// Set writes the value for key, persists, and notifies subscribers.
// The in-memory value is kept even when persisting fails.
func (s *FileStore) Set(key, value string) {
	s.mu.Lock()
	if old, ok := s.values[key]; ok && old == value {
		s.mu.Unlock()
		return
	}
	s.values[key] = value
	s.save()
	fns := s.snapshotSubs()
	s.mu.Unlock()

	for _, fn := range fns {
		fn(key, value)
	}
}

// Delete removes key, persists, and notifies subscribers with an empty value.
func (s *FileStore) Delete(key string) {
	s.mu.Lock()
	if _, ok := s.values[key]; !ok {
		s.mu.Unlock()
		return
	}
	delete(s.values, key)
	s.save()
	fns := s.snapshotSubs()
	s.mu.Unlock()

	for _, fn := range fns {
		fn(key, "")
	}
}

// Subscribe registers fn for change notifications and returns an
// unsubscribe function.
func (s *FileStore) Subscribe(fn ChangeFunc) func() {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// Reload re-reads the backing file and fires change notifications for every
// key whose value differs from the in-memory state. Unreadable files leave
// the current state untouched.
func (s *FileStore) Reload() {
	vals, err := readFile(s.path)
	if err != nil {
		s.log.Warn("storage reload failed", zap.String("path", s.path), zap.Error(err))
		return
	}

	type change struct{ key, value string }
	var changes []change

	s.mu.Lock()
	for k, v := range vals {
		if old, ok := s.values[k]; !ok || old != v {
			changes = append(changes, change{k, v})
		}
	}
	for k := range s.values {
		if _, ok := vals[k]; !ok {
			changes = append(changes, change{k, ""})
		}
	}
	s.values = vals
	fns := s.snapshotSubs()
	s.mu.Unlock()

	for _, c := range changes {
		for _, fn := range fns {
			fn(c.key, c.value)
		}
	}
}

// save writes the current map to disk. Caller must hold s.mu.
func (s *FileStore) save() {
	data, err := json.Marshal(s.values)
	if err != nil {
		s.log.Error("storage marshal failed", zap.Error(err))
		return
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		s.log.Warn("storage write failed, keeping state in memory",
			zap.String("path", s.path), zap.Error(err))
	}
}

// snapshotSubs copies the subscriber list. Caller must hold s.mu.
func (s *FileStore) snapshotSubs() []ChangeFunc {
	fns := make([]ChangeFunc, 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	return fns
}
