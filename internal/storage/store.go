// Package storage provides the persistent key-value store that holds all
// client session facts (tokens, role, locale, pending drafts). The in-memory
// map is the source of truth; file persistence is a side effect, so readers
// keep working even when the disk does not.
package storage

// ChangeFunc is invoked when a key changes. value is empty when the key
// was deleted.
type ChangeFunc func(key, value string)

// Store is the accessor interface over the client's key-value state.
// Implementations never surface I/O errors to callers; a failing backing
// medium degrades to in-memory-only operation.
type Store interface {
	// Get returns the value for key and whether it is present.
	Get(key string) (string, bool)
	// Set writes the value for key.
	Set(key, value string)
	// Delete removes key.
	Delete(key string)
	// Subscribe registers fn to be called on every change. The returned
	// function unregisters it.
	Subscribe(fn ChangeFunc) func()
}
