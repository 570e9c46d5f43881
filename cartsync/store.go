// store.go - Key/value persistence for the anonymous cart, in memory or on disk

package cartsync

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// ErrNoKey is returned by Get for a key that was never set.
var ErrNoKey = errors.New("cartsync: key not found")

// Store is the shared persisted storage the cart mirrors into.
type Store interface {
	Get(key string) ([]byte, error)
	Set(key string, value []byte) error
	Delete(key string) error
}

// Watcher is implemented by stores that can report writes made by other processes.
type Watcher interface {
	Watch(ctx context.Context, fn func(key string)) error
}

// MemoryStore keeps values in a map. Useful for tests and single-process clients.
type MemoryStore struct {
	mu   sync.RWMutex
	data map[string][]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{data: make(map[string][]byte)}
}

func (m *MemoryStore) Get(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNoKey
	}
	return append([]byte(nil), v...), nil
}

func (m *MemoryStore) Set(key string, value []byte) error {
	m.mu.Lock()
	m.data[key] = append([]byte(nil), value...)
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

// FileStore keeps one <key>.json file per key inside Dir.
type FileStore struct {
	Dir string
}

const fileExt = ".json"

func NewFileStore(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("cartsync: create store dir: %w", err)
	}
	return &FileStore{Dir: dir}, nil
}

func (f *FileStore) path(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.HasPrefix(key, ".") {
		return "", fmt.Errorf("cartsync: invalid key %q", key)
	}
	return filepath.Join(f.Dir, key+fileExt), nil
}

func (f *FileStore) Get(key string) ([]byte, error) {
	p, err := f.path(key)
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return nil, ErrNoKey
	}
	return b, err
}

// Set writes through a temp file and a rename so readers never see a partial value.
func (f *FileStore) Set(key string, value []byte) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(f.Dir, "."+key+".tmp-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(value); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), p)
}

func (f *FileStore) Delete(key string) error {
	p, err := f.path(key)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// Watch calls fn with the key of every file created, written, renamed or removed
// in Dir until ctx is done. Temp files are ignored.
func (f *FileStore) Watch(ctx context.Context, fn func(key string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("cartsync: watcher: %w", err)
	}
	defer w.Close()
	if err := w.Add(f.Dir); err != nil {
		return fmt.Errorf("cartsync: watch %s: %w", f.Dir, err)
	}

	const relevant = fsnotify.Create | fsnotify.Write | fsnotify.Rename | fsnotify.Remove
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			name := filepath.Base(ev.Name)
			if ev.Op&relevant == 0 || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, fileExt) {
				continue
			}
			fn(strings.TrimSuffix(name, fileExt))
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("cartsync: watch: %w", err)
		}
	}
}
