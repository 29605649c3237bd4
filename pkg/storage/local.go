package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"sync"
)

// Dir stores objects as files below a root directory. Paths are resolved
// through os.Root so keys cannot leave the directory.
type Dir struct {
	root *os.Root
}

// NewDir opens (and creates if needed) the directory.
func NewDir(dir string) (*Dir, error) {
	if dir == "" {
		return nil, ErrInvalidConfig
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("storage: create %s: %w", dir, err)
	}
	root, err := os.OpenRoot(dir)
	if err != nil {
		return nil, fmt.Errorf("storage: open %s: %w", dir, err)
	}
	return &Dir{root: root}, nil
}

// Close releases the directory handle.
func (d *Dir) Close() error { return d.root.Close() }

func (d *Dir) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) error {
	if !ValidKey(key) {
		return ErrInvalidKey
	}
	if parent := path.Dir(key); parent != "." {
		if err := d.root.MkdirAll(parent, 0o750); err != nil {
			return errors.Join(ErrUploadFailed, err)
		}
	}
	f, err := d.root.Create(key)
	if err != nil {
		return errors.Join(ErrUploadFailed, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		return errors.Join(ErrUploadFailed, err)
	}
	if err := f.Close(); err != nil {
		return errors.Join(ErrUploadFailed, err)
	}
	return nil
}

func (d *Dir) Open(_ context.Context, key string) (*Object, error) {
	if !ValidKey(key) {
		return nil, ErrNotFound
	}
	f, err := d.root.Open(key)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	return &Object{Body: f, ContentType: contentTypeForKey(key), Size: info.Size()}, nil
}

func (d *Dir) Delete(_ context.Context, key string) error {
	if !ValidKey(key) {
		return nil
	}
	if err := d.root.Remove(key); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return errors.Join(ErrDeleteFailed, err)
	}
	return nil
}

// Memory keeps objects in a map.
type Memory struct {
	objects map[string]memObject
	mu      sync.RWMutex
}

type memObject struct {
	contentType string
	data        []byte
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{objects: make(map[string]memObject)}
}

func (m *Memory) Put(_ context.Context, key string, r io.Reader, _ int64, contentType string) error {
	if !ValidKey(key) {
		return ErrInvalidKey
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return errors.Join(ErrUploadFailed, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = memObject{contentType: contentType, data: data}
	return nil
}

func (m *Memory) Open(_ context.Context, key string) (*Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound
	}
	return &Object{
		Body:        io.NopCloser(bytes.NewReader(obj.data)),
		ContentType: obj.contentType,
		Size:        int64(len(obj.data)),
	}, nil
}

func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

// Keys returns the stored keys.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}

var (
	_ Storage = (*Dir)(nil)
	_ Storage = (*Memory)(nil)
)
