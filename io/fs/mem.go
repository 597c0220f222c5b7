package fs

import (
	"bytes"
	"fmt"
	"path"
	"sync"
	"time"
)

// MemFilesystem is an in-memory filesystem. Files are listed in the order
// they have been written for the first time.
type MemFilesystem interface {
	ReadFilesystem

	// WriteFile adds or replaces the file at path.
	WriteFile(path string, data []byte)
}

type memFileInfo struct {
	name    string
	size    int64
	lastMod time.Time
}

func (f *memFileInfo) Name() string {
	return f.name
}

func (f *memFileInfo) Size() int64 {
	return f.size
}

func (f *memFileInfo) ModTime() time.Time {
	return f.lastMod
}

func (f *memFileInfo) IsDir() bool {
	return false
}

type memFile struct {
	memFileInfo
	data *bytes.Reader
}

func (f *memFile) Read(p []byte) (int, error) {
	return f.data.Read(p)
}

func (f *memFile) Close() error {
	return nil
}

func (f *memFile) Stat() (FileInfo, error) {
	info := f.memFileInfo
	return &info, nil
}

type memEntry struct {
	data    []byte
	lastMod time.Time
}

type memFilesystem struct {
	name string

	files map[string]*memEntry
	order []string
	lock  sync.RWMutex
}

// NewMemFilesystem returns a new empty in-memory filesystem.
func NewMemFilesystem(name string) MemFilesystem {
	return &memFilesystem{
		name:  name,
		files: map[string]*memEntry{},
	}
}

func (fs *memFilesystem) Name() string {
	return fs.name
}

func (fs *memFilesystem) Type() string {
	return "mem"
}

func (fs *memFilesystem) WriteFile(p string, data []byte) {
	p = cleanPath(p)

	fs.lock.Lock()
	defer fs.lock.Unlock()

	if _, ok := fs.files[p]; !ok {
		fs.order = append(fs.order, p)
	}

	fs.files[p] = &memEntry{
		data:    bytes.Clone(data),
		lastMod: time.Now(),
	}
}

func (fs *memFilesystem) Open(p string) (File, error) {
	p = cleanPath(p)

	fs.lock.RLock()
	defer fs.lock.RUnlock()

	entry, ok := fs.files[p]
	if !ok {
		return nil, fmt.Errorf("%s: %w", p, ErrNotExist)
	}

	return &memFile{
		memFileInfo: memFileInfo{
			name:    p,
			size:    int64(len(entry.data)),
			lastMod: entry.lastMod,
		},
		data: bytes.NewReader(entry.data),
	}, nil
}

func (fs *memFilesystem) ReadFile(p string) ([]byte, error) {
	p = cleanPath(p)

	fs.lock.RLock()
	defer fs.lock.RUnlock()

	entry, ok := fs.files[p]
	if !ok {
		return nil, fmt.Errorf("%s: %w", p, ErrNotExist)
	}

	return bytes.Clone(entry.data), nil
}

func (fs *memFilesystem) Stat(p string) (FileInfo, error) {
	p = cleanPath(p)

	fs.lock.RLock()
	defer fs.lock.RUnlock()

	entry, ok := fs.files[p]
	if !ok {
		return nil, fmt.Errorf("%s: %w", p, ErrNotExist)
	}

	return &memFileInfo{
		name:    p,
		size:    int64(len(entry.data)),
		lastMod: entry.lastMod,
	}, nil
}

func (fs *memFilesystem) List(dir, pattern string) ([]FileInfo, error) {
	dir = cleanPath(dir)

	g, err := matcher(pattern)
	if err != nil {
		return nil, err
	}

	fs.lock.RLock()
	defer fs.lock.RUnlock()

	files := []FileInfo{}

	for _, p := range fs.order {
		if path.Dir(p) != dir {
			continue
		}

		if !matches(g, p) {
			continue
		}

		entry := fs.files[p]

		files = append(files, &memFileInfo{
			name:    p,
			size:    int64(len(entry.data)),
			lastMod: entry.lastMod,
		})
	}

	return files, nil
}
