package fs

import (
	"bytes"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/datarhei/jobhistory/log"
)

// DiskConfig is the config required to create a new disk
// filesystem.
type DiskConfig struct {
	// Name is the name of the filesystem
	Name string

	// Dir is the path to the directory that is the root of the filesystem
	Dir string

	// For logging, optional
	Logger log.Logger
}

// diskFileInfo implements the FileInfo interface
type diskFileInfo struct {
	name  string
	finfo os.FileInfo
}

func (fi *diskFileInfo) Name() string {
	return fi.name
}

func (fi *diskFileInfo) Size() int64 {
	return fi.finfo.Size()
}

func (fi *diskFileInfo) ModTime() time.Time {
	return fi.finfo.ModTime()
}

func (fi *diskFileInfo) IsDir() bool {
	return fi.finfo.IsDir()
}

// diskFile implements the File interface
type diskFile struct {
	name string
	file *os.File
}

func (f *diskFile) Name() string {
	return f.name
}

func (f *diskFile) Stat() (FileInfo, error) {
	finfo, err := f.file.Stat()
	if err != nil {
		return nil, err
	}

	return &diskFileInfo{
		name:  f.name,
		finfo: finfo,
	}, nil
}

func (f *diskFile) Close() error {
	return f.file.Close()
}

func (f *diskFile) Read(p []byte) (int, error) {
	return f.file.Read(p)
}

// diskFilesystem implements the ReadFilesystem interface
type diskFilesystem struct {
	name string
	dir  string

	logger log.Logger
}

// NewDiskFilesystem returns a new filesystem that is backed by a disk
// that implements the ReadFilesystem interface
func NewDiskFilesystem(config DiskConfig) (ReadFilesystem, error) {
	fs := &diskFilesystem{
		name:   config.Name,
		logger: config.Logger,
	}

	if fs.logger == nil {
		fs.logger = log.New("")
	}

	if len(config.Dir) == 0 {
		return nil, fmt.Errorf("invalid base path provided")
	}

	dir, err := filepath.Abs(config.Dir)
	if err != nil {
		return nil, err
	}

	finfo, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("the provided base path '%s' doesn't exist", config.Dir)
	}

	if !finfo.IsDir() {
		return nil, fmt.Errorf("the provided base path '%s' must be a directory", config.Dir)
	}

	fs.dir = dir

	fs.logger = fs.logger.WithFields(log.Fields{
		"name": fs.name,
		"type": "disk",
		"dir":  fs.dir,
	})

	return fs, nil
}

func (fs *diskFilesystem) Name() string {
	return fs.name
}

func (fs *diskFilesystem) Type() string {
	return "disk"
}

func (fs *diskFilesystem) osPath(p string) string {
	return filepath.Join(fs.dir, filepath.FromSlash(cleanPath(p)))
}

func (fs *diskFilesystem) Open(p string) (File, error) {
	p = cleanPath(p)

	f, err := os.Open(fs.osPath(p))
	if err != nil {
		return nil, err
	}

	finfo, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}

	if finfo.IsDir() {
		f.Close()
		return nil, fmt.Errorf("%s: %w", p, ErrIsDir)
	}

	return &diskFile{
		name: p,
		file: f,
	}, nil
}

func (fs *diskFilesystem) ReadFile(p string) ([]byte, error) {
	file, err := fs.Open(p)
	if err != nil {
		return nil, err
	}

	defer file.Close()

	buf := &bytes.Buffer{}

	if _, err := buf.ReadFrom(file); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

func (fs *diskFilesystem) Stat(p string) (FileInfo, error) {
	p = cleanPath(p)

	finfo, err := os.Stat(fs.osPath(p))
	if err != nil {
		return nil, err
	}

	return &diskFileInfo{
		name:  p,
		finfo: finfo,
	}, nil
}

// List returns the regular files in dir in the order the operating system
// returns the directory entries. Symlinks are followed.
func (fs *diskFilesystem) List(dir, pattern string) ([]FileInfo, error) {
	dir = cleanPath(dir)

	g, err := matcher(pattern)
	if err != nil {
		return nil, err
	}

	d, err := os.Open(fs.osPath(dir))
	if err != nil {
		return nil, err
	}

	defer d.Close()

	names, err := d.Readdirnames(-1)
	if err != nil {
		return nil, err
	}

	files := []FileInfo{}

	for _, name := range names {
		p := path.Join(dir, name)

		if !matches(g, p) {
			continue
		}

		finfo, err := os.Stat(fs.osPath(p))
		if err != nil {
			fs.logger.Debug().WithField("path", p).WithError(err).Log("Skipping unreadable entry")
			continue
		}

		if !finfo.Mode().IsRegular() {
			continue
		}

		files = append(files, &diskFileInfo{
			name:  p,
			finfo: finfo,
		})
	}

	return files, nil
}
