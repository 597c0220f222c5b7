package fs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiskFilesystemInvalidDir(t *testing.T) {
	_, err := NewDiskFilesystem(DiskConfig{})
	require.Error(t, err)

	_, err = NewDiskFilesystem(DiskConfig{Dir: filepath.Join(t.TempDir(), "missing")})
	require.Error(t, err)

	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	_, err = NewDiskFilesystem(DiskConfig{Dir: file})
	require.Error(t, err)
}

func TestDiskFilesystemList(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a_job_1_conf.xml"), []byte("a"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b_job_2_conf.xml"), []byte("bb"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "job_1_history"), []byte("ccc"), 0644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub_job_1_conf.xml"), 0755))

	fs, err := NewDiskFilesystem(DiskConfig{Dir: dir})
	require.NoError(t, err)
	require.Equal(t, "disk", fs.Type())

	files, err := fs.List("/", "")
	require.NoError(t, err)
	require.Equal(t, 3, len(files))

	files, err = fs.List("/", "*_job_1_conf.xml")
	require.NoError(t, err)
	require.Equal(t, 1, len(files))
	require.Equal(t, "/a_job_1_conf.xml", files[0].Name())
	require.Equal(t, int64(1), files[0].Size())

	_, err = fs.List("/", "[")
	require.Error(t, err)

	_, err = fs.List("/missing", "")
	require.Error(t, err)
}

func TestDiskFilesystemOpen(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, os.WriteFile(filepath.Join(dir, "history"), []byte("Meta VERSION=\"1\" ."), 0644))

	fs, err := NewDiskFilesystem(DiskConfig{Dir: dir})
	require.NoError(t, err)

	data, err := fs.ReadFile("history")
	require.NoError(t, err)
	require.Equal(t, "Meta VERSION=\"1\" .", string(data))

	file, err := fs.Open("/history")
	require.NoError(t, err)
	require.Equal(t, "/history", file.Name())

	info, err := file.Stat()
	require.NoError(t, err)
	require.False(t, info.IsDir())
	require.NoError(t, file.Close())

	_, err = fs.Open("/missing")
	require.ErrorIs(t, err, ErrNotExist)

	_, err = fs.Open("/")
	require.ErrorIs(t, err, ErrIsDir)

	info, err = fs.Stat("/")
	require.NoError(t, err)
	require.True(t, info.IsDir())
}

func TestDiskFilesystemEscape(t *testing.T) {
	parent := t.TempDir()
	dir := filepath.Join(parent, "root")
	require.NoError(t, os.Mkdir(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(parent, "secret"), []byte("x"), 0644))

	fs, err := NewDiskFilesystem(DiskConfig{Dir: dir})
	require.NoError(t, err)

	_, err = fs.Open("../secret")
	require.ErrorIs(t, err, ErrNotExist)
}
