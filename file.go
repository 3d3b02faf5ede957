package fat32

import (
	"errors"
	"io"
	"os"
	"syscall"

	"github.com/osdev-lab/fat32/checkpoint"
)

// These errors may occur while processing a file.
var (
	ErrReadFileContent = errors.New("could not read file content")
	ErrSeekFile        = errors.New("could not seek inside of the file")
	ErrReadDirectory   = errors.New("could not read the directory")
	ErrFileClosed      = errors.New("file is already closed or flushed")
)

// File is one open file or directory handle. Files opened through Create
// buffer their content in memory and persist it as a single driver write on
// Close; the driver has no in-place update.
type File struct {
	fs   fileDriver
	path string

	entry         EntryHeader
	parentCluster uint32

	writable bool
	flushed  bool
	data     []byte
	loaded   bool
	offset   int64
}

func newFile(fs fileDriver, path string, entry EntryHeader, parentCluster uint32) *File {
	return &File{
		fs:            fs,
		path:          path,
		entry:         entry,
		parentCluster: parentCluster,
	}
}

func newWritableFile(fs fileDriver, path string, name [8]byte, ext [3]byte, parentCluster uint32) *File {
	entry := EntryHeader{Name: name, Ext: ext, UserAttribute: uattrOccupied}
	return &File{
		fs:            fs,
		path:          path,
		entry:         entry,
		parentCluster: parentCluster,
		writable:      true,
		loaded:        true,
	}
}

// size is the current logical file size: the buffered length for a writable
// file, the stored size otherwise.
func (f *File) size() int64 {
	if f.writable {
		return int64(len(f.data))
	}
	return int64(f.entry.FileSize)
}

// load fetches the whole file content once. The driver reads whole cluster
// chains only, so there is no partial fetch to be had.
func (f *File) load() error {
	if f.loaded {
		return nil
	}

	data, err := f.fs.readFileContent(f.parentCluster, f.entry.Name, f.entry.Ext, f.entry.FileSize)
	if err != nil {
		return checkpoint.Wrap(err, ErrReadFileContent)
	}
	f.data = data
	f.loaded = true
	return nil
}

func (f *File) Read(p []byte) (int, error) {
	if f.entry.IsDir() {
		return 0, checkpoint.Wrap(syscall.EISDIR, ErrReadFileContent)
	}
	if f.offset >= f.size() {
		return 0, io.EOF
	}
	if err := f.load(); err != nil {
		return 0, err
	}

	n := copy(p, f.data[f.offset:])
	f.offset += int64(n)
	return n, nil
}

func (f *File) ReadAt(p []byte, off int64) (int, error) {
	if f.entry.IsDir() {
		return 0, checkpoint.Wrap(syscall.EISDIR, ErrReadFileContent)
	}
	if off >= f.size() {
		return 0, io.EOF
	}
	if err := f.load(); err != nil {
		return 0, err
	}

	n := copy(p, f.data[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// Seek jumps to a specific offset in the file. This affects all Read and
// Write operations except ReadAt.
// May return a syscall.EINVAL error if the whence value is invalid.
func (f *File) Seek(offset int64, whence int) (int64, error) {
	switch whence {
	case io.SeekStart:
	case io.SeekCurrent:
		offset = f.offset + offset
	case io.SeekEnd:
		offset = f.size() + offset
	default:
		return 0, checkpoint.Wrap(syscall.EINVAL, ErrSeekFile)
	}

	if offset < 0 || offset > f.size() {
		return 0, checkpoint.From(ErrSeekFile)
	}

	f.offset = offset
	return offset, nil
}

// Write appends to the in-memory buffer of a file opened through Create.
func (f *File) Write(p []byte) (int, error) {
	if !f.writable {
		return 0, checkpoint.From(ErrNotSupported)
	}
	if f.flushed {
		return 0, checkpoint.From(ErrFileClosed)
	}

	// Writes at an offset below the buffered end overwrite in place.
	if f.offset < int64(len(f.data)) {
		n := copy(f.data[f.offset:], p)
		f.data = append(f.data, p[n:]...)
	} else {
		f.data = append(f.data, p...)
	}
	f.offset += int64(len(p))
	return len(p), nil
}

func (f *File) WriteAt(p []byte, off int64) (int, error) {
	return 0, checkpoint.From(ErrNotSupported)
}

func (f *File) WriteString(s string) (int, error) {
	return f.Write([]byte(s))
}

// Sync persists a created file's buffered content. It can only happen once;
// the driver writes files whole.
func (f *File) Sync() error {
	if !f.writable || f.flushed {
		return nil
	}
	// A zero payload length means "create a directory" to the driver, so an
	// empty file has no on-disk representation.
	if len(f.data) == 0 {
		return checkpoint.Wrap(errors.New("a zero-length file cannot be stored"), ErrNotSupported)
	}

	err := f.fs.writeFile(f.parentCluster, f.entry.Name, f.entry.Ext, f.data)
	if err != nil {
		return err
	}
	f.flushed = true
	f.entry.FileSize = uint32(len(f.data))
	return nil
}

// Truncate resizes the in-memory buffer of a file opened through Create.
func (f *File) Truncate(size int64) error {
	if !f.writable {
		return checkpoint.From(ErrNotSupported)
	}
	if f.flushed {
		return checkpoint.From(ErrFileClosed)
	}

	if size <= int64(len(f.data)) {
		f.data = f.data[:size]
	} else {
		f.data = append(f.data, make([]byte, size-int64(len(f.data)))...)
	}
	return nil
}

func (f *File) Name() string {
	return f.path
}

// Readdir reads the contents of a directory, count entries at a time.
// May return syscall.ENOTDIR if the current File is no directory.
func (f *File) Readdir(count int) ([]os.FileInfo, error) {
	if !f.entry.IsDir() {
		return nil, checkpoint.Wrap(syscall.ENOTDIR, ErrReadDirectory)
	}

	entries, err := f.fs.readEntries(f.entry.FirstCluster())
	if err != nil {
		return nil, checkpoint.Wrap(err, ErrReadDirectory)
	}

	end := len(entries)
	if int64(len(entries)) < f.offset+int64(count) {
		count = len(entries) - int(f.offset)
		err = io.EOF
	}
	if count >= 0 {
		end = int(f.offset) + count
	}

	entries = entries[f.offset:end]

	if count > 0 {
		f.offset += int64(count)
	} else if count < 0 {
		f.offset = int64(end)
	}

	result := make([]os.FileInfo, len(entries))
	for i := range entries {
		result[i] = entries[i].FileInfo()
	}
	return result, err
}

func (f *File) Readdirnames(count int) ([]string, error) {
	entries, err := f.Readdir(count)
	if err != nil && err != io.EOF {
		return nil, checkpoint.Wrap(err, ErrReadDirectory)
	}

	names := make([]string, len(entries))
	for i, entry := range entries {
		names[i] = entry.Name()
	}
	return names, err
}

func (f *File) Stat() (os.FileInfo, error) {
	return f.entry.FileInfo(), nil
}

// Close flushes a created file and resets the handle.
func (f *File) Close() error {
	err := f.Sync()

	f.fs = nil
	f.path = ""
	f.entry = EntryHeader{}
	f.parentCluster = 0
	f.writable = false
	f.data = nil
	f.loaded = false
	f.offset = 0

	return err
}
