package fat32

import (
	"errors"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/osdev-lab/fat32/checkpoint"
)

// Fs exposes a Driver as an afero filesystem. Paths are slash separated and
// resolved from the root directory; every element is an 8.3-style name
// matched exactly. The driver itself does no locking, so Fs serializes all
// driver calls behind one mutex.
type Fs struct {
	lock   sync.Mutex
	driver *Driver
}

var _ afero.Fs = (*Fs)(nil)

// NewFs initializes a driver on the given device and returns it as an afero
// filesystem. An unformatted device gets formatted.
func NewFs(device BlockDevice) (*Fs, error) {
	driver := New(device)
	if err := driver.Initialize(); err != nil {
		return nil, err
	}
	return &Fs{driver: driver}, nil
}

// fileDriver provides all driver access needed by File.
// It mainly exists to be able to mock the driver in tests.
// Generated mock using mockgen:
//  mockgen -source=fs.go -destination=filedriver_mock.go -package fat32
type fileDriver interface {
	readFileContent(parent uint32, name [8]byte, ext [3]byte, size uint32) ([]byte, error)
	readEntries(cluster uint32) ([]EntryHeader, error)
	writeFile(parent uint32, name [8]byte, ext [3]byte, data []byte) error
}

// readFileContent reads a whole file. The driver always moves whole
// clusters, so the read buffer is rounded up and trimmed afterwards.
func (fs *Fs) readFileContent(parent uint32, name [8]byte, ext [3]byte, size uint32) ([]byte, error) {
	buf := make([]byte, ceilDiv(int(size), ClusterSize)*ClusterSize)
	req := Request{
		Buf:           buf,
		Name:          name,
		Ext:           ext,
		ParentCluster: parent,
		BufferSize:    uint32(len(buf)),
	}

	fs.lock.Lock()
	err := fs.driver.ReadFile(req)
	fs.lock.Unlock()
	if err != nil {
		return nil, err
	}
	return buf[:size], nil
}

// readEntries returns the live user entries of the directory table at the
// given cluster.
func (fs *Fs) readEntries(cluster uint32) ([]EntryHeader, error) {
	table := &DirectoryTable{}

	fs.lock.Lock()
	err := fs.driver.loadTable(cluster, table)
	fs.lock.Unlock()
	if err != nil {
		return nil, err
	}
	if !table.isValid() {
		return nil, checkpoint.From(ErrInvalidParent)
	}

	var entries []EntryHeader
	for i := 1; i < EntriesPerTable; i++ {
		if table.Entries[i].IsOccupied() {
			entries = append(entries, table.Entries[i])
		}
	}
	return entries, nil
}

// writeFile persists a whole file in one driver call.
func (fs *Fs) writeFile(parent uint32, name [8]byte, ext [3]byte, data []byte) error {
	req := Request{
		Buf:           data,
		Name:          name,
		Ext:           ext,
		ParentCluster: parent,
		BufferSize:    uint32(len(data)),
	}

	fs.lock.Lock()
	defer fs.lock.Unlock()
	return fs.driver.Write(req)
}

// splitPath cleans a slash-separated path into its elements. The root
// resolves to no elements.
func splitPath(name string) []string {
	var elems []string
	for _, e := range strings.Split(name, "/") {
		if e != "" && e != "." {
			elems = append(elems, e)
		}
	}
	return elems
}

// splitName splits one path element at its last dot into the fixed-width
// name and extension fields.
func splitName(element string) (name [8]byte, ext [3]byte, err error) {
	base := element
	extension := ""
	if i := strings.LastIndex(element, "."); i >= 0 {
		base = element[:i]
		extension = element[i+1:]
	}

	if base == "" || len(base) > len(name) || len(extension) > len(ext) {
		return name, ext, checkpoint.Wrap(ErrNotSupported,
			&os.PathError{Op: "open", Path: element, Err: os.ErrInvalid})
	}
	copy(name[:], base)
	copy(ext[:], extension)
	return name, ext, nil
}

// resolveDir descends from the root along the given elements and returns the
// cluster of the final directory.
func (fs *Fs) resolveDir(elems []string) (uint32, error) {
	cluster := uint32(RootCluster)
	for _, elem := range elems {
		name, ext, err := splitName(elem)
		if err != nil {
			return 0, err
		}

		fs.lock.Lock()
		entry, err := fs.driver.Stat(Request{Name: name, Ext: ext, ParentCluster: cluster})
		fs.lock.Unlock()
		if err != nil {
			return 0, err
		}
		if !entry.IsDir() {
			return 0, checkpoint.From(ErrNotADirectory)
		}
		cluster = entry.FirstCluster()
	}
	return cluster, nil
}

// resolveEntry resolves a path to its parent directory cluster and entry.
func (fs *Fs) resolveEntry(path string) (parent uint32, entry EntryHeader, err error) {
	elems := splitPath(path)
	if len(elems) == 0 {
		return 0, EntryHeader{}, checkpoint.From(ErrNotFound)
	}

	parent, err = fs.resolveDir(elems[:len(elems)-1])
	if err != nil {
		return 0, EntryHeader{}, err
	}

	name, ext, err := splitName(elems[len(elems)-1])
	if err != nil {
		return 0, EntryHeader{}, err
	}

	fs.lock.Lock()
	entry, err = fs.driver.Stat(Request{Name: name, Ext: ext, ParentCluster: parent})
	fs.lock.Unlock()
	return parent, entry, err
}

// rootEntry synthesizes the root directory's entry from its descriptor slot.
func rootEntry() EntryHeader {
	entry := EntryHeader{
		Name:          rootDirectoryName,
		Attribute:     AttrSubdirectory,
		UserAttribute: uattrOccupied,
	}
	entry.SetFirstCluster(RootCluster)
	return entry
}

// Open opens a file or directory for reading.
func (fs *Fs) Open(name string) (afero.File, error) {
	if len(splitPath(name)) == 0 {
		return newFile(fs, name, rootEntry(), RootCluster), nil
	}

	parent, entry, err := fs.resolveEntry(name)
	if err != nil {
		return nil, err
	}
	return newFile(fs, name, entry, parent), nil
}

// OpenFile opens a file honoring os.O_CREATE; all other write-related flags
// are implied by it, since the driver only writes whole new files.
func (fs *Fs) OpenFile(name string, flag int, perm os.FileMode) (afero.File, error) {
	if flag&os.O_CREATE != 0 {
		return fs.Create(name)
	}
	return fs.Open(name)
}

// Create opens a new writable file. Its content buffers in memory and is
// persisted as one driver write when the file is closed.
func (fs *Fs) Create(name string) (afero.File, error) {
	elems := splitPath(name)
	if len(elems) == 0 {
		return nil, checkpoint.From(ErrNotAFile)
	}

	parent, err := fs.resolveDir(elems[:len(elems)-1])
	if err != nil {
		return nil, err
	}

	fileName, ext, err := splitName(elems[len(elems)-1])
	if err != nil {
		return nil, err
	}

	fs.lock.Lock()
	_, err = fs.driver.Stat(Request{Name: fileName, Ext: ext, ParentCluster: parent})
	fs.lock.Unlock()
	if err == nil {
		return nil, checkpoint.From(ErrAlreadyExists)
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	return newWritableFile(fs, name, fileName, ext, parent), nil
}

// Mkdir creates a single directory.
func (fs *Fs) Mkdir(name string, perm os.FileMode) error {
	elems := splitPath(name)
	if len(elems) == 0 {
		return checkpoint.From(ErrAlreadyExists)
	}

	parent, err := fs.resolveDir(elems[:len(elems)-1])
	if err != nil {
		return err
	}

	dirName, ext, err := splitName(elems[len(elems)-1])
	if err != nil {
		return err
	}

	fs.lock.Lock()
	defer fs.lock.Unlock()
	return fs.driver.Write(Request{Name: dirName, Ext: ext, ParentCluster: parent})
}

// MkdirAll creates a directory path, reusing the levels that already exist.
func (fs *Fs) MkdirAll(path string, perm os.FileMode) error {
	elems := splitPath(path)
	for i := range elems {
		err := fs.Mkdir(strings.Join(elems[:i+1], "/"), perm)
		if err != nil && !errors.Is(err, ErrAlreadyExists) {
			return err
		}
	}
	return nil
}

// Remove deletes a file or an empty directory.
func (fs *Fs) Remove(name string) error {
	elems := splitPath(name)
	if len(elems) == 0 {
		return checkpoint.From(ErrNotSupported)
	}

	parent, err := fs.resolveDir(elems[:len(elems)-1])
	if err != nil {
		return err
	}

	fileName, ext, err := splitName(elems[len(elems)-1])
	if err != nil {
		return err
	}

	fs.lock.Lock()
	defer fs.lock.Unlock()
	return fs.driver.Delete(Request{Name: fileName, Ext: ext, ParentCluster: parent})
}

// RemoveAll is not supported; the driver only deletes empty directories.
func (fs *Fs) RemoveAll(path string) error {
	return checkpoint.From(ErrNotSupported)
}

// Rename is not supported; entries are never relocated once written.
func (fs *Fs) Rename(oldname, newname string) error {
	return checkpoint.From(ErrNotSupported)
}

// Stat returns the os.FileInfo of a file or directory.
func (fs *Fs) Stat(name string) (os.FileInfo, error) {
	if len(splitPath(name)) == 0 {
		root := rootEntry()
		return root.FileInfo(), nil
	}

	_, entry, err := fs.resolveEntry(name)
	if err != nil {
		return nil, err
	}
	return entry.FileInfo(), nil
}

func (fs *Fs) Name() string {
	return "fat32drv"
}

// Chmod is not supported; entries store no permissions.
func (fs *Fs) Chmod(name string, mode os.FileMode) error {
	return checkpoint.From(ErrNotSupported)
}

// Chown is not supported; entries store no ownership.
func (fs *Fs) Chown(name string, uid, gid int) error {
	return checkpoint.From(ErrNotSupported)
}

// Chtimes is not supported; entries store no timestamps.
func (fs *Fs) Chtimes(name string, atime time.Time, mtime time.Time) error {
	return checkpoint.From(ErrNotSupported)
}
