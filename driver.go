package fat32

import (
	"fmt"

	"github.com/osdev-lab/fat32/checkpoint"
)

// Driver is the filesystem driver for one block device. It owns the cached
// allocation table and a scratch directory buffer. The driver performs no
// locking; callers must serialize access to it.
type Driver struct {
	device BlockDevice
	fat    allocationTable
	dirBuf DirectoryTable
}

// New creates a driver on top of the given block device. Initialize must be
// called before any other operation.
func New(device BlockDevice) *Driver {
	return &Driver{device: device}
}

// Request describes one driver call. BufferSize is operation specific: the
// caller's buffer capacity for ReadFile, the exact payload length for Write
// (0 meaning "create a directory"), unused for Delete.
type Request struct {
	Buf           []byte
	Name          [8]byte
	Ext           [3]byte
	ParentCluster uint32
	BufferSize    uint32
}

// NewRequest builds a request for the given name and extension, padding both
// with zero bytes to their fixed on-disk width. It fails if either exceeds
// that width.
func NewRequest(name, ext string, parentCluster uint32) (Request, error) {
	req := Request{ParentCluster: parentCluster}
	if len(name) > len(req.Name) {
		return Request{}, checkpoint.From(fmt.Errorf("name %q is longer than %d bytes", name, len(req.Name)))
	}
	if len(ext) > len(req.Ext) {
		return Request{}, checkpoint.From(fmt.Errorf("extension %q is longer than %d bytes", ext, len(req.Ext)))
	}
	copy(req.Name[:], name)
	copy(req.Ext[:], ext)
	return req, nil
}

// loadTable reads the directory table stored at the given cluster.
func (d *Driver) loadTable(cluster uint32, table *DirectoryTable) error {
	data := make([]byte, ClusterSize)
	if err := readClusters(d.device, data, cluster, 1); err != nil {
		return err
	}
	return checkpoint.From(unmarshalTable(data, table))
}

// loadParent loads the request's parent directory into the scratch buffer
// and validates that it actually is a directory table.
func (d *Driver) loadParent(parentCluster uint32) error {
	if err := d.loadTable(parentCluster, &d.dirBuf); err != nil {
		return err
	}
	if !d.dirBuf.isValid() {
		return checkpoint.From(ErrInvalidParent)
	}
	return nil
}

// ReadDirectory looks up a subdirectory in the parent directory and returns
// its decoded table.
// Fails with ErrInvalidParent, ErrNotFound or ErrNotADirectory.
func (d *Driver) ReadDirectory(req Request) (*DirectoryTable, error) {
	if err := d.loadParent(req.ParentCluster); err != nil {
		return nil, err
	}

	slot := d.dirBuf.find(req.Name, req.Ext)
	if slot < 0 {
		return nil, checkpoint.From(ErrNotFound)
	}
	entry := d.dirBuf.Entries[slot]
	if !entry.IsDir() {
		return nil, checkpoint.From(ErrNotADirectory)
	}

	table := &DirectoryTable{}
	if err := d.loadTable(entry.FirstCluster(), table); err != nil {
		return nil, err
	}
	return table, nil
}

// Stat looks up an entry in the parent directory and returns a copy of it.
// Fails with ErrInvalidParent or ErrNotFound.
func (d *Driver) Stat(req Request) (EntryHeader, error) {
	if err := d.loadParent(req.ParentCluster); err != nil {
		return EntryHeader{}, err
	}

	slot := d.dirBuf.find(req.Name, req.Ext)
	if slot < 0 {
		return EntryHeader{}, checkpoint.From(ErrNotFound)
	}
	return d.dirBuf.Entries[slot], nil
}

// ReadFile copies a file's content into req.Buf by walking its cluster
// chain. Whole clusters are always moved, so the copy into req.Buf is only
// clamped by the buffer's length; BufferSize must still be at least the
// stored file size.
// Fails with ErrInvalidParent, ErrNotFound, ErrNotAFile, ErrBufferTooSmall
// or ErrCorrupted.
func (d *Driver) ReadFile(req Request) error {
	if err := d.loadParent(req.ParentCluster); err != nil {
		return err
	}

	slot := d.dirBuf.find(req.Name, req.Ext)
	if slot < 0 {
		return checkpoint.From(ErrNotFound)
	}
	entry := d.dirBuf.Entries[slot]
	if entry.IsDir() {
		return checkpoint.From(ErrNotAFile)
	}
	if req.BufferSize < entry.FileSize {
		return checkpoint.Wrap(ErrBufferTooSmall,
			fmt.Errorf("file is %d bytes, buffer %d", entry.FileSize, req.BufferSize))
	}

	scratch := make([]byte, ClusterSize)
	offset := 0
	return d.fat.walk(entry.FirstCluster(), func(cluster uint32) error {
		if err := readClusters(d.device, scratch, cluster, 1); err != nil {
			return err
		}
		if offset < len(req.Buf) {
			copy(req.Buf[offset:], scratch)
		}
		offset += ClusterSize
		return nil
	})
}

// Write creates a file from req.Buf, or a subdirectory if BufferSize is 0.
// Clusters are claimed first-fit by ascending cluster number and chained in
// that order. The new entry is appended after the parent table's last
// occupied slot; tombstoned slots are never reused. On success the payload,
// the parent table and the allocation table have all been persisted.
// Fails with ErrInvalidParent, ErrAlreadyExists, ErrDirectoryFull or
// ErrInsufficientSpace.
func (d *Driver) Write(req Request) error {
	if err := d.loadParent(req.ParentCluster); err != nil {
		return err
	}

	if d.dirBuf.find(req.Name, req.Ext) >= 0 {
		return checkpoint.From(ErrAlreadyExists)
	}
	slot := d.dirBuf.appendSlot()
	if slot < 0 {
		return checkpoint.From(ErrDirectoryFull)
	}

	// A directory stores no payload but always consumes one cluster for its
	// own table.
	needed := ceilDiv(int(req.BufferSize), ClusterSize)
	if req.BufferSize == 0 {
		needed = 1
	}
	if d.fat.countFree() < needed {
		return checkpoint.Wrap(ErrInsufficientSpace,
			fmt.Errorf("need %d cluster(s), %d free", needed, d.fat.countFree()))
	}
	clusters := d.fat.collectFree(needed)

	entry := EntryHeader{
		Name:          req.Name,
		Ext:           req.Ext,
		UserAttribute: uattrOccupied,
		FileSize:      req.BufferSize,
	}
	entry.SetFirstCluster(clusters[0])

	if req.BufferSize == 0 {
		entry.Attribute = AttrSubdirectory
		d.fat.clusterMap[clusters[0]] = fatEOF

		child := &DirectoryTable{}
		initDirectoryTable(child, req.Name, req.ParentCluster)
		if err := writeClusters(d.device, marshalTable(child), clusters[0], 1); err != nil {
			return err
		}
	} else {
		d.fat.link(clusters)

		payload := req.Buf
		if len(payload) > int(req.BufferSize) {
			payload = payload[:req.BufferSize]
		}
		scratch := make([]byte, ClusterSize)
		for i, cluster := range clusters {
			for j := range scratch {
				scratch[j] = 0
			}
			if off := i * ClusterSize; off < len(payload) {
				copy(scratch, payload[off:])
			}
			if err := writeClusters(d.device, scratch, cluster, 1); err != nil {
				return err
			}
		}
	}

	d.dirBuf.Entries[slot] = entry
	if err := writeClusters(d.device, marshalTable(&d.dirBuf), req.ParentCluster, 1); err != nil {
		return err
	}
	return d.fat.flush(d.device)
}

// Delete removes a file or an empty directory: the entry's slot is
// tombstoned and every cluster of its chain returns to the free pool. On
// success the parent table and the allocation table have both been
// persisted.
// Fails with ErrInvalidParent, ErrNotFound, ErrDirectoryNotEmpty or
// ErrCorrupted.
func (d *Driver) Delete(req Request) error {
	if err := d.loadParent(req.ParentCluster); err != nil {
		return err
	}

	slot := d.dirBuf.find(req.Name, req.Ext)
	if slot < 0 {
		return checkpoint.From(ErrNotFound)
	}
	entry := d.dirBuf.Entries[slot]

	if entry.IsDir() {
		child := &DirectoryTable{}
		if err := d.loadTable(entry.FirstCluster(), child); err != nil {
			return err
		}
		for i := 1; i < EntriesPerTable; i++ {
			if child.Entries[i].IsOccupied() {
				return checkpoint.From(ErrDirectoryNotEmpty)
			}
		}
	}

	// Validate the whole chain before mutating anything so a corrupt chain
	// leaves both the cache and the disk untouched.
	err := d.fat.walk(entry.FirstCluster(), func(uint32) error { return nil })
	if err != nil {
		return err
	}

	d.dirBuf.tombstone(slot)
	if err := d.fat.freeChain(entry.FirstCluster()); err != nil {
		return err
	}

	if err := writeClusters(d.device, marshalTable(&d.dirBuf), req.ParentCluster, 1); err != nil {
		return err
	}
	return d.fat.flush(d.device)
}

func ceilDiv(a, b int) int {
	if a%b != 0 {
		return a/b + 1
	}
	return a / b
}
