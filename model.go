// File model contains the structs and constants which match the on-disk
// structures of the filesystem.

package fat32

import (
	"bytes"
	"encoding/binary"
)

// Geometry of the filesystem. The cluster map is sized so that the serialized
// allocation table fills exactly one cluster.
const (
	// BlockSize is the size of one device block in bytes.
	BlockSize = 512
	// ClusterBlockCount is the number of consecutive blocks forming one cluster.
	ClusterBlockCount = 4
	// ClusterSize is the size of one cluster in bytes.
	ClusterSize = BlockSize * ClusterBlockCount
	// ClusterMapSize is the number of entries in the file allocation table and
	// therefore also the number of addressable clusters.
	ClusterMapSize = 512
)

// Fixed locations on the device.
const (
	// BootBlock is the block holding the filesystem signature.
	BootBlock = 0
	// FatCluster is the cluster holding the serialized allocation table.
	FatCluster = 1
	// RootCluster is the home of the root directory table.
	RootCluster = 2
)

// On-disk words of the allocation table.
const (
	fatFree     = 0x00000000
	fatEOF      = 0x0FFFFFFF
	fatCluster0 = 0x0FFFFFF0
	fatCluster1 = 0x0FFFFFFF
)

// Directory entry attribute and occupancy values.
const (
	// AttrSubdirectory marks an entry as a directory.
	AttrSubdirectory = 0x10
	// uattrOccupied marks an entry slot as holding a live entry. A slot with
	// any other occupancy value is free or tombstoned.
	uattrOccupied = 0xAA
)

// EntryHeaderSize is the serialized size of one directory entry.
const EntryHeaderSize = 32

// EntriesPerTable is the number of entry slots in one directory table.
// Slot 0 is the directory's own descriptor, slots 1..EntriesPerTable-1 hold
// user entries.
const EntriesPerTable = ClusterSize / EntryHeaderSize

// EntryHeader is the on-disk layout of one directory-table slot. The reserved
// area sits where the classic FAT layout keeps its timestamp fields.
type EntryHeader struct {
	Name          [8]byte
	Ext           [3]byte
	Attribute     byte
	UserAttribute byte
	Reserved      [11]byte
	ClusterHigh   uint16
	ClusterLow    uint16
	FileSize      uint32
}

// FirstCluster joins the split 16-bit cluster fields into a single cluster
// number. The split exists only on disk.
func (e *EntryHeader) FirstCluster() uint32 {
	return uint32(e.ClusterHigh)<<16 | uint32(e.ClusterLow)
}

// SetFirstCluster splits a cluster number into the two on-disk fields.
func (e *EntryHeader) SetFirstCluster(cluster uint32) {
	e.ClusterLow = uint16(cluster & 0xFFFF)
	e.ClusterHigh = uint16(cluster >> 16)
}

// IsDir reports whether the entry describes a directory.
func (e *EntryHeader) IsDir() bool {
	return e.Attribute == AttrSubdirectory
}

// IsOccupied reports whether the slot holds a live entry.
func (e *EntryHeader) IsOccupied() bool {
	return e.UserAttribute == uattrOccupied
}

// matches compares the fixed-width name and extension exactly, byte for byte.
// There is no case folding and no wildcarding.
func (e *EntryHeader) matches(name [8]byte, ext [3]byte) bool {
	return e.Name == name && e.Ext == ext
}

// DirectoryTable is the fixed array of entries stored in one directory
// cluster. Slot 0 describes the directory itself and carries the parent
// directory's cluster number in its cluster fields.
type DirectoryTable struct {
	Entries [EntriesPerTable]EntryHeader
}

// ParentCluster returns the parent back-reference stored in the descriptor
// slot.
func (t *DirectoryTable) ParentCluster() uint32 {
	return t.Entries[0].FirstCluster()
}

// isValid reports whether the table's descriptor slot marks it as a
// directory. A cluster holding file payload fails this check.
func (t *DirectoryTable) isValid() bool {
	return t.Entries[0].IsDir()
}

// find returns the slot index of the first live entry matching name and ext,
// or -1. The descriptor in slot 0 never matches.
func (t *DirectoryTable) find(name [8]byte, ext [3]byte) int {
	for i := 1; i < EntriesPerTable; i++ {
		if t.Entries[i].IsOccupied() && t.Entries[i].matches(name, ext) {
			return i
		}
	}
	return -1
}

// appendSlot returns the slot directly after the last occupied one, or -1 if
// that slot is past the end of the table. Tombstoned slots before the last
// occupied one are never reused.
func (t *DirectoryTable) appendSlot() int {
	last := 0
	for i := 1; i < EntriesPerTable; i++ {
		if t.Entries[i].IsOccupied() {
			last = i
		}
	}
	if last+1 >= EntriesPerTable {
		return -1
	}
	return last + 1
}

// tombstone clears a slot's occupancy and key so it no longer matches any
// lookup. The remaining fields are left as they are, unreachable.
func (t *DirectoryTable) tombstone(slot int) {
	t.Entries[slot].UserAttribute = 0
	t.Entries[slot].Name = [8]byte{}
	t.Entries[slot].Ext = [3]byte{}
}

// initDirectoryTable fills the descriptor slot of a fresh table with the
// directory's own name and the parent back-reference.
func initDirectoryTable(t *DirectoryTable, name [8]byte, parentCluster uint32) {
	t.Entries[0] = EntryHeader{
		Name:          name,
		Attribute:     AttrSubdirectory,
		UserAttribute: uattrOccupied,
	}
	t.Entries[0].SetFirstCluster(parentCluster)
}

// marshalTable serializes a directory table into exactly one cluster.
func marshalTable(t *DirectoryTable) []byte {
	buf := bytes.NewBuffer(make([]byte, 0, ClusterSize))
	// Writing a fixed-size struct into a sized buffer cannot fail.
	_ = binary.Write(buf, binary.LittleEndian, t)
	return buf.Bytes()
}

// unmarshalTable deserializes one cluster into a directory table.
func unmarshalTable(data []byte, t *DirectoryTable) error {
	return binary.Read(bytes.NewReader(data), binary.LittleEndian, t)
}
