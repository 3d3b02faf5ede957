package fat32

import (
	"bytes"
	"encoding/binary"

	"github.com/osdev-lab/fat32/checkpoint"
)

// fatEntry is one word of the file allocation table. The raw on-disk encoding
// is kept in memory and classified through methods; conversion only happens
// at the (de)serialization edge.
type fatEntry uint32

// Value returns the raw on-disk word.
func (e fatEntry) Value() uint32 {
	return uint32(e)
}

// IsFree reports whether the cluster is allocatable.
func (e fatEntry) IsFree() bool {
	return e == fatFree
}

// IsEndOfChain reports whether the cluster terminates its chain.
func (e fatEntry) IsEndOfChain() bool {
	return e == fatEOF
}

// IsReserved reports whether the entry holds the reserved sentinel of
// cluster 0. Cluster 1's sentinel equals the end-of-chain word and is kept
// unallocatable by the scan range instead.
func (e fatEntry) IsReserved() bool {
	return e == fatCluster0
}

// IsNextCluster reports whether the entry points to a follow-up cluster.
func (e fatEntry) IsNextCluster() bool {
	return e >= 2 && e < ClusterMapSize
}

// NextCluster returns the follow-up cluster number. Only valid if
// IsNextCluster reports true.
func (e fatEntry) NextCluster() uint32 {
	return uint32(e)
}

// allocationTable is the in-memory mirror of the on-disk file allocation
// table. All chain mutations happen here and are persisted with flush before
// an operation returns.
type allocationTable struct {
	clusterMap [ClusterMapSize]fatEntry
}

// reset initializes the table for a freshly formatted device: reserved
// sentinels for clusters 0 and 1, an end-of-chain root directory, everything
// else free.
func (t *allocationTable) reset() {
	t.clusterMap[0] = fatCluster0
	t.clusterMap[1] = fatCluster1
	t.clusterMap[RootCluster] = fatEOF
	for i := RootCluster + 1; i < ClusterMapSize; i++ {
		t.clusterMap[i] = fatFree
	}
}

// load replaces the cache with the table persisted at FatCluster.
func (t *allocationTable) load(dev BlockDevice) error {
	data := make([]byte, ClusterSize)
	if err := readClusters(dev, data, FatCluster, 1); err != nil {
		return checkpoint.From(err)
	}
	return checkpoint.From(binary.Read(bytes.NewReader(data), binary.LittleEndian, &t.clusterMap))
}

// flush persists the cache at FatCluster.
func (t *allocationTable) flush(dev BlockDevice) error {
	buf := bytes.NewBuffer(make([]byte, 0, ClusterSize))
	_ = binary.Write(buf, binary.LittleEndian, &t.clusterMap)
	return checkpoint.From(writeClusters(dev, buf.Bytes(), FatCluster, 1))
}

// countFree returns the number of allocatable clusters.
func (t *allocationTable) countFree() int {
	free := 0
	for i := RootCluster; i < ClusterMapSize; i++ {
		if t.clusterMap[i].IsFree() {
			free++
		}
	}
	return free
}

// collectFree returns the first n free cluster numbers in ascending order.
// The caller must have checked that n clusters are actually free.
func (t *allocationTable) collectFree(n int) []uint32 {
	clusters := make([]uint32, 0, n)
	for i := uint32(RootCluster); i < ClusterMapSize && len(clusters) < n; i++ {
		if t.clusterMap[i].IsFree() {
			clusters = append(clusters, i)
		}
	}
	return clusters
}

// link chains the given clusters in order: every cluster points to its
// successor and the last one becomes the end of the chain.
func (t *allocationTable) link(clusters []uint32) {
	for i, cluster := range clusters {
		if i == len(clusters)-1 {
			t.clusterMap[cluster] = fatEOF
		} else {
			t.clusterMap[cluster] = fatEntry(clusters[i+1])
		}
	}
}

// walk calls visit for every cluster of the chain starting at start, in chain
// order, including the terminating cluster. A chain that does not reach an
// end-of-chain sentinel within the cluster map's size fails with
// ErrCorrupted.
func (t *allocationTable) walk(start uint32, visit func(cluster uint32) error) error {
	cluster := start
	for hops := 0; hops < ClusterMapSize; hops++ {
		if err := visit(cluster); err != nil {
			return err
		}
		entry := t.clusterMap[cluster]
		if entry.IsEndOfChain() {
			return nil
		}
		if !entry.IsNextCluster() {
			return checkpoint.From(ErrCorrupted)
		}
		cluster = entry.NextCluster()
	}
	return checkpoint.From(ErrCorrupted)
}

// freeChain returns every cluster of the chain starting at start to the free
// pool. The successor is read before the entry is cleared.
func (t *allocationTable) freeChain(start uint32) error {
	cluster := start
	for hops := 0; hops < ClusterMapSize; hops++ {
		next := t.clusterMap[cluster]
		t.clusterMap[cluster] = fatFree
		if next.IsEndOfChain() {
			return nil
		}
		if !next.IsNextCluster() {
			return checkpoint.From(ErrCorrupted)
		}
		cluster = next.NextCluster()
	}
	return checkpoint.From(ErrCorrupted)
}
