package fat32

import (
	"fmt"

	"github.com/osdev-lab/fat32/checkpoint"
)

// MaxTransferBlocks is the largest number of blocks one BlockDevice call may
// move.
const MaxTransferBlocks = 255

// maxTransferClusters is the cluster-granular transfer cap derived from
// MaxTransferBlocks.
const maxTransferClusters = MaxTransferBlocks / ClusterBlockCount

// BlockDevice is the raw block I/O collaborator the driver runs on. Calls are
// synchronous and block the caller until complete. Implementations must
// reject transfers that exceed MaxTransferBlocks or run past the device end.
//
// Generated mock using mockgen:
//  mockgen -source=device.go -destination=device_mock.go -package fat32
type BlockDevice interface {
	// ReadBlocks reads count blocks starting at lba into dst.
	ReadBlocks(dst []byte, lba uint32, count uint8) error
	// WriteBlocks writes count blocks from src starting at lba.
	WriteBlocks(src []byte, lba uint32, count uint8) error
}

// DeviceError reports a failed block transfer. The driver treats any device
// failure as unrecoverable; it is the floor of the abstraction.
type DeviceError struct {
	Op    string
	LBA   uint32
	Count uint8
	Err   error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("device %s of %d block(s) at lba %d failed: %v", e.Op, e.Count, e.LBA, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}

// clusterToLBA converts a cluster number to its logical block address.
func clusterToLBA(cluster uint32) uint32 {
	return cluster * ClusterBlockCount
}

// readClusters reads count clusters starting at cluster into dst, splitting
// the transfer so no single device call exceeds the per-call block cap.
func readClusters(dev BlockDevice, dst []byte, cluster uint32, count int) error {
	for count > 0 {
		chunk := count
		if chunk > maxTransferClusters {
			chunk = maxTransferClusters
		}

		lba := clusterToLBA(cluster)
		blocks := uint8(chunk * ClusterBlockCount)
		if err := dev.ReadBlocks(dst[:chunk*ClusterSize], lba, blocks); err != nil {
			return checkpoint.From(&DeviceError{Op: "read", LBA: lba, Count: blocks, Err: err})
		}

		dst = dst[chunk*ClusterSize:]
		cluster += uint32(chunk)
		count -= chunk
	}
	return nil
}

// writeClusters writes count clusters from src starting at cluster, splitting
// the transfer so no single device call exceeds the per-call block cap.
func writeClusters(dev BlockDevice, src []byte, cluster uint32, count int) error {
	for count > 0 {
		chunk := count
		if chunk > maxTransferClusters {
			chunk = maxTransferClusters
		}

		lba := clusterToLBA(cluster)
		blocks := uint8(chunk * ClusterBlockCount)
		if err := dev.WriteBlocks(src[:chunk*ClusterSize], lba, blocks); err != nil {
			return checkpoint.From(&DeviceError{Op: "write", LBA: lba, Count: blocks, Err: err})
		}

		src = src[chunk*ClusterSize:]
		cluster += uint32(chunk)
		count -= chunk
	}
	return nil
}
