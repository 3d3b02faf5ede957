package fat32

import (
	"bytes"

	"github.com/osdev-lab/fat32/checkpoint"
)

// fsSignature is the payload of the boot block. A device whose block 0
// differs from it byte for byte is treated as unformatted.
var fsSignature = func() []byte {
	sig := make([]byte, BlockSize)
	banner := "" +
		"fat32drv        " +
		"cluster file    " +
		"system driver   " +
		"osdev-lab       " +
		"------------2024\n"
	copy(sig, banner)
	sig[BlockSize-2] = 'O'
	sig[BlockSize-1] = 'k'
	return sig
}()

// rootDirectoryName is the name stored in the root directory's descriptor
// slot.
var rootDirectoryName = [8]byte{'r', 'o', 'o', 't'}

// IsFormatted reports whether the boot block carries the filesystem
// signature.
func (d *Driver) IsFormatted() (bool, error) {
	buf := make([]byte, BlockSize)
	if err := d.device.ReadBlocks(buf, BootBlock, 1); err != nil {
		return false, checkpoint.From(&DeviceError{Op: "read", LBA: BootBlock, Count: 1, Err: err})
	}
	return bytes.Equal(buf, fsSignature), nil
}

// Format writes the signature to the boot block, resets the allocation table
// to its initial state (reserved sentinels, end-of-chain root, everything
// else free) and persists it together with a fresh root directory table whose
// descriptor references the root cluster itself as parent.
func (d *Driver) Format() error {
	if err := d.device.WriteBlocks(fsSignature, BootBlock, 1); err != nil {
		return checkpoint.From(&DeviceError{Op: "write", LBA: BootBlock, Count: 1, Err: err})
	}

	d.fat.reset()
	if err := d.fat.flush(d.device); err != nil {
		return err
	}

	root := &DirectoryTable{}
	initDirectoryTable(root, rootDirectoryName, RootCluster)
	return writeClusters(d.device, marshalTable(root), RootCluster, 1)
}

// Initialize prepares the driver for use: an unformatted device is formatted,
// otherwise the persisted allocation table is loaded into the cache. It must
// run exactly once before any other operation and is not re-entrant.
func (d *Driver) Initialize() error {
	formatted, err := d.IsFormatted()
	if err != nil {
		return err
	}
	if !formatted {
		return d.Format()
	}
	return d.fat.load(d.device)
}
