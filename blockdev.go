package fat32

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/afero"

	"github.com/osdev-lab/fat32/checkpoint"
)

// These errors may occur while using a FileDevice. The per-call transfer cap
// needs no check of its own: a uint8 count cannot exceed MaxTransferBlocks.
var (
	ErrOutOfRange  = errors.New("transfer runs past the device end")
	ErrShortBuffer = errors.New("buffer is smaller than the transfer")
)

// FileDevice adapts a disk image stored on an afero filesystem to the
// BlockDevice interface. The image is created (and grown to its full size)
// if it does not exist yet.
type FileDevice struct {
	file   afero.File
	blocks uint32
}

// NewFileDevice opens or creates the image at path on fsys, sized to the
// given number of blocks.
func NewFileDevice(fsys afero.Fs, path string, blocks uint32) (*FileDevice, error) {
	file, err := fsys.OpenFile(path, os.O_RDWR|os.O_CREATE, 0644)
	if err != nil {
		return nil, checkpoint.From(err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, checkpoint.From(err)
	}
	if info.Size() < int64(blocks)*BlockSize {
		if err := file.Truncate(int64(blocks) * BlockSize); err != nil {
			file.Close()
			return nil, checkpoint.From(err)
		}
	}

	return &FileDevice{file: file, blocks: blocks}, nil
}

// Blocks returns the device size in blocks.
func (d *FileDevice) Blocks() uint32 {
	return d.blocks
}

// ReadBlocks reads count blocks starting at lba into dst.
func (d *FileDevice) ReadBlocks(dst []byte, lba uint32, count uint8) error {
	if err := d.check(len(dst), lba, count); err != nil {
		return err
	}
	_, err := d.file.ReadAt(dst[:int(count)*BlockSize], int64(lba)*BlockSize)
	return checkpoint.From(err)
}

// WriteBlocks writes count blocks from src starting at lba.
func (d *FileDevice) WriteBlocks(src []byte, lba uint32, count uint8) error {
	if err := d.check(len(src), lba, count); err != nil {
		return err
	}
	_, err := d.file.WriteAt(src[:int(count)*BlockSize], int64(lba)*BlockSize)
	return checkpoint.From(err)
}

// Close closes the underlying image file.
func (d *FileDevice) Close() error {
	return checkpoint.From(d.file.Close())
}

func (d *FileDevice) check(bufLen int, lba uint32, count uint8) error {
	if lba+uint32(count) > d.blocks {
		return checkpoint.Wrap(ErrOutOfRange,
			fmt.Errorf("lba %d count %d on a %d-block device", lba, count, d.blocks))
	}
	if bufLen < int(count)*BlockSize {
		return checkpoint.Wrap(ErrShortBuffer,
			fmt.Errorf("%d bytes for %d block(s)", bufLen, count))
	}
	return nil
}
