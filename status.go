package fat32

import "errors"

// Status is the signed status code surface consumed by the syscall layer.
// Every operation has its own mapping from the driver's error values, kept
// compatible with the original call surface. Conditions without a dedicated
// code collapse into StatusUnknown.
type Status int8

const (
	// StatusOK is returned by every operation on success.
	StatusOK Status = 0
	// StatusUnknown is the catch-all failure code.
	StatusUnknown Status = -1
)

// ReadDirectoryStatus maps a ReadDirectory error to its status code:
// 0 success, 1 not a directory, 2 not found, -1 invalid parent or unknown.
func ReadDirectoryStatus(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrNotADirectory):
		return 1
	case errors.Is(err, ErrNotFound):
		return 2
	default:
		return StatusUnknown
	}
}

// ReadStatus maps a ReadFile error to its status code:
// 0 success, 1 not a file, 2 buffer too small, 3 not found, -1 invalid
// parent or unknown.
func ReadStatus(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrNotAFile):
		return 1
	case errors.Is(err, ErrBufferTooSmall):
		return 2
	case errors.Is(err, ErrNotFound):
		return 3
	default:
		return StatusUnknown
	}
}

// WriteStatus maps a Write error to its status code:
// 0 success, 1 already exists, 2 invalid parent, -1 insufficient space,
// full directory or unknown.
func WriteStatus(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrAlreadyExists):
		return 1
	case errors.Is(err, ErrInvalidParent):
		return 2
	default:
		return StatusUnknown
	}
}

// DeleteStatus maps a Delete error to its status code:
// 0 success, 1 not found, 2 directory not empty, -1 invalid parent or
// unknown.
func DeleteStatus(err error) Status {
	switch {
	case err == nil:
		return StatusOK
	case errors.Is(err, ErrNotFound):
		return 1
	case errors.Is(err, ErrDirectoryNotEmpty):
		return 2
	default:
		return StatusUnknown
	}
}
