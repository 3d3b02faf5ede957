package fat32

import "errors"

// These errors classify every way a driver operation can fail. They are kept
// distinct even where the original call surface collapses several of them
// into one status code; the mapping back to status codes lives in status.go.
var (
	// ErrInvalidParent means the request's parent cluster does not resolve to
	// a valid directory table.
	ErrInvalidParent = errors.New("parent cluster is not a valid directory")
	// ErrNotFound means no entry matches the requested name and extension.
	ErrNotFound = errors.New("no entry matches the given name and extension")
	// ErrNotAFile means a read targeted a directory entry.
	ErrNotAFile = errors.New("entry is a directory, not a file")
	// ErrNotADirectory means a directory lookup matched a file entry.
	ErrNotADirectory = errors.New("entry is a file, not a directory")
	// ErrAlreadyExists means a write targeted a name and extension already
	// present in the parent directory.
	ErrAlreadyExists = errors.New("an entry with this name and extension already exists")
	// ErrBufferTooSmall means the caller's buffer cannot hold the stored file.
	ErrBufferTooSmall = errors.New("buffer is smaller than the stored file")
	// ErrDirectoryNotEmpty means a delete targeted a directory that still
	// holds live entries.
	ErrDirectoryNotEmpty = errors.New("directory is not empty")
	// ErrInsufficientSpace means a write needs more free clusters than the
	// allocation table has left.
	ErrInsufficientSpace = errors.New("not enough free clusters")
	// ErrDirectoryFull means the parent directory has no slot left after its
	// last occupied one. Tombstoned slots are never reused.
	ErrDirectoryFull = errors.New("directory table is full")
	// ErrCorrupted means a cluster chain does not terminate in an
	// end-of-chain sentinel.
	ErrCorrupted = errors.New("cluster chain does not terminate")
	// ErrNotSupported is returned by filesystem-surface operations the driver
	// has no semantics for, like rename.
	ErrNotSupported = errors.New("operation not supported by this filesystem")
)
