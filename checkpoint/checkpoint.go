// Package checkpoint decorates errors with the file and line of the caller,
// which results in something similar to a stacktrace built only from the
// places that chose to record one. Every error attached to a checkpoint stays
// visible to errors.Is and errors.As.
package checkpoint

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
)

// From wraps err in a checkpoint recording the caller's position.
// It returns nil if err is nil.
func From(err error) error {
	// io.EOF is compared by identity all over the standard library and must
	// therefore never be wrapped.
	if err == nil || err == io.EOF {
		return err
	}
	return newCheckpoint(err, nil)
}

// Wrap records a checkpoint for prev and additionally attaches err, so that
// callers can predefine an error value and later check for it:
//
//	var ErrBroken = errors.New("broken")
//
//	if err := doSomething(); err != nil {
//		return checkpoint.Wrap(err, ErrBroken)
//	}
//
// Both prev and err can then be matched with errors.Is. Wrap returns nil if
// prev is nil.
func Wrap(prev, err error) error {
	if prev == nil {
		return nil
	}
	if prev == io.EOF {
		return io.EOF
	}
	return newCheckpoint(prev, err)
}

func newCheckpoint(prev, attached error) error {
	_, file, line, ok := runtime.Caller(2)
	cp := &checkpoint{prev: prev, attached: attached}
	if ok {
		cp.pos = fmt.Sprintf("%s:%d", filepath.Base(file), line)
	} else {
		cp.pos = "unknown"
	}
	return cp
}

type checkpoint struct {
	prev     error
	attached error
	pos      string
}

func (c *checkpoint) Error() string {
	if c.attached != nil {
		return fmt.Sprintf("%s: %v: %v", c.pos, c.attached, c.prev)
	}
	return fmt.Sprintf("%s: %v", c.pos, c.prev)
}

func (c *checkpoint) Unwrap() error {
	return c.prev
}

func (c *checkpoint) Is(target error) bool {
	return c.attached != nil && errors.Is(c.attached, target)
}

func (c *checkpoint) As(target interface{}) bool {
	return c.attached != nil && errors.As(c.attached, target)
}
