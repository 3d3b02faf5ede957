package fat32

import (
	"os"
	"strings"
	"time"
)

// FileInfo returns an os.FileInfo view of the entry.
func (e *EntryHeader) FileInfo() os.FileInfo {
	return entryFileInfo{*e}
}

type entryFileInfo struct {
	entry EntryHeader
}

// Name joins the fixed-width name and extension fields into the usual
// "NAME.EXT" form. Zero padding is stripped.
func (e entryFileInfo) Name() string {
	name := strings.TrimRight(string(e.entry.Name[:]), "\x00")
	ext := strings.TrimRight(string(e.entry.Ext[:]), "\x00")

	if ext != "" {
		return name + "." + ext
	}
	return name
}

func (e entryFileInfo) Size() int64 {
	return int64(e.entry.FileSize)
}

func (e entryFileInfo) Mode() os.FileMode {
	if e.IsDir() {
		return os.ModeDir
	}
	return 0
}

// ModTime always returns the zero time: the on-disk entry stores no
// timestamps.
func (e entryFileInfo) ModTime() time.Time {
	return time.Time{}
}

func (e entryFileInfo) IsDir() bool {
	return e.entry.IsDir()
}

func (e entryFileInfo) Sys() interface{} {
	return e.entry
}
