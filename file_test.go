package fat32

import (
	"errors"
	"io"
	"reflect"
	"syscall"
	"testing"

	"github.com/golang/mock/gomock"
)

// fileTestsError is just an error used in tests for File.
var fileTestsError = errors.New("a super error")

func testEntry(name string, ext string, size uint32, dir bool) EntryHeader {
	entry := EntryHeader{UserAttribute: uattrOccupied, FileSize: size}
	copy(entry.Name[:], name)
	copy(entry.Ext[:], ext)
	if dir {
		entry.Attribute = AttrSubdirectory
	}
	entry.SetFirstCluster(42)
	return entry
}

func TestFile_Read(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	entry := testEntry("FILE1", "TXT", 10, false)
	content := []byte("0123456789")

	fs := NewMockfileDriver(ctrl)
	fs.EXPECT().
		readFileContent(uint32(RootCluster), entry.Name, entry.Ext, uint32(10)).
		Return(content, nil)

	file := newFile(fs, "FILE1.TXT", entry, RootCluster)

	buf := make([]byte, 4)
	n, err := file.Read(buf)
	if err != nil || n != 4 {
		t.Fatalf("Read() = %v, %v, want 4, nil", n, err)
	}
	if string(buf) != "0123" {
		t.Errorf("Read() buf = %q, want %q", buf, "0123")
	}

	// The content is fetched once; further reads serve from memory.
	buf = make([]byte, 10)
	n, err = file.Read(buf)
	if err != nil || n != 6 {
		t.Fatalf("second Read() = %v, %v, want 6, nil", n, err)
	}
	if string(buf[:n]) != "456789" {
		t.Errorf("second Read() buf = %q, want %q", buf[:n], "456789")
	}

	if _, err = file.Read(buf); err != io.EOF {
		t.Errorf("Read() at end error = %v, want io.EOF", err)
	}
}

func TestFile_ReadError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	entry := testEntry("FILE1", "TXT", 10, false)

	fs := NewMockfileDriver(ctrl)
	fs.EXPECT().
		readFileContent(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, fileTestsError)

	file := newFile(fs, "FILE1.TXT", entry, RootCluster)

	_, err := file.Read(make([]byte, 10))
	if !errors.Is(err, ErrReadFileContent) {
		t.Errorf("Read() error = %v, want ErrReadFileContent", err)
	}
	if !errors.Is(err, fileTestsError) {
		t.Errorf("Read() error does not wrap the driver failure")
	}
}

func TestFile_ReadDirectory(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	file := newFile(NewMockfileDriver(ctrl), "SUB", testEntry("SUB", "", 0, true), RootCluster)

	_, err := file.Read(make([]byte, 10))
	if !errors.Is(err, syscall.EISDIR) {
		t.Errorf("Read() on a directory error = %v, want EISDIR", err)
	}
}

func TestFile_ReadAt(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	entry := testEntry("FILE1", "TXT", 10, false)

	fs := NewMockfileDriver(ctrl)
	fs.EXPECT().
		readFileContent(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]byte("0123456789"), nil)

	file := newFile(fs, "FILE1.TXT", entry, RootCluster)

	buf := make([]byte, 3)
	n, err := file.ReadAt(buf, 5)
	if err != nil || n != 3 {
		t.Fatalf("ReadAt() = %v, %v, want 3, nil", n, err)
	}
	if string(buf) != "567" {
		t.Errorf("ReadAt() buf = %q, want %q", buf, "567")
	}
	if file.offset != 0 {
		t.Error("ReadAt() moved the file offset")
	}

	if _, err := file.ReadAt(make([]byte, 3), 10); err != io.EOF {
		t.Errorf("ReadAt() past the end error = %v, want io.EOF", err)
	}
}

func TestFile_Seek(t *testing.T) {
	tests := []struct {
		name       string
		offset     int64
		whence     int
		start      int64
		want       int64
		wantErr    error
		wantEINVAL bool
	}{
		{name: "seek start", offset: 5, whence: io.SeekStart, want: 5},
		{name: "seek current", offset: 2, whence: io.SeekCurrent, start: 3, want: 5},
		{name: "seek end", offset: -4, whence: io.SeekEnd, want: 6},
		{name: "negative result", offset: -1, whence: io.SeekStart, wantErr: ErrSeekFile},
		{name: "past the end", offset: 11, whence: io.SeekStart, wantErr: ErrSeekFile},
		{name: "invalid whence", offset: 0, whence: 42, wantEINVAL: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			file := newFile(NewMockfileDriver(ctrl), "FILE1.TXT", testEntry("FILE1", "TXT", 10, false), RootCluster)
			file.offset = tt.start

			got, err := file.Seek(tt.offset, tt.whence)
			if tt.wantEINVAL {
				if !errors.Is(err, syscall.EINVAL) {
					t.Fatalf("Seek() error = %v, want EINVAL", err)
				}
				return
			}
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Seek() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Seek() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("Seek() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestFile_WriteAndClose(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	name := [8]byte{'N', 'E', 'W'}
	ext := [3]byte{'T', 'X', 'T'}
	content := []byte("fresh content")

	fs := NewMockfileDriver(ctrl)
	fs.EXPECT().writeFile(uint32(RootCluster), name, ext, content).Return(nil)

	file := newWritableFile(fs, "NEW.TXT", name, ext, RootCluster)

	n, err := file.Write(content)
	if err != nil || n != len(content) {
		t.Fatalf("Write() = %v, %v, want %v, nil", n, err, len(content))
	}
	if err := file.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
}

func TestFile_WriteAfterFlush(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	name := [8]byte{'N', 'E', 'W'}
	ext := [3]byte{'T', 'X', 'T'}

	fs := NewMockfileDriver(ctrl)
	fs.EXPECT().writeFile(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(nil)

	file := newWritableFile(fs, "NEW.TXT", name, ext, RootCluster)
	if _, err := file.Write([]byte("x")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := file.Sync(); err != nil {
		t.Fatalf("Sync() error = %v", err)
	}
	// A second Sync must not write again; the single writeFile expectation
	// above enforces that.
	if err := file.Sync(); err != nil {
		t.Fatalf("second Sync() error = %v", err)
	}

	if _, err := file.Write([]byte("y")); !errors.Is(err, ErrFileClosed) {
		t.Errorf("Write() after flush error = %v, want ErrFileClosed", err)
	}
}

func TestFile_EmptyCreateCannotBeStored(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	file := newWritableFile(NewMockfileDriver(ctrl), "NEW.TXT", [8]byte{'N'}, [3]byte{}, RootCluster)
	if err := file.Close(); !errors.Is(err, ErrNotSupported) {
		t.Errorf("Close() of an empty created file error = %v, want ErrNotSupported", err)
	}
}

func TestFile_Readdir(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	entries := []EntryHeader{
		testEntry("A", "TXT", 1, false),
		testEntry("B", "TXT", 2, false),
		testEntry("C", "", 0, true),
	}

	fs := NewMockfileDriver(ctrl)
	fs.EXPECT().readEntries(uint32(42)).Return(entries, nil).Times(2)

	file := newFile(fs, "SUB", testEntry("SUB", "", 0, true), RootCluster)

	infos, err := file.Readdir(2)
	if err != nil {
		t.Fatalf("Readdir(2) error = %v", err)
	}
	got := []string{infos[0].Name(), infos[1].Name()}
	if want := []string{"A.TXT", "B.TXT"}; !reflect.DeepEqual(got, want) {
		t.Errorf("Readdir(2) names = %v, want %v", got, want)
	}

	infos, err = file.Readdir(2)
	if err != io.EOF {
		t.Fatalf("Readdir(2) at end error = %v, want io.EOF", err)
	}
	if len(infos) != 1 || infos[0].Name() != "C" {
		t.Errorf("Readdir(2) tail = %v entries, want just C", len(infos))
	}
}

func TestFile_ReaddirOnFile(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	file := newFile(NewMockfileDriver(ctrl), "FILE1.TXT", testEntry("FILE1", "TXT", 1, false), RootCluster)
	if _, err := file.Readdir(-1); !errors.Is(err, syscall.ENOTDIR) {
		t.Errorf("Readdir() on a file error = %v, want ENOTDIR", err)
	}
}

func TestFile_StatName(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	file := newFile(NewMockfileDriver(ctrl), "FILE1.TXT", testEntry("FILE1", "TXT", 7, false), RootCluster)

	info, err := file.Stat()
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Name() != "FILE1.TXT" {
		t.Errorf("Stat().Name() = %q, want %q", info.Name(), "FILE1.TXT")
	}
	if info.Size() != 7 {
		t.Errorf("Stat().Size() = %v, want 7", info.Size())
	}
	if !info.ModTime().IsZero() {
		t.Error("Stat().ModTime() is not the zero time")
	}
}
