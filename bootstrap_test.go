package fat32

import (
	"bytes"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
)

func TestFormat_WritesSignature(t *testing.T) {
	device := testDevice(t)
	driver := New(device)

	if err := driver.Format(); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	boot := make([]byte, BlockSize)
	if err := device.ReadBlocks(boot, BootBlock, 1); err != nil {
		t.Fatalf("ReadBlocks() error = %v", err)
	}
	if !bytes.Equal(boot, fsSignature) {
		t.Error("boot block does not hold the filesystem signature")
	}
}

func TestFormat_RootDescribesItself(t *testing.T) {
	driver := New(testDevice(t))
	if err := driver.Format(); err != nil {
		t.Fatalf("Format() error = %v", err)
	}

	root := &DirectoryTable{}
	if err := driver.loadTable(RootCluster, root); err != nil {
		t.Fatalf("loadTable() error = %v", err)
	}
	if !root.isValid() {
		t.Error("root descriptor is not marked as a directory")
	}
	if got := root.ParentCluster(); got != RootCluster {
		t.Errorf("root parent back-reference = %v, want %v", got, RootCluster)
	}
}

func TestInitialize_PropagatesDeviceError(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	bootErr := errors.New("medium failure")
	device := NewMockBlockDevice(ctrl)
	device.EXPECT().ReadBlocks(gomock.Any(), gomock.Any(), gomock.Any()).Return(bootErr)

	driver := New(device)
	err := driver.Initialize()
	if err == nil {
		t.Fatal("Initialize() error = nil, want a device error")
	}

	var devErr *DeviceError
	if !errors.As(err, &devErr) {
		t.Fatalf("Initialize() error = %v, want *DeviceError", err)
	}
	if !errors.Is(err, bootErr) {
		t.Error("device error does not wrap the underlying cause")
	}
}
