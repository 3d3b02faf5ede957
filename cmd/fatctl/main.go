// fatctl creates and manipulates fat32drv disk images.
//
//	fatctl -image disk.img mkfs
//	fatctl -image disk.img put README.md docs/README.md
//	fatctl -image disk.img ls docs
//	fatctl -image disk.img cat docs/README.md
//	fatctl -image disk.img mkdir docs/old
//	fatctl -image disk.img rm docs/README.md
package main

import (
	"flag"
	"fmt"
	"io"
	"io/ioutil"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"github.com/osdev-lab/fat32"
)

var log = logrus.New()

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [options] <mkfs|ls|cat|put|mkdir|rm> [args]\n\n", os.Args[0])
	flag.PrintDefaults()
}

func main() {
	image := flag.String("image", "disk.img", "path of the disk image")
	blocks := flag.Uint("blocks", fat32.ClusterMapSize*fat32.ClusterBlockCount, "device size in blocks")
	verbose := flag.Bool("v", false, "verbose output")
	flag.Usage = usage
	flag.Parse()

	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(1)
	}

	device, err := fat32.NewFileDevice(afero.NewOsFs(), *image, uint32(*blocks))
	if err != nil {
		log.Fatalf("open image %s: %v", *image, err)
	}
	defer device.Close()

	if err := run(device, args); err != nil {
		log.Fatal(err)
	}
}

func run(device fat32.BlockDevice, args []string) error {
	if args[0] == "mkfs" {
		driver := fat32.New(device)
		if err := driver.Format(); err != nil {
			return err
		}
		log.Info("filesystem created")
		return nil
	}

	fsys, err := fat32.NewFs(device)
	if err != nil {
		return err
	}

	switch cmd := args[0]; cmd {
	case "ls":
		path := ""
		if len(args) > 1 {
			path = args[1]
		}
		return ls(fsys, path)

	case "cat":
		if len(args) < 2 {
			return fmt.Errorf("cat needs a path")
		}
		return cat(fsys, args[1])

	case "put":
		if len(args) < 3 {
			return fmt.Errorf("put needs a source and a destination path")
		}
		return put(fsys, args[1], args[2])

	case "mkdir":
		if len(args) < 2 {
			return fmt.Errorf("mkdir needs a path")
		}
		return fsys.MkdirAll(args[1], 0755)

	case "rm":
		if len(args) < 2 {
			return fmt.Errorf("rm needs a path")
		}
		return fsys.Remove(args[1])

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func ls(fsys afero.Fs, path string) error {
	dir, err := fsys.Open(path)
	if err != nil {
		return err
	}
	defer dir.Close()

	entries, err := dir.Readdir(-1)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		kind := "file"
		if entry.IsDir() {
			kind = "dir"
		}
		fmt.Printf("%-4s %8d %s\n", kind, entry.Size(), entry.Name())
	}
	return nil
}

func cat(fsys afero.Fs, path string) error {
	file, err := fsys.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	_, err = io.Copy(os.Stdout, file)
	return err
}

func put(fsys afero.Fs, src, dst string) error {
	data, err := ioutil.ReadFile(src)
	if err != nil {
		return err
	}

	file, err := fsys.Create(dst)
	if err != nil {
		return err
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		return err
	}

	log.Debugf("writing %d bytes to %s", len(data), dst)
	return file.Close()
}
