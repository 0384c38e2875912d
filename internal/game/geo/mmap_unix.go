//go:build unix

package geo

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"
)

// mapFile maps a region file read-only into memory.
func mapFile(path string) ([]byte, func() error, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, nil, fmt.Errorf("stat %s: %w", path, err)
	}
	size := fi.Size()
	if size == 0 {
		return nil, nil, fmt.Errorf("map %s: %w: empty file", path, ErrTruncated)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		return nil, nil, fmt.Errorf("mmap %s: %w", path, err)
	}

	// Block lookups jump around the file.
	_ = unix.Madvise(data, unix.MADV_RANDOM)

	return data, func() error { return unix.Munmap(data) }, nil
}
