//go:build !unix

package geo

import (
	"fmt"
	"os"
)

// mapFile reads the whole region file on platforms without mmap support.
func mapFile(path string) ([]byte, func() error, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	if len(data) == 0 {
		return nil, nil, fmt.Errorf("read %s: %w: empty file", path, ErrTruncated)
	}
	return data, nil, nil
}
