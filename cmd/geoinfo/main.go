// Command geoinfo prints the digest and block statistics of region files.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/itzfoxbrz/KamikaZL2/internal/game/geo"
)

type report struct {
	File   string          `json:"file"`
	Tile   string          `json:"tile,omitempty"`
	Size   int             `json:"size"`
	Digest string          `json:"digest"`
	Stats  geo.RegionStats `json:"stats"`
}

func main() {
	asJSON := flag.Bool("json", false, "print one JSON object per file")
	useMmap := flag.Bool("mmap", true, "map uncompressed files instead of reading them")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "usage: %s [-json] [-mmap=false] FILE.l2j[.zst]...\n", filepath.Base(os.Args[0]))
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	failed := false
	for _, path := range flag.Args() {
		rep, err := inspect(path, *useMmap)
		if err != nil {
			fmt.Fprintf(os.Stderr, "geoinfo: %v\n", err)
			failed = true
			continue
		}
		if err := writeReport(os.Stdout, rep, *asJSON); err != nil {
			fmt.Fprintf(os.Stderr, "geoinfo: %v\n", err)
			os.Exit(1)
		}
	}
	if failed {
		os.Exit(1)
	}
}

func inspect(path string, useMmap bool) (report, error) {
	region, err := geo.LoadRegionFile(path, useMmap)
	if err != nil {
		return report{}, err
	}
	defer region.Close()

	rep := report{
		File:   path,
		Size:   len(region.Bytes()),
		Digest: region.Digest(),
		Stats:  region.Stats(),
	}
	var x, y int
	if _, err := fmt.Sscanf(filepath.Base(path), geo.FileNameFormat, &x, &y); err == nil {
		rep.Tile = fmt.Sprintf("%d_%d", x, y)
	}
	return rep, nil
}

func writeReport(w io.Writer, rep report, asJSON bool) error {
	if asJSON {
		return json.NewEncoder(w).Encode(rep)
	}

	s := rep.Stats
	_, err := fmt.Fprintf(w, "%s\n  tile:       %s\n  size:       %d bytes\n  blake2b:    %s\n"+
		"  blocks:     %d flat, %d complex, %d multilayer\n  max layers: %d\n"+
		"  heights:    %d..%d\n  blocked:    %d cells\n",
		rep.File, orDash(rep.Tile), rep.Size, rep.Digest,
		s.Flat, s.Complex, s.Multilayer, s.MaxLayers,
		s.MinHeight, s.MaxHeight, s.Blocked)
	return err
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
