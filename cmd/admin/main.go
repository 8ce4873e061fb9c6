package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	persistlog "skirmish.ai/internal/persistence/log"
)

func main() {
	if len(os.Args) >= 2 {
		switch os.Args[1] {
		case "db":
			dbCmd(os.Args[2:])
			return
		case "ticks":
			ticksCmd(os.Args[2:])
			return
		case "state":
			stateCmd(os.Args[2:])
			return
		}
	}
	listCmd(os.Args[1:])
}

func listCmd(args []string) {
	fs := flag.NewFlagSet("admin", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	_ = fs.Parse(args)

	entries, err := os.ReadDir(filepath.Join(*dataDir, "matches"))
	if err != nil {
		fmt.Fprintln(os.Stderr, "read:", err)
		os.Exit(1)
	}
	for _, e := range entries {
		if e.IsDir() {
			fmt.Println(e.Name())
		}
	}
}

// ticksCmd dumps the zstd tick log of a match as plain JSONL.
func ticksCmd(args []string) {
	fs := flag.NewFlagSet("ticks", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	matchID := fs.String("match", "match_1", "match id")
	killsOnly := fs.Bool("kills", false, "only print ticks with kills")
	_ = fs.Parse(args)

	segs, err := persistlog.Segments(filepath.Join(*dataDir, "matches", *matchID))
	if err != nil {
		fmt.Fprintln(os.Stderr, "segments:", err)
		os.Exit(1)
	}
	enc := json.NewEncoder(os.Stdout)
	for _, path := range segs {
		entries, err := persistlog.ReadTicks(path)
		if err != nil {
			// A segment still being written ends mid-frame; print what decoded.
			fmt.Fprintf(os.Stderr, "%s: %v\n", filepath.Base(path), err)
		}
		for _, e := range entries {
			if *killsOnly && len(e.Kills) == 0 {
				continue
			}
			_ = enc.Encode(e)
		}
	}
}
