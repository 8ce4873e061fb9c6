package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"skirmish.ai/internal/persistence/indexdb"
)

func dbCmd(args []string) {
	fs := flag.NewFlagSet("db", flag.ExitOnError)
	dataDir := fs.String("data", "./data", "runtime data directory")
	matchID := fs.String("match", "", "match id (required unless -db)")
	dbPath := fs.String("db", "", "sqlite db path (optional)")
	from := fs.Uint64("from", 0, "first tick (ticks)")
	to := fs.Uint64("to", 0, "last tick (ticks; 0 = from+100)")
	asJSON := fs.Bool("json", false, "print JSON instead of a table")
	_ = fs.Parse(args)

	q := "scoreboard"
	if fs.NArg() > 0 {
		q = strings.TrimSpace(fs.Arg(0))
	}

	path := strings.TrimSpace(*dbPath)
	if path == "" {
		if strings.TrimSpace(*matchID) == "" {
			fmt.Fprintln(os.Stderr, "missing -match or -db")
			os.Exit(2)
		}
		path = filepath.Join(*dataDir, "matches", *matchID, "index", "match.sqlite")
	}
	if _, err := os.Stat(path); err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}

	r, err := indexdb.OpenReader(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, "open:", err)
		os.Exit(1)
	}
	defer r.Close()
	ctx := context.Background()

	switch q {
	case "scoreboard":
		rows, err := r.Scoreboard(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		if *asJSON {
			printJSON(rows)
			return
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "PLAYER\tKILLS\tBOUNTY\tLOSSES")
		for _, s := range rows {
			fmt.Fprintf(tw, "%d\t%d\t%d\t%d\n", s.Player, s.Kills, s.Bounty, s.Losses)
		}
		_ = tw.Flush()

	case "ticks":
		end := *to
		if end == 0 {
			end = *from + 100
		}
		rows, err := r.Ticks(ctx, *from, end)
		if err != nil {
			fmt.Fprintln(os.Stderr, "query:", err)
			os.Exit(1)
		}
		printJSON(rows)

	default:
		fmt.Fprintf(os.Stderr, "unknown query %q (scoreboard|ticks)\n", q)
		os.Exit(2)
	}
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
