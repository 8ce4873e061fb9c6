package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"skirmish.ai/internal/sim/world"
)

// matchState mirrors the body served by the server's /admin/v1/state.
type matchState struct {
	MatchID string             `json:"match_id"`
	Tick    uint64             `json:"tick"`
	Metrics world.MatchMetrics `json:"metrics"`
}

func stateCmd(args []string) {
	fs := flag.NewFlagSet("state", flag.ExitOnError)
	baseURL := fs.String("url", "http://127.0.0.1:8080", "server base url")
	asJSON := fs.Bool("json", false, "print the decoded state as JSON")
	_ = fs.Parse(args)

	st, err := fetchState(&http.Client{Timeout: 5 * time.Second}, *baseURL)
	if err != nil {
		fmt.Fprintln(os.Stderr, "state:", err)
		os.Exit(1)
	}
	if *asJSON {
		printJSON(st)
		return
	}
	printState(os.Stdout, st)
}

func fetchState(cl *http.Client, baseURL string) (matchState, error) {
	u := strings.TrimRight(strings.TrimSpace(baseURL), "/") + "/admin/v1/state"
	resp, err := cl.Get(u)
	if err != nil {
		return matchState{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return matchState{}, fmt.Errorf("%s: %s", resp.Status, strings.TrimSpace(string(b)))
	}
	var st matchState
	if err := json.NewDecoder(resp.Body).Decode(&st); err != nil {
		return matchState{}, fmt.Errorf("decode: %w", err)
	}
	return st, nil
}

func printState(out io.Writer, st matchState) {
	m := st.Metrics
	obj := "neutral"
	switch {
	case m.Objective.Contested:
		obj = "contested"
	case m.Objective.ControllerTeam > 0:
		obj = fmt.Sprintf("team %d", m.Objective.ControllerTeam)
	}
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "match\t%s\n", st.MatchID)
	fmt.Fprintf(tw, "tick\t%d\n", st.Tick)
	fmt.Fprintf(tw, "clients\t%d\n", m.Clients)
	fmt.Fprintf(tw, "entities\t%d\n", m.Entities)
	fmt.Fprintf(tw, "step_ms\t%.3f\n", m.StepMS)
	fmt.Fprintf(tw, "queues\tinbox=%d join=%d leave=%d\n", m.QueueDepths.Inbox, m.QueueDepths.Join, m.QueueDepths.Leave)
	fmt.Fprintf(tw, "objective\t%s\n", obj)
	_ = tw.Flush()
}
