package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"skirmish.ai/internal/persistence/indexdb"
	persistlog "skirmish.ai/internal/persistence/log"
	"skirmish.ai/internal/sim/catalogs"
	"skirmish.ai/internal/sim/tuning"
	"skirmish.ai/internal/sim/world"
	"skirmish.ai/internal/transport/ws"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		matchID    = flag.String("match", "match_1", "match id")
		seed       = flag.Int64("seed", 0, "match seed (0: use tuning.yaml)")
		configDir  = flag.String("configs", "./configs", "config directory (catalog overrides + tuning.yaml)")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite tick/kill index")
		disableLog = flag.Bool("disable_ticklog", false, "disable the zstd JSONL tick log")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	cats, err := catalogs.Load(*configDir)
	if err != nil {
		logger.Fatalf("load catalogs: %v", err)
	}

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}
	if *seed != 0 {
		tune.Seed = *seed
	}

	w, err := world.New(tune.WorldConfig(*matchID), cats)
	if err != nil {
		logger.Fatalf("world: %v", err)
	}

	matchDir := filepath.Join(*dataDir, "matches", *matchID)
	if err := os.MkdirAll(matchDir, 0o755); err != nil {
		logger.Fatalf("data dir: %v", err)
	}

	// Optional sinks; neither feeds back into the simulation.
	var sinks persistlog.MultiTickLogger
	if !*disableLog {
		tickLog := persistlog.NewTickLogger(matchDir)
		defer tickLog.Close()
		sinks = append(sinks, tickLog)
	}
	var idx *indexdb.SQLiteIndex
	if !*disableDB {
		idx, err = indexdb.OpenSQLite(filepath.Join(matchDir, "index", "match.sqlite"))
		if err != nil {
			logger.Fatalf("open index: %v", err)
		}
		defer idx.Close()
		if err := idx.UpsertCatalogs(*matchID, cats, tune); err != nil {
			logger.Printf("index: upsert catalogs: %v", err)
		}
		sinks = append(sinks, idx)
	}
	if len(sinks) > 0 {
		w.SetTickLogger(sinks)
	}

	ctx, cancel := signalContext()
	defer cancel()

	go func() {
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("match stopped: %v", err)
		}
	}()

	wsSrv := ws.NewServer(w, logger)
	wsSrv.SetLimits(ws.Limits{
		CmdWindowTicks: tune.Transport.CmdWindowTicks,
		CmdMax:         tune.Transport.CmdMax,
		OutQueue:       tune.Transport.OutQueue,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writeMetrics(rw, *matchID, w.Metrics(), idx)
	})

	if envBool("SK_ENABLE_ADMIN_HTTP", defaultEnableAdminHTTP()) {
		// Local-only admin endpoints (do not affect simulation determinism).
		mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			rw.Header().Set("Content-Type", "application/json")
			resp := struct {
				MatchID string             `json:"match_id"`
				Tick    uint64             `json:"tick"`
				Metrics world.MatchMetrics `json:"metrics"`
			}{
				MatchID: *matchID,
				Tick:    w.CurrentTick(),
				Metrics: w.Metrics(),
			}
			_ = json.NewEncoder(rw).Encode(resp)
		})
	} else {
		logger.Printf("admin endpoints disabled (SK_ENABLE_ADMIN_HTTP=false)")
	}
	if envBool("SK_ENABLE_PPROF_HTTP", false) {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	mux.HandleFunc("/v1/ws", wsSrv.Handler())

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("match %s: %d players, %d Hz, listening on %s", *matchID, len(tune.Match.Players), tune.TickRateHz, *addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

// writeMetrics renders the minimal Prometheus exposition format.
func writeMetrics(rw http.ResponseWriter, matchID string, m world.MatchMetrics, idx *indexdb.SQLiteIndex) {
	fmt.Fprintf(rw, "# HELP skirmish_match_tick Current match tick.\n")
	fmt.Fprintf(rw, "# TYPE skirmish_match_tick gauge\n")
	fmt.Fprintf(rw, "skirmish_match_tick{match=%q} %d\n", matchID, m.Tick)

	fmt.Fprintf(rw, "# HELP skirmish_match_entities Live entities.\n")
	fmt.Fprintf(rw, "# TYPE skirmish_match_entities gauge\n")
	fmt.Fprintf(rw, "skirmish_match_entities{match=%q} %d\n", matchID, m.Entities)

	fmt.Fprintf(rw, "# HELP skirmish_match_clients Connected clients.\n")
	fmt.Fprintf(rw, "# TYPE skirmish_match_clients gauge\n")
	fmt.Fprintf(rw, "skirmish_match_clients{match=%q} %d\n", matchID, m.Clients)

	fmt.Fprintf(rw, "# HELP skirmish_match_queue_depth Channel backlog depth.\n")
	fmt.Fprintf(rw, "# TYPE skirmish_match_queue_depth gauge\n")
	fmt.Fprintf(rw, "skirmish_match_queue_depth{match=%q,queue=%q} %d\n", matchID, "inbox", m.QueueDepths.Inbox)
	fmt.Fprintf(rw, "skirmish_match_queue_depth{match=%q,queue=%q} %d\n", matchID, "join", m.QueueDepths.Join)
	fmt.Fprintf(rw, "skirmish_match_queue_depth{match=%q,queue=%q} %d\n", matchID, "leave", m.QueueDepths.Leave)

	fmt.Fprintf(rw, "# HELP skirmish_match_step_ms Last tick step duration in milliseconds.\n")
	fmt.Fprintf(rw, "# TYPE skirmish_match_step_ms gauge\n")
	fmt.Fprintf(rw, "skirmish_match_step_ms{match=%q} %.3f\n", matchID, m.StepMS)

	fmt.Fprintf(rw, "# HELP skirmish_stats_window Rolling window stats.\n")
	fmt.Fprintf(rw, "# TYPE skirmish_stats_window gauge\n")
	fmt.Fprintf(rw, "skirmish_stats_window{match=%q,metric=%q} %d\n", matchID, "kills", m.StatsWindow.Kills)
	fmt.Fprintf(rw, "skirmish_stats_window{match=%q,metric=%q} %.1f\n", matchID, "damage", m.StatsWindow.Damage)
	fmt.Fprintf(rw, "skirmish_stats_window{match=%q,metric=%q} %d\n", matchID, "buildings_completed", m.StatsWindow.BuildingsCompleted)
	fmt.Fprintf(rw, "skirmish_stats_window{match=%q,metric=%q} %d\n", matchID, "resources_spent", m.StatsWindow.ResourcesSpent)

	fmt.Fprintf(rw, "# HELP skirmish_stats_window_ticks Rolling window size in ticks.\n")
	fmt.Fprintf(rw, "# TYPE skirmish_stats_window_ticks gauge\n")
	fmt.Fprintf(rw, "skirmish_stats_window_ticks{match=%q} %d\n", matchID, m.StatsWindowTicks)

	fmt.Fprintf(rw, "# HELP skirmish_objective_controller Team holding the neutral objective (0: none).\n")
	fmt.Fprintf(rw, "# TYPE skirmish_objective_controller gauge\n")
	fmt.Fprintf(rw, "skirmish_objective_controller{match=%q} %d\n", matchID, m.Objective.ControllerTeam)

	if idx != nil {
		s := idx.Stats()
		fmt.Fprintf(rw, "# HELP skirmish_index_queue_depth Index writer backlog.\n")
		fmt.Fprintf(rw, "# TYPE skirmish_index_queue_depth gauge\n")
		fmt.Fprintf(rw, "skirmish_index_queue_depth{match=%q} %d\n", matchID, s.QueueDepth)
		fmt.Fprintf(rw, "# HELP skirmish_index_dropped_total Tick entries dropped by the index writer.\n")
		fmt.Fprintf(rw, "# TYPE skirmish_index_dropped_total counter\n")
		fmt.Fprintf(rw, "skirmish_index_dropped_total{match=%q} %d\n", matchID, s.DropTickTotal)
	}
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func defaultEnableAdminHTTP() bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("DEPLOY_ENV"))) {
	case "staging", "production":
		return false
	default:
		return true
	}
}

func envBool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}
