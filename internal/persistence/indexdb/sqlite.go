package indexdb

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	_ "modernc.org/sqlite"

	"skirmish.ai/internal/sim/catalogs"
	"skirmish.ai/internal/sim/tuning"
	"skirmish.ai/internal/sim/world"
)

// SQLiteIndex is a queryable secondary index of the tick log. Writes are
// queued to a single writer goroutine and dropped when it falls behind; the
// JSONL tick log stays the source of truth.
type SQLiteIndex struct {
	db *sql.DB

	ch   chan world.TickLogEntry
	wg   sync.WaitGroup
	once sync.Once

	closed    atomic.Bool
	dropTicks atomic.Uint64
}

type Stats struct {
	QueueDepth    int
	QueueCapacity int
	DropTickTotal uint64
}

func OpenSQLite(path string) (*SQLiteIndex, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &SQLiteIndex{
		db: db,
		ch: make(chan world.TickLogEntry, 65536),
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.loop()
	}()
	return s, nil
}

func openDB(path string) (*sql.DB, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)
	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

func initPragmas(db *sql.DB) error {
	// WAL is much faster for append-style workloads.
	// NORMAL is a decent durability/perf tradeoff for a secondary index.
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS catalogs (
			name TEXT PRIMARY KEY,
			digest TEXT NOT NULL,
			json TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS ticks (
			tick INTEGER PRIMARY KEY,
			now_ms INTEGER NOT NULL,
			digest TEXT NOT NULL,
			commands INTEGER NOT NULL,
			entities INTEGER NOT NULL,
			window_damage REAL NOT NULL,
			window_spent INTEGER NOT NULL,
			raw_json TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS kills (
			tick INTEGER NOT NULL,
			seq INTEGER NOT NULL,
			victim TEXT NOT NULL,
			victim_type TEXT NOT NULL,
			victim_owner INTEGER NOT NULL,
			killer TEXT NOT NULL,
			killer_owner INTEGER NOT NULL,
			reward INTEGER NOT NULL,
			PRIMARY KEY (tick, seq)
		);`,
		`CREATE INDEX IF NOT EXISTS idx_kills_killer ON kills(killer_owner, tick);`,
		`CREATE INDEX IF NOT EXISTS idx_kills_victim ON kills(victim_owner, tick);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLiteIndex) Close() error {
	var err error
	s.once.Do(func() {
		s.closed.Store(true)
		close(s.ch)
		s.wg.Wait()
		err = s.db.Close()
	})
	return err
}

func (s *SQLiteIndex) WriteTick(entry world.TickLogEntry) error {
	if s == nil || s.closed.Load() {
		return nil
	}
	select {
	case s.ch <- entry:
	default:
		s.dropTicks.Add(1)
	}
	return nil
}

func (s *SQLiteIndex) Stats() Stats {
	if s == nil {
		return Stats{}
	}
	return Stats{
		QueueDepth:    len(s.ch),
		QueueCapacity: cap(s.ch),
		DropTickTotal: s.dropTicks.Load(),
	}
}

// UpsertCatalogs records the catalogs and tuning a match runs with so a
// stored index can be matched to its configuration.
func (s *SQLiteIndex) UpsertCatalogs(matchID string, cats *catalogs.Catalogs, tune tuning.Tuning) error {
	if s == nil {
		return nil
	}
	now := time.Now().UTC().Format(time.RFC3339Nano)

	type kv struct {
		name   string
		digest string
		json   []byte
	}
	var rows []kv
	ents := make([]catalogs.EntityDef, 0, len(cats.Entities.Order))
	for _, id := range cats.Entities.Order {
		ents = append(ents, cats.Entities.ByID[id])
	}
	if b, _ := json.Marshal(ents); len(b) > 0 {
		rows = append(rows, kv{name: "entities", digest: cats.Entities.Digest, json: b})
	}
	ups := make([]catalogs.UpgradeDef, 0, len(cats.Upgrades.Order))
	for _, id := range cats.Upgrades.Order {
		ups = append(ups, cats.Upgrades.ByID[id])
	}
	if b, _ := json.Marshal(ups); len(b) > 0 {
		rows = append(rows, kv{name: "upgrades", digest: cats.Upgrades.Digest, json: b})
	}
	// Tuning: store the values we actually apply (canonical JSON).
	{
		b, _ := json.Marshal(tune)
		sum := sha256.Sum256(b)
		rows = append(rows, kv{name: "tuning", digest: hex.EncodeToString(sum[:]), json: b})
	}

	// The writer goroutine owns the only connection while its tx is open,
	// so catalog rows must go in before the first tick lands.
	tx, err := s.db.BeginTx(context.Background(), nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`INSERT OR REPLACE INTO meta(key,value) VALUES('schema_version','1'),('match_id',?)`, matchID); err != nil {
		return err
	}
	stmt, err := tx.Prepare(`INSERT OR REPLACE INTO catalogs(name,digest,json,updated_at) VALUES(?,?,?,?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, r := range rows {
		if _, err := stmt.Exec(r.name, r.digest, string(r.json), now); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteIndex) loop() {
	ctx := context.Background()

	insertTick, _ := s.db.Prepare(`INSERT OR REPLACE INTO ticks(tick,now_ms,digest,commands,entities,window_damage,window_spent,raw_json) VALUES(?,?,?,?,?,?,?,?)`)
	insertKill, _ := s.db.Prepare(`INSERT OR REPLACE INTO kills(tick,seq,victim,victim_type,victim_owner,killer,killer_owner,reward) VALUES(?,?,?,?,?,?,?,?)`)
	defer func() {
		if insertTick != nil {
			_ = insertTick.Close()
		}
		if insertKill != nil {
			_ = insertKill.Close()
		}
	}()

	var (
		tx            *sql.Tx
		opCount       int
		lastCommit    = time.Now()
		commitEvery   = 2000
		commitMaxWait = 2 * time.Second
	)

	begin := func() {
		if tx != nil {
			return
		}
		txx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			// If we can't start a tx, we can't do much; sleep a bit.
			time.Sleep(50 * time.Millisecond)
			return
		}
		tx = txx
		opCount = 0
		lastCommit = time.Now()
	}
	commit := func() {
		if tx == nil {
			return
		}
		_ = tx.Commit()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}
	rollback := func() {
		if tx == nil {
			return
		}
		_ = tx.Rollback()
		tx = nil
		opCount = 0
		lastCommit = time.Now()
	}

	for e := range s.ch {
		begin()
		if tx == nil || insertTick == nil || insertKill == nil {
			continue
		}
		b, _ := json.Marshal(e)
		if _, err := tx.Stmt(insertTick).Exec(
			int64(e.Tick),
			e.NowMs,
			e.Digest,
			e.Commands,
			e.Entities,
			e.Stats.Damage,
			e.Stats.ResourcesSpent,
			string(b),
		); err != nil {
			rollback()
			continue
		}
		opCount++
		for i, k := range e.Kills {
			if _, err := tx.Stmt(insertKill).Exec(
				int64(e.Tick), i,
				k.Victim, k.VictimType, k.VictimOwn,
				k.Killer, k.KillerOwn, k.Reward,
			); err != nil {
				rollback()
				break
			}
			opCount++
		}
		if tx != nil && (opCount >= commitEvery || time.Since(lastCommit) >= commitMaxWait) {
			commit()
		}
	}

	commit()
}
