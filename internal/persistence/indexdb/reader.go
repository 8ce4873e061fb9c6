package indexdb

import (
	"context"
	"database/sql"
)

// Reader runs queries against an index file, separately from the writer.
type Reader struct {
	db *sql.DB
}

func OpenReader(path string) (*Reader, error) {
	db, err := openDB(path)
	if err != nil {
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Reader{db: db}, nil
}

func (r *Reader) Close() error { return r.db.Close() }

// ScoreRow sums one player's kills, bounty and losses over the indexed ticks.
type ScoreRow struct {
	Player int
	Kills  int
	Bounty int
	Losses int
}

// Scoreboard returns one row per player that killed or lost anything,
// ordered by kills then bounty, descending.
func (r *Reader) Scoreboard(ctx context.Context) ([]ScoreRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		WITH k AS (
			SELECT killer_owner AS player, COUNT(*) AS kills, SUM(reward) AS bounty
			FROM kills WHERE killer_owner > 0 AND reward > 0
			GROUP BY killer_owner
		), l AS (
			SELECT victim_owner AS player, COUNT(*) AS losses
			FROM kills WHERE victim_owner > 0
			GROUP BY victim_owner
		), p AS (
			SELECT player FROM k UNION SELECT player FROM l
		)
		SELECT p.player, COALESCE(k.kills, 0), COALESCE(k.bounty, 0), COALESCE(l.losses, 0)
		FROM p
		LEFT JOIN k ON k.player = p.player
		LEFT JOIN l ON l.player = p.player
		ORDER BY 2 DESC, 3 DESC, p.player ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []ScoreRow
	for rows.Next() {
		var s ScoreRow
		if err := rows.Scan(&s.Player, &s.Kills, &s.Bounty, &s.Losses); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// TickRow is the indexed summary of one tick.
type TickRow struct {
	Tick     uint64
	NowMs    int64
	Digest   string
	Commands int
	Entities int
}

// Ticks returns the indexed ticks in [from, to], oldest first.
func (r *Reader) Ticks(ctx context.Context, from, to uint64) ([]TickRow, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT tick, now_ms, digest, commands, entities FROM ticks WHERE tick >= ? AND tick <= ? ORDER BY tick`,
		int64(from), int64(to))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TickRow
	for rows.Next() {
		var t TickRow
		var tick int64
		if err := rows.Scan(&tick, &t.NowMs, &t.Digest, &t.Commands, &t.Entities); err != nil {
			return nil, err
		}
		t.Tick = uint64(tick)
		out = append(out, t)
	}
	return out, rows.Err()
}

// CatalogDigest returns the stored digest for a catalog name, or "" when
// absent.
func (r *Reader) CatalogDigest(ctx context.Context, name string) (string, error) {
	var d string
	err := r.db.QueryRowContext(ctx, `SELECT digest FROM catalogs WHERE name = ?`, name).Scan(&d)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return d, err
}
