package results

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

type dialect string

const (
	dialectPostgres dialect = "postgres"
	dialectSQLite   dialect = "sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS t3_games (
	game_id      TEXT PRIMARY KEY,
	player1_name TEXT NOT NULL,
	player1_mark TEXT NOT NULL,
	player2_name TEXT NOT NULL,
	player2_mark TEXT NOT NULL,
	cells        TEXT NOT NULL,
	outcome      TEXT NOT NULL,
	winner       TEXT NOT NULL DEFAULT '',
	reason       TEXT NOT NULL,
	moves        INTEGER NOT NULL,
	started_ms   BIGINT NOT NULL,
	ended_ms     BIGINT NOT NULL,
	duration_ms  BIGINT NOT NULL
)`

const upsert = `INSERT INTO t3_games (
	game_id, player1_name, player1_mark, player2_name, player2_mark,
	cells, outcome, winner, reason, moves,
	started_ms, ended_ms, duration_ms
) VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
ON CONFLICT (game_id) DO UPDATE SET
	cells=EXCLUDED.cells,
	outcome=EXCLUDED.outcome,
	winner=EXCLUDED.winner,
	reason=EXCLUDED.reason,
	moves=EXCLUDED.moves,
	ended_ms=EXCLUDED.ended_ms,
	duration_ms=EXCLUDED.duration_ms`

const recent = `SELECT
	game_id, player1_name, player1_mark, player2_name, player2_mark,
	cells, outcome, winner, reason, moves, started_ms, ended_ms
FROM t3_games
WHERE player1_name = ? OR player2_name = ?
ORDER BY ended_ms DESC
LIMIT ?`

// SQLRepository archives results in Postgres or SQLite.
type SQLRepository struct {
	db      *sql.DB
	dialect dialect
	logger  *zap.Logger
}

func NewSQLRepository(ctx context.Context, d dialect, dsn string, logger *zap.Logger) (*SQLRepository, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	db, err := sql.Open(string(d), dsn)
	if err != nil {
		return nil, err
	}
	switch d {
	case dialectSQLite:
		// one connection keeps :memory: databases shared and writes serialized
		db.SetMaxOpenConns(1)
	default:
		db.SetMaxOpenConns(8)
		db.SetMaxIdleConns(4)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s ping: %w", d, err)
	}
	if _, err := db.ExecContext(pctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s schema: %w", d, err)
	}
	logger.Info("t3_results_open", zap.String("dialect", string(d)))
	return &SQLRepository{db: db, dialect: d, logger: logger}, nil
}

func (r *SQLRepository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

func (r *SQLRepository) Save(ctx context.Context, res Result) error {
	if r == nil || r.db == nil {
		return nil
	}
	cells, err := json.Marshal(res.Cells)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, r.rebind(upsert),
		res.GameID,
		res.Player1Name, res.Player1Mark,
		res.Player2Name, res.Player2Mark,
		string(cells), res.Outcome, res.Winner, res.Reason, res.Moves,
		res.StartedAt.UnixMilli(), res.EndedAt.UnixMilli(), res.Duration().Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("save result %s: %w", res.GameID, err)
	}
	return nil
}

func (r *SQLRepository) Recent(ctx context.Context, name string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, r.rebind(recent), name, name, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var (
			res              Result
			cells            string
			startMs, endedMs int64
		)
		if err := rows.Scan(
			&res.GameID,
			&res.Player1Name, &res.Player1Mark,
			&res.Player2Name, &res.Player2Mark,
			&cells, &res.Outcome, &res.Winner, &res.Reason, &res.Moves,
			&startMs, &endedMs,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(cells), &res.Cells); err != nil {
			return nil, fmt.Errorf("decode cells of %s: %w", res.GameID, err)
		}
		res.StartedAt = time.UnixMilli(startMs)
		res.EndedAt = time.UnixMilli(endedMs)
		out = append(out, res)
	}
	return out, rows.Err()
}

// rebind rewrites ? placeholders to $n for Postgres.
func (r *SQLRepository) rebind(q string) string {
	if r.dialect != dialectPostgres {
		return q
	}
	var b strings.Builder
	b.Grow(len(q) + 16)
	n := 0
	for _, c := range q {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}
