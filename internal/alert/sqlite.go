package alert

import (
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists alert rules to a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	mu  sync.Mutex
	log zerolog.Logger
}

// NewSQLiteStore opens (or creates) the SQLite database and runs migrations.
func NewSQLiteStore(dbPath string, log zerolog.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so the evaluation loop and the management interface can
	// read concurrently while one of them writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db, log: log.With().Str("component", "alertstore").Logger()}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	s.log.Info().Str("path", dbPath).Msg("sqlite alert store opened")
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS alerts (
			id         TEXT PRIMARY KEY,
			owner      TEXT NOT NULL,
			symbol     TEXT NOT NULL,
			threshold  REAL NOT NULL,
			message    TEXT NOT NULL,
			sent       INTEGER NOT NULL DEFAULT 0,
			created_at INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_sent ON alerts(sent)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_owner ON alerts(owner)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

// Create inserts a new Pending rule, assigning it an id, and returns the id.
func (s *SQLiteStore) Create(rule *Rule) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now()
	}
	rule.Symbol = strings.ToUpper(rule.Symbol)
	rule.Sent = false

	_, err := s.db.Exec(`INSERT INTO alerts (id, owner, symbol, threshold, message, sent, created_at)
		VALUES (?,?,?,?,?,0,?)`,
		rule.ID, rule.Owner, rule.Symbol, rule.Threshold, rule.Message, rule.CreatedAt.Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("insert alert: %w", err)
	}
	return rule.ID, nil
}

// ListPending returns all rules not yet sent, across all owners.
func (s *SQLiteStore) ListPending() ([]Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query(`SELECT id, owner, symbol, threshold, message, sent, created_at
		FROM alerts WHERE sent = 0 ORDER BY created_at`)
}

// ListByOwner returns all of one owner's rules, pending and sent.
func (s *SQLiteStore) ListByOwner(owner string) ([]Rule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query(`SELECT id, owner, symbol, threshold, message, sent, created_at
		FROM alerts WHERE owner = ? ORDER BY created_at`, owner)
}

func (s *SQLiteStore) query(q string, args ...interface{}) ([]Rule, error) {
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query alerts: %w", err)
	}
	defer rows.Close()

	var rules []Rule
	for rows.Next() {
		var r Rule
		var sent int
		var createdAt int64
		if err := rows.Scan(&r.ID, &r.Owner, &r.Symbol, &r.Threshold, &r.Message, &sent, &createdAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		r.Sent = sent != 0
		r.CreatedAt = time.Unix(createdAt, 0)
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// MarkSentIfPending transitions a rule to Sent only if it is still Pending.
// Returns whether the update applied.
func (s *SQLiteStore) MarkSentIfPending(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`UPDATE alerts SET sent = 1 WHERE id = ? AND sent = 0`, id)
	if err != nil {
		return false, fmt.Errorf("mark sent: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

// DeleteIfOwner removes a rule if it belongs to the given owner.
// Returns whether a rule was removed.
func (s *SQLiteStore) DeleteIfOwner(id, owner string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.Exec(`DELETE FROM alerts WHERE id = ? AND owner = ?`, id, owner)
	if err != nil {
		return false, fmt.Errorf("delete alert: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

func (s *SQLiteStore) Close() error {
	s.log.Info().Msg("closing sqlite alert store")
	return s.db.Close()
}
