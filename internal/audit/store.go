package audit

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"wcbsale/internal/models"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Store persists operation log entries. It implements Observer, so it can be
// registered directly on any publisher. Rows are append-only; the only delete
// path is the bulk Clear.
type Store struct {
	db     *sql.DB
	driver string
}

func NewStore(databaseURL string) (*Store, error) {
	var db *sql.DB
	var driver string
	var err error

	if strings.HasPrefix(databaseURL, "sqlite://") {
		driver = "sqlite"
		db, err = sql.Open(driver, strings.TrimPrefix(databaseURL, "sqlite://"))
	} else {
		driver = "postgres"
		db, err = sql.Open(driver, databaseURL)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open log database: %w", err)
	}

	createTableSQL := `
	CREATE TABLE IF NOT EXISTS operation_log (
		id INTEGER PRIMARY KEY,
		operation_datetime TIMESTAMP NOT NULL,
		event_trigger TEXT NOT NULL,
		event_type TEXT NOT NULL,
		identifier TEXT NOT NULL,
		message TEXT NOT NULL,
		result_code TEXT NOT NULL
	);
	`
	if driver == "postgres" {
		createTableSQL = strings.Replace(createTableSQL, "INTEGER PRIMARY KEY", "BIGSERIAL PRIMARY KEY", 1)
	}

	if _, err := db.Exec(createTableSQL); err != nil {
		return nil, fmt.Errorf("failed to create operation_log table: %w", err)
	}

	return &Store{db: db, driver: driver}, nil
}

// rebind rewrites ? placeholders to the $N form PostgreSQL expects.
func (s *Store) rebind(query string) string {
	if s.driver != "postgres" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Update implements Observer by appending one immutable row. An unrecognized
// result code is stored as info rather than rejected; losing the row would be
// worse than softening its severity.
func (s *Store) Update(eventTrigger, eventType, identifier, message, resultCode string) {
	if !models.ValidResultCode(resultCode) {
		resultCode = models.ResultInfo
	}

	query := s.rebind(`INSERT INTO operation_log
		(operation_datetime, event_trigger, event_type, identifier, message, result_code)
		VALUES (?, ?, ?, ?, ?, ?)`)

	s.db.Exec(query, time.Now().UTC(), eventTrigger, eventType, identifier, message, resultCode)
}

// Filter narrows a List call. Zero values mean "no constraint".
type Filter struct {
	From         time.Time
	To           time.Time
	EventTrigger string
	Identifier   string
	Message      string
	Limit        int
	Offset       int
}

func (s *Store) List(ctx context.Context, filter Filter) ([]models.OperationLogEntry, error) {
	var conditions []string
	var args []interface{}

	if !filter.From.IsZero() {
		conditions = append(conditions, "operation_datetime >= ?")
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		conditions = append(conditions, "operation_datetime <= ?")
		args = append(args, filter.To)
	}
	if filter.EventTrigger != "" {
		conditions = append(conditions, "event_trigger = ?")
		args = append(args, filter.EventTrigger)
	}
	if filter.Identifier != "" {
		conditions = append(conditions, "identifier = ?")
		args = append(args, filter.Identifier)
	}
	if filter.Message != "" {
		conditions = append(conditions, "message LIKE ?")
		args = append(args, "%"+filter.Message+"%")
	}

	query := "SELECT id, operation_datetime, event_trigger, event_type, identifier, message, result_code FROM operation_log"
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY operation_datetime DESC, id DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query operation log: %w", err)
	}
	defer rows.Close()

	entries := []models.OperationLogEntry{}
	for rows.Next() {
		var e models.OperationLogEntry
		if err := rows.Scan(&e.ID, &e.OperationDatetime, &e.EventTrigger, &e.EventType, &e.Identifier, &e.Message, &e.ResultCode); err != nil {
			return nil, fmt.Errorf("failed to scan operation log row: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// Clear empties the operation log.
func (s *Store) Clear(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM operation_log")
	return err
}

func (s *Store) Close() error {
	return s.db.Close()
}
