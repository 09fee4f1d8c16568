// Package tools holds the ad-hoc data exploration tooling exposed by the
// API. Everything here must stay read-only.
package tools

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
)

const (
	defaultQueryTimeout = 5 * time.Second
	defaultMaxRows      = 1000
)

// restrictedPatterns match operations that would escape the QUERY_ONLY
// pragma, like attaching a second database or flipping pragmas back.
var restrictedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bATTACH\s+DATABASE\b`),
	regexp.MustCompile(`(?i)\bPRAGMA\b`),
}

// SecureQueryTool runs caller-supplied SQL against the read-only database
// handle inside a QUERY_ONLY transaction, with row and time caps.
type SecureQueryTool struct {
	db               *sql.DB
	maxExecutionTime time.Duration
	maxRowsReturned  int
	logger           *slog.Logger
}

// QueryResult is the tabular result of one query.
type QueryResult struct {
	Columns  []string        `json:"columns"`
	Rows     [][]interface{} `json:"rows"`
	RowCount int             `json:"row_count"`
}

func NewSecureQueryTool(db *sql.DB, logger *slog.Logger) *SecureQueryTool {
	return &SecureQueryTool{
		db:               db,
		maxExecutionTime: defaultQueryTimeout,
		maxRowsReturned:  defaultMaxRows,
		logger:           logger,
	}
}

// WithTimeout caps query execution time.
func (sqt *SecureQueryTool) WithTimeout(timeout time.Duration) *SecureQueryTool {
	sqt.maxExecutionTime = timeout
	return sqt
}

// WithMaxRows caps the number of returned rows.
func (sqt *SecureQueryTool) WithMaxRows(maxRows int) *SecureQueryTool {
	sqt.maxRowsReturned = maxRows
	return sqt
}

// ExecuteQuery runs one read-only query and collects its rows.
func (sqt *SecureQueryTool) ExecuteQuery(ctx context.Context, query string) (*QueryResult, error) {
	if err := validateQuery(query); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, sqt.maxExecutionTime)
	defer cancel()

	tx, err := sqt.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			sqt.logger.LogAttrs(ctx, slog.LevelError, "rollback query transaction", slog.Any("error", rollbackErr))
		}
	}()

	// Belt and braces: the handle is already mode=ro, but the pragma also
	// blocks writes through any later connection configuration drift.
	if _, err = tx.ExecContext(ctx, `PRAGMA QUERY_ONLY = TRUE`); err != nil {
		return nil, fmt.Errorf("enable read-only mode: %w", err)
	}

	rows, err := tx.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query execution failed: %w", err)
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			sqt.logger.LogAttrs(ctx, slog.LevelError, "close query rows", slog.Any("error", closeErr))
		}
	}()

	return sqt.collectRows(rows)
}

func (sqt *SecureQueryTool) collectRows(rows *sql.Rows) (*QueryResult, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, fmt.Errorf("read columns: %w", err)
	}

	var resultRows [][]interface{}
	for rows.Next() && len(resultRows) < sqt.maxRowsReturned {
		values := make([]interface{}, len(columns))
		pointers := make([]interface{}, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err = rows.Scan(pointers...); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		// Byte slices don't JSON-encode as text.
		for i, value := range values {
			if b, ok := value.([]byte); ok {
				values[i] = string(b)
			}
		}
		resultRows = append(resultRows, values)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate rows: %w", err)
	}

	return &QueryResult{
		Columns:  columns,
		Rows:     resultRows,
		RowCount: len(resultRows),
	}, nil
}

func validateQuery(query string) error {
	if strings.TrimSpace(query) == "" {
		return errors.New("empty query")
	}
	for _, pattern := range restrictedPatterns {
		if pattern.MatchString(query) {
			return errors.New("query contains restricted operations")
		}
	}
	return nil
}
