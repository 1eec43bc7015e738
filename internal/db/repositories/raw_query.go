package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	ErrEmptyQuery         = errors.New("query is empty")
	ErrNotReadOnly        = errors.New("only SELECT or WITH statements are allowed")
	ErrMultipleStatements = errors.New("multiple statements are not allowed")
	ErrForbiddenKeyword   = errors.New("query contains a data-modifying keyword")
)

var (
	lineComment  = regexp.MustCompile(`--[^\n]*`)
	blockComment = regexp.MustCompile(`(?s)/\*.*?\*/`)
	stringLit    = regexp.MustCompile(`'(?:[^']|'')*'`)
	quotedIdent  = regexp.MustCompile(`"(?:[^"]|"")*"`)
	leadingWord  = regexp.MustCompile(`^\s*\(*\s*([A-Za-z]+)`)
	forbidden    = regexp.MustCompile(`(?i)\b(insert|update|delete|merge|upsert|drop|alter|create|truncate|grant|revoke|copy|vacuum|attach|detach|pragma|call|execute|lock|into|refresh|reindex|listen|notify)\b`)
)

// ValidateReadOnly accepts a single SELECT or WITH statement and returns it
// without a trailing semicolon.
func ValidateReadOnly(query string) (string, error) {
	stmt := strings.TrimSpace(query)
	stmt = strings.TrimSpace(strings.TrimSuffix(stmt, ";"))
	if stmt == "" {
		return "", ErrEmptyQuery
	}

	masked := blockComment.ReplaceAllString(stmt, " ")
	masked = lineComment.ReplaceAllString(masked, " ")
	masked = stringLit.ReplaceAllString(masked, "''")
	masked = quotedIdent.ReplaceAllString(masked, `""`)

	if strings.Contains(masked, ";") {
		return "", ErrMultipleStatements
	}

	m := leadingWord.FindStringSubmatch(masked)
	if m == nil {
		return "", ErrNotReadOnly
	}
	switch strings.ToLower(m[1]) {
	case "select", "with":
	default:
		return "", ErrNotReadOnly
	}

	if kw := forbidden.FindString(masked); kw != "" {
		return "", fmt.Errorf("%w: %s", ErrForbiddenKeyword, strings.ToUpper(kw))
	}
	return stmt, nil
}

// Query runs a validated read-only statement inside a read-only transaction
// and returns at most maxRows rows.
func (r *TableRepository) Query(ctx context.Context, query string, maxRows int) (*RecordSet, error) {
	stmt, err := ValidateReadOnly(query)
	if err != nil {
		return nil, err
	}

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, fmt.Errorf("begin read-only transaction: %w", err)
	}
	defer tx.Rollback()

	rows, err := tx.QueryxContext(ctx, stmt)
	if err != nil {
		return nil, err
	}
	return scanRecordSet(rows, maxRows)
}
