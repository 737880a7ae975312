package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tordrt/tablediff/internal/table"
)

// PostgresClient manages the connection to PostgreSQL
type PostgresClient struct {
	conn *pgx.Conn
}

// NewPostgresClient creates a new PostgreSQL client
func NewPostgresClient(ctx context.Context, connString string) (*PostgresClient, error) {
	conn, err := pgx.Connect(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Test the connection
	if err := conn.Ping(ctx); err != nil {
		_ = conn.Close(ctx)
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &PostgresClient{conn: conn}, nil
}

// Close closes the database connection
func (c *PostgresClient) Close(ctx context.Context) error {
	return c.conn.Close(ctx)
}

// LoadTable reads a table or query result. The simple protocol is used so
// every column arrives in PostgreSQL's own text representation.
func (c *PostgresClient) LoadTable(ctx context.Context, source string) (*table.Table, error) {
	query, err := buildQuery(source, quotePostgres)
	if err != nil {
		return nil, err
	}

	rows, err := c.conn.Query(ctx, query, pgx.QueryExecModeSimpleProtocol)
	if err != nil {
		return nil, fmt.Errorf("failed to query %q: %w", source, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	headers := make([]string, len(fields))
	for i, f := range fields {
		headers[i] = f.Name
	}

	b := newRowBuilder(headers)
	for rows.Next() {
		raw := rows.RawValues()
		values := make([]string, len(raw))
		for i, v := range raw {
			// nil raw value is SQL NULL
			values[i] = string(v)
		}
		b.add(values)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read rows of %q: %w", source, err)
	}

	return b.t, nil
}

// quotePostgres quotes each dot separated part, so schema.table works
func quotePostgres(name string) string {
	return pgx.Identifier(strings.Split(name, ".")).Sanitize()
}
