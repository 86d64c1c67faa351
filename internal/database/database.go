package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"inscricoes/internal/types"

	_ "github.com/sijms/go-ora/v2"
)

// dsn builds a properly encoded connection string for Oracle
func dsn(username, password, host, port, service string, walletLocation string) string {
	if walletLocation != "" {
		// Use wallet-based mTLS connection
		return fmt.Sprintf(
			"oracle://%s:%s@%s:%s/%s?ssl=true&wallet_location=%s",
			url.PathEscape(username), url.PathEscape(password), host, port, service, url.PathEscape(walletLocation))
	}

	return (&url.URL{
		Scheme: "oracle",
		User:   url.UserPassword(username, password), // escapes automatically
		Host:   host + ":" + port,
		Path:   "/" + service,
	}).String()
}

// DBConfig holds database connection configuration
type DBConfig struct {
	Host           string
	Port           string
	Service        string
	Username       string
	Password       string
	WalletLocation string
	// Timeout bounds the connection check.
	Timeout time.Duration
}

// Configured reports whether enough settings are present to connect.
func (c DBConfig) Configured() bool {
	return c.Host != "" && c.Service != "" && c.Username != ""
}

// Database holds an open cadastre database connection.
type Database struct {
	db     *sql.DB
	logger *zerolog.Logger
}

// NewDatabase opens a connection to the cadastre database and checks it.
func NewDatabase(ctx context.Context, config DBConfig, logger *zerolog.Logger) (*Database, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	connStr := dsn(config.Username, config.Password, config.Host, config.Port, config.Service, config.WalletLocation)

	logger.Debug().Str("host", config.Host).Str("service", config.Service).Msg("Connecting to Oracle")

	db, err := sql.Open("oracle", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database connection: %w", err)
	}

	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Database{
		db:     db,
		logger: logger,
	}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	return d.db.Close()
}

// QueryTable runs query and returns its result set as a table. Column names
// are taken from the result set, so alias them to match the extract headers
// (SELECT inscricao AS "Inscrição imobiliária" ...). NULLs become missing
// values.
func (d *Database) QueryTable(ctx context.Context, query string, args ...any) (types.Table, error) {
	start := time.Now()
	rows, err := d.db.QueryContext(ctx, query, args...)
	if err != nil {
		return types.Table{}, fmt.Errorf("failed to query table: %w", err)
	}
	defer rows.Close()

	t, err := scanTable(rows, "oracle:"+query)
	if err != nil {
		return types.Table{}, err
	}
	d.logger.Debug().Int("rows", len(t.Rows)).Dur("elapsed", time.Since(start)).Msg("Loaded table from query")
	return t, nil
}

// resultSet is the part of *sql.Rows scanTable needs.
type resultSet interface {
	Columns() ([]string, error)
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanTable(rows resultSet, source string) (types.Table, error) {
	cols, err := rows.Columns()
	if err != nil {
		return types.Table{}, fmt.Errorf("failed to read columns: %w", err)
	}
	t := types.Table{Source: source, Columns: cols}

	vals := make([]sql.NullString, len(cols))
	dest := make([]any, len(cols))
	for i := range vals {
		dest[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(dest...); err != nil {
			return types.Table{}, fmt.Errorf("failed to scan row: %w", err)
		}
		rec := make(types.Record, len(cols))
		for i, v := range vals {
			if v.Valid {
				rec[cols[i]] = v.String
			}
		}
		t.Rows = append(t.Rows, rec)
	}
	if err := rows.Err(); err != nil {
		return types.Table{}, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return t, nil
}
