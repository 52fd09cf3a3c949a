package migrations

import (
	"context"
	"fmt"
	"io/fs"
	"net/url"
	"sort"
	"strings"

	chstore "rai-digital-twin/internal/storage/clickhouse"
)

// RunClickhouseMigrations creates the target database if needed and applies
// every embedded SQL file in lexical order. On success it returns a live
// connection to the migrated database for the caller to reuse.
func RunClickhouseMigrations(ctx context.Context, dsn string) (*chstore.Conn, error) {
	dbName, err := dsnDatabase(dsn)
	if err != nil {
		return nil, err
	}

	if err := ensureDatabase(ctx, dsn, dbName); err != nil {
		return nil, err
	}

	conn, err := chstore.NewConnWithDatabase(ctx, dsn, dbName)
	if err != nil {
		return nil, fmt.Errorf("connect clickhouse db: %w", err)
	}

	files, err := fs.Glob(ClickhouseFS, "clickhouse/*.sql")
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("list embedded clickhouse migrations: %w", err)
	}
	sort.Strings(files)

	for _, file := range files {
		if err := applyClickhouseFile(ctx, conn, file); err != nil {
			conn.Close()
			return nil, err
		}
	}

	return conn, nil
}

// ensureDatabase creates dbName through a database-less admin connection.
func ensureDatabase(ctx context.Context, dsn, dbName string) error {
	admin, err := chstore.NewConnWithDatabase(ctx, dsn, "")
	if err != nil {
		return fmt.Errorf("connect clickhouse admin: %w", err)
	}
	defer admin.Close()

	if err := admin.Exec(ctx, fmt.Sprintf("CREATE DATABASE IF NOT EXISTS %s", dbName)); err != nil {
		return fmt.Errorf("create database %s: %w", dbName, err)
	}
	return nil
}

// applyClickhouseFile runs each statement of one migration file. The driver
// rejects multi-statement Exec calls, so the file is split on semicolons
// first and every statement is executed on its own.
func applyClickhouseFile(ctx context.Context, conn *chstore.Conn, file string) error {
	data, err := fs.ReadFile(ClickhouseFS, file)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", file, err)
	}

	sql := string(data)
	if err := checkSplittable(sql); err != nil {
		return fmt.Errorf("validate migration %s: %w", file, err)
	}

	for _, stmt := range splitStatements(sql) {
		if err := conn.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}
	return nil
}

// splitStatements cuts SQL text into statements on semicolons after dropping
// blank lines and -- comments. The splitter is deliberately naive: it cannot
// cope with semicolons inside string literals, /* */ comments, or dollar
// quoting. Migration files must stick to -- comments and keep semicolons out
// of literals; checkSplittable enforces the literal rule before execution.
func splitStatements(input string) []string {
	var kept []string
	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		kept = append(kept, line)
	}

	var stmts []string
	for _, part := range strings.Split(strings.Join(kept, "\n"), ";") {
		if stmt := strings.TrimSpace(part); stmt != "" {
			stmts = append(stmts, stmt)
		}
	}
	return stmts
}

// checkSplittable rejects SQL whose single-quoted literals contain a
// semicolon, since splitStatements would cut such a file mid-statement.
// Doubled quotes ('') inside a literal are treated as escapes.
func checkSplittable(sql string) error {
	inLiteral := false
	for i := 0; i < len(sql); i++ {
		switch sql[i] {
		case '\'':
			if inLiteral && i+1 < len(sql) && sql[i+1] == '\'' {
				i++
				continue
			}
			inLiteral = !inLiteral
		case ';':
			if inLiteral {
				return fmt.Errorf("semicolon inside string literal breaks the statement splitter")
			}
		}
	}
	return nil
}

// dsnDatabase extracts the database name from the DSN path component.
func dsnDatabase(dsn string) (string, error) {
	u, err := url.Parse(dsn)
	if err != nil {
		return "", fmt.Errorf("parse clickhouse dsn: %w", err)
	}
	db := strings.TrimPrefix(u.Path, "/")
	if db == "" {
		return "", fmt.Errorf("clickhouse dsn missing database")
	}
	return db, nil
}
