package db

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/exec"
	"strings"
)

// ConnInfo holds the connection details extracted from a DATABASE_URL.
type ConnInfo struct {
	User     string
	Password string
	Host     string
	Port     string
	Database string
}

// ParseDatabaseURL extracts connection details from a postgres:// or
// postgresql:// URL so they can be handed to pg_dump/psql as flags.
func ParseDatabaseURL(databaseURL string) (ConnInfo, error) {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return ConnInfo{}, fmt.Errorf("parse DATABASE_URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return ConnInfo{}, fmt.Errorf("unsupported scheme %q in DATABASE_URL", u.Scheme)
	}

	info := ConnInfo{
		Host:     u.Hostname(),
		Port:     u.Port(),
		Database: strings.TrimPrefix(u.Path, "/"),
	}
	if u.User != nil {
		info.User = u.User.Username()
		info.Password, _ = u.User.Password()
	}
	if info.Port == "" {
		info.Port = "5432"
	}
	if info.Host == "" || info.Database == "" {
		return ConnInfo{}, fmt.Errorf("DATABASE_URL is missing host or database name")
	}
	return info, nil
}

// Backup runs pg_dump and psql as one-shot external processes for database
// backup and restore. Calls are not mutually excluded; two concurrent restores
// race at the database, which callers must avoid.
type Backup struct {
	info       ConnInfo
	pgDumpPath string
	psqlPath   string
}

func NewBackup(databaseURL, pgDumpPath, psqlPath string) (*Backup, error) {
	info, err := ParseDatabaseURL(databaseURL)
	if err != nil {
		return nil, err
	}
	if pgDumpPath == "" {
		pgDumpPath = "pg_dump"
	}
	if psqlPath == "" {
		psqlPath = "psql"
	}
	return &Backup{info: info, pgDumpPath: pgDumpPath, psqlPath: psqlPath}, nil
}

// Dump streams a plain-SQL dump of the database to w.
func (b *Backup) Dump(ctx context.Context, w io.Writer) error {
	cmd := exec.CommandContext(ctx, b.pgDumpPath,
		"-h", b.info.Host,
		"-p", b.info.Port,
		"-U", b.info.User,
		"-d", b.info.Database,
		"--clean",
		"--if-exists",
		"--no-owner",
		"--no-privileges",
	)
	cmd.Env = append(os.Environ(), "PGPASSWORD="+b.info.Password)
	cmd.Stdout = w

	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("pg_dump: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// Restore feeds a plain-SQL dump from r into psql. The dump is expected to
// carry its own DROP/CREATE statements (produced by Dump with --clean).
func (b *Backup) Restore(ctx context.Context, r io.Reader) error {
	cmd := exec.CommandContext(ctx, b.psqlPath,
		"-h", b.info.Host,
		"-p", b.info.Port,
		"-U", b.info.User,
		"-d", b.info.Database,
		"--set", "ON_ERROR_STOP=on",
	)
	cmd.Env = append(os.Environ(), "PGPASSWORD="+b.info.Password)
	cmd.Stdin = r

	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("psql restore: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}
