// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package journal records pick results in a SQLite database.
package journal

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"image"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"github.com/relabs-tech/panorama_navigator/internal/pick"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Journal is an append-only log of picks.
type Journal struct {
	db *sql.DB
}

var _ pick.Sink = (*Journal)(nil)

// Open opens (creating if needed) the journal at path and migrates it to the
// latest schema.
func Open(path string) (*Journal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open pick journal: %w", err)
	}
	j := &Journal{db: db}
	if err := j.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return j, nil
}

func (j *Journal) migrateUp() error {
	src, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("failed to load migrations: %w", err)
	}
	driver, err := sqlite.WithInstance(j.db, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("failed to create sqlite driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrate instance: %w", err)
	}
	m.Log = &migrateLogger{}

	// m is not closed: that would close the shared *sql.DB.
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up failed: %w", err)
	}
	return nil
}

// Close closes the database.
func (j *Journal) Close() error {
	return j.db.Close()
}

// Record stores r.
func (j *Journal) Record(ctx context.Context, r pick.Result) error {
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO picks (id, cylinder, part, u, v, pixel_x, pixel_y, picked_unix_nanos)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.Cylinder, r.Part, r.U, r.V, r.Pixel.X, r.Pixel.Y, r.At.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("record pick %s: %w", r.ID, err)
	}
	return nil
}

// Report implements pick.Sink. Failures are logged; a pick is never lost to
// the other sinks because the journal could not store it.
func (j *Journal) Report(r pick.Result) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := j.Record(ctx, r); err != nil {
		log.Printf("journal: %v", err)
	}
}

// Recent returns up to limit picks, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]pick.Result, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, cylinder, part, u, v, pixel_x, pixel_y, picked_unix_nanos
		FROM picks
		ORDER BY picked_unix_nanos DESC, rowid DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query picks: %w", err)
	}
	defer rows.Close()

	var out []pick.Result
	for rows.Next() {
		var (
			r     pick.Result
			px    image.Point
			nanos int64
		)
		if err := rows.Scan(&r.ID, &r.Cylinder, &r.Part, &r.U, &r.V, &px.X, &px.Y, &nanos); err != nil {
			return nil, fmt.Errorf("scan pick: %w", err)
		}
		r.Pixel = px
		r.At = time.Unix(0, nanos).UTC()
		out = append(out, r)
	}
	return out, rows.Err()
}

// migrateLogger implements migrate.Logger.
type migrateLogger struct{}

func (l *migrateLogger) Printf(format string, v ...interface{}) {
	log.Printf("[migrate] "+format, v...)
}

func (l *migrateLogger) Verbose() bool {
	return false
}
