// Copyright 2026 Ian Lewis
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package export writes parsed SERPENT files to a SQLite database.
//
// Every file becomes a row of the files table. Its records, metrics and
// values go to the records, metrics and vals tables. Values of
// time-dependent records carry their step and time. Exporting a file again
// replaces its rows.
package export

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	// Registers the "sqlite" driver.
	_ "modernc.org/sqlite"

	"github.com/ianlewis/go-serpent/result"
)

const schema = `
CREATE TABLE IF NOT EXISTS files (
	id      INTEGER PRIMARY KEY,
	path    TEXT NOT NULL UNIQUE,
	variant TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS records (
	id       INTEGER PRIMARY KEY,
	file_id  INTEGER NOT NULL REFERENCES files(id),
	key      TEXT NOT NULL,
	category TEXT NOT NULL,
	name     TEXT NOT NULL,
	sub      TEXT NOT NULL,
	block    TEXT NOT NULL,
	line     INTEGER NOT NULL,
	UNIQUE (file_id, key)
);
CREATE TABLE IF NOT EXISTS metrics (
	record_id INTEGER NOT NULL REFERENCES records(id),
	metric    TEXT NOT NULL,
	unit      TEXT NOT NULL,
	shape     TEXT NOT NULL,
	PRIMARY KEY (record_id, metric)
);
CREATE TABLE IF NOT EXISTS vals (
	record_id INTEGER NOT NULL REFERENCES records(id),
	metric    TEXT NOT NULL,
	step      INTEGER,
	time      REAL,
	pos       INTEGER NOT NULL,
	value     REAL NOT NULL
);
CREATE INDEX IF NOT EXISTS vals_record ON vals (record_id, metric);
CREATE TABLE IF NOT EXISTS warnings (
	file_id    INTEGER NOT NULL REFERENCES files(id),
	check_name TEXT NOT NULL,
	line       INTEGER NOT NULL,
	block      TEXT NOT NULL,
	message    TEXT NOT NULL
);
`

// Open opens the SQLite database at path and creates the tables if needed.
func Open(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("error opening %q: %w", path, err)
	}
	if err := CreateSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// CreateSchema creates the export tables in db if they do not exist.
func CreateSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}

// Write writes the records of c to db in a single transaction.
func Write(ctx context.Context, db *sql.DB, c *result.Container) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("export %q: %w", c.Path(), err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err := deleteFile(ctx, tx, c.Path()); err != nil {
		return fmt.Errorf("export %q: %w", c.Path(), err)
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO files (path, variant) VALUES (?, ?)`, c.Path(), c.Variant())
	if err != nil {
		return fmt.Errorf("export %q: %w", c.Path(), err)
	}
	fileID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("export %q: %w", c.Path(), err)
	}

	for id, r := range c.All() {
		if err := writeRecord(ctx, tx, fileID, id, r); err != nil {
			return fmt.Errorf("export %q: %v: %w", c.Path(), id, err)
		}
	}
	for _, w := range c.Warnings() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO warnings (file_id, check_name, line, block, message) VALUES (?, ?, ?, ?, ?)`,
			fileID, w.Check, w.Line, w.Block, w.Message,
		); err != nil {
			return fmt.Errorf("export %q: %w", c.Path(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("export %q: %w", c.Path(), err)
	}
	return nil
}

func deleteFile(ctx context.Context, tx *sql.Tx, path string) error {
	stmts := []string{
		`DELETE FROM vals WHERE record_id IN (SELECT r.id FROM records r JOIN files f ON r.file_id = f.id WHERE f.path = ?)`,
		`DELETE FROM metrics WHERE record_id IN (SELECT r.id FROM records r JOIN files f ON r.file_id = f.id WHERE f.path = ?)`,
		`DELETE FROM records WHERE file_id IN (SELECT id FROM files WHERE path = ?)`,
		`DELETE FROM warnings WHERE file_id IN (SELECT id FROM files WHERE path = ?)`,
		`DELETE FROM files WHERE path = ?`,
	}
	for _, s := range stmts {
		if _, err := tx.ExecContext(ctx, s, path); err != nil {
			return err
		}
	}
	return nil
}

func writeRecord(ctx context.Context, tx *sql.Tx, fileID int64, id result.Identifier, r *result.Record) error {
	src := r.Source()
	res, err := tx.ExecContext(ctx,
		`INSERT INTO records (file_id, key, category, name, sub, block, line) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fileID, id.String(), id.Category, id.Name, id.Sub, src.Block, src.Line,
	)
	if err != nil {
		return err
	}
	recordID, err := res.LastInsertId()
	if err != nil {
		return err
	}

	insert, err := tx.PrepareContext(ctx,
		`INSERT INTO vals (record_id, metric, step, time, pos, value) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer insert.Close()

	steps := r.Steps()
	times := r.Times()
	for _, m := range r.Metrics() {
		a, _ := r.Metric(m)
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO metrics (record_id, metric, unit, shape) VALUES (?, ?, ?, ?)`,
			recordID, m, r.Unit(m), formatShape(a.Shape()),
		); err != nil {
			return err
		}

		if !r.TimeDependent() {
			for pos, v := range a.Data() {
				if _, err := insert.ExecContext(ctx, recordID, m, nil, nil, pos, v); err != nil {
					return err
				}
			}
			continue
		}
		for i, step := range steps {
			var t sql.NullFloat64
			if times != nil {
				t = sql.NullFloat64{Float64: times[i], Valid: true}
			}
			for pos, v := range a.Row(i) {
				if _, err := insert.ExecContext(ctx, recordID, m, step, t, pos, v); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// formatShape formats a shape as "3x2".
func formatShape(shape []int) string {
	s := make([]string, len(shape))
	for i, d := range shape {
		s[i] = strconv.Itoa(d)
	}
	return strings.Join(s, "x")
}
