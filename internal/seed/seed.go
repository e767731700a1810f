// Package seed loads YAML fixture documents into database tables.
//
// A seed file holds one or more documents of the form:
//
//	table: users
//	rows:
//	  - name: Ada
//	    email: ada@example.com
//
// Every file is applied in its own transaction: either all of its rows
// land or none do.
package seed

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/leapstack-labs/testrig/pkg/dbclient"
)

// Document is one table's worth of seed rows.
type Document struct {
	Table string           `yaml:"table"`
	Rows  []map[string]any `yaml:"rows"`
}

// identRe constrains table and column names taken from seed files.
var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Apply loads every .yaml/.yml file under dir in fsys, in lexical
// order, and returns the number of rows inserted.
func Apply(ctx context.Context, client dbclient.Client, fsys fs.FS, dir string) (int64, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return 0, fmt.Errorf("reading seed directory %s: %w", dir, err)
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if ext := path.Ext(e.Name()); ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	var total int64
	for _, name := range names {
		n, err := applyFile(ctx, client, fsys, path.Join(dir, name))
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// applyFile inserts all documents of one file inside one transaction.
func applyFile(ctx context.Context, client dbclient.Client, fsys fs.FS, name string) (int64, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return 0, fmt.Errorf("reading seed file %s: %w", name, err)
	}

	docs, err := decode(data)
	if err != nil {
		return 0, fmt.Errorf("parsing seed file %s: %w", name, err)
	}

	var inserted int64
	err = client.Transaction(ctx, func(ctx context.Context, tx dbclient.Querier) error {
		for _, doc := range docs {
			n, err := insertDocument(ctx, tx, doc)
			if err != nil {
				return fmt.Errorf("seed file %s: %w", name, err)
			}
			inserted += n
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

func decode(data []byte) ([]Document, error) {
	var docs []Document
	dec := yaml.NewDecoder(bytes.NewReader(data))
	for {
		var doc Document
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, err
		}
		if doc.Table == "" && len(doc.Rows) == 0 {
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func insertDocument(ctx context.Context, tx dbclient.Querier, doc Document) (int64, error) {
	if !identRe.MatchString(doc.Table) {
		return 0, fmt.Errorf("invalid table name %q", doc.Table)
	}

	var inserted int64
	for _, row := range doc.Rows {
		if len(row) == 0 {
			continue
		}

		cols := make([]string, 0, len(row))
		for col := range row {
			if !identRe.MatchString(col) {
				return 0, fmt.Errorf("invalid column name %q in table %s", col, doc.Table)
			}
			cols = append(cols, col)
		}
		sort.Strings(cols)

		args := make([]any, len(cols))
		marks := make([]string, len(cols))
		for i, col := range cols {
			args[i] = row[col]
			marks[i] = "?"
		}

		query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
			doc.Table, strings.Join(cols, ", "), strings.Join(marks, ", "))

		n, err := tx.Execute(ctx, query, args...)
		if err != nil {
			return 0, err
		}
		inserted += n
	}
	return inserted, nil
}
