package seed

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leapstack-labs/testrig/pkg/dbclient"
	"github.com/leapstack-labs/testrig/pkg/dbclients/sqlite"
)

func newSeededClient(t *testing.T) *sqlite.Client {
	t.Helper()

	client := sqlite.New(dbclient.Config{Provider: "sqlite"}, nil)
	require.NoError(t, client.Connect(context.Background()))
	t.Cleanup(func() { _ = client.Close() })

	_, err := client.Execute(context.Background(),
		"CREATE TABLE users (id INTEGER PRIMARY KEY, name TEXT NOT NULL, email TEXT NOT NULL)")
	require.NoError(t, err)
	return client
}

func TestApply_InsertsRows(t *testing.T) {
	client := newSeededClient(t)
	fsys := fstest.MapFS{
		"seeds/users.yaml": &fstest.MapFile{Data: []byte(`table: users
rows:
  - name: Ada
    email: ada@example.com
  - name: Grace
    email: grace@example.com
`)},
	}

	n, err := Apply(context.Background(), client, fsys, "seeds")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	res, err := client.Query(context.Background(),
		"SELECT name FROM users ORDER BY name")
	require.NoError(t, err)
	require.Equal(t, int64(2), res.RowCount)
	assert.Equal(t, "Ada", res.Rows[0]["name"])
	assert.Equal(t, "Grace", res.Rows[1]["name"])
}

func TestApply_MultipleDocumentsPerFile(t *testing.T) {
	client := newSeededClient(t)
	_, err := client.Execute(context.Background(),
		"CREATE TABLE teams (id INTEGER PRIMARY KEY, name TEXT NOT NULL)")
	require.NoError(t, err)

	fsys := fstest.MapFS{
		"seeds/all.yaml": &fstest.MapFile{Data: []byte(`table: users
rows:
  - name: Ada
    email: ada@example.com
---
table: teams
rows:
  - name: Analytical Engines
`)},
	}

	n, err := Apply(context.Background(), client, fsys, "seeds")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	res, err := client.Query(context.Background(), "SELECT name FROM teams")
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.RowCount)
}

func TestApply_FilesInLexicalOrder(t *testing.T) {
	client := newSeededClient(t)
	fsys := fstest.MapFS{
		"seeds/02_grace.yaml": &fstest.MapFile{Data: []byte(`table: users
rows:
  - name: Grace
    email: grace@example.com
`)},
		"seeds/01_ada.yaml": &fstest.MapFile{Data: []byte(`table: users
rows:
  - name: Ada
    email: ada@example.com
`)},
		"seeds/readme.txt": &fstest.MapFile{Data: []byte("not a seed")},
	}

	n, err := Apply(context.Background(), client, fsys, "seeds")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	res, err := client.Query(context.Background(), "SELECT name FROM users ORDER BY id")
	require.NoError(t, err)
	require.Equal(t, int64(2), res.RowCount)
	assert.Equal(t, "Ada", res.Rows[0]["name"])
	assert.Equal(t, "Grace", res.Rows[1]["name"])
}

func TestApply_FileRollsBackAsAUnit(t *testing.T) {
	client := newSeededClient(t)
	fsys := fstest.MapFS{
		"seeds/users.yaml": &fstest.MapFile{Data: []byte(`table: users
rows:
  - name: Ada
    email: ada@example.com
  - name: Grace
    nickname: not-a-column
`)},
	}

	_, err := Apply(context.Background(), client, fsys, "seeds")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "users.yaml")

	res, qerr := client.Query(context.Background(), "SELECT COUNT(*) AS n FROM users")
	require.NoError(t, qerr)
	row, _ := res.First()
	assert.Equal(t, int64(0), row["n"])
}

func TestApply_RejectsUnsafeIdentifiers(t *testing.T) {
	client := newSeededClient(t)

	tests := []struct {
		name string
		doc  string
	}{
		{
			name: "table name",
			doc:  "table: \"users; DROP TABLE users\"\nrows:\n  - name: Ada\n",
		},
		{
			name: "column name",
			doc:  "table: users\nrows:\n  - \"name) VALUES ('x'); --\": Ada\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fsys := fstest.MapFS{
				"seeds/bad.yaml": &fstest.MapFile{Data: []byte(tt.doc)},
			}
			_, err := Apply(context.Background(), client, fsys, "seeds")
			require.Error(t, err)
			assert.Contains(t, err.Error(), "invalid")
		})
	}
}

func TestApply_EmptyDirectory(t *testing.T) {
	client := newSeededClient(t)
	fsys := fstest.MapFS{
		"seeds/.keep": &fstest.MapFile{Data: nil},
	}

	n, err := Apply(context.Background(), client, fsys, "seeds")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestApply_MissingDirectory(t *testing.T) {
	client := newSeededClient(t)

	_, err := Apply(context.Background(), client, fstest.MapFS{}, "seeds")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seeds")
}
