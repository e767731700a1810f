package dbclient

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func atBinder(i int) string { return fmt.Sprintf("@p%d", i) }

func TestRewrite(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		want      string
		wantCount int
	}{
		{
			name:      "no placeholders",
			query:     "SELECT 1",
			want:      "SELECT 1",
			wantCount: 0,
		},
		{
			name:      "left to right order",
			query:     "INSERT INTO users (id, name, email) VALUES (?, ?, ?)",
			want:      "INSERT INTO users (id, name, email) VALUES (@p0, @p1, @p2)",
			wantCount: 3,
		},
		{
			name:      "question mark inside string literal",
			query:     "SELECT * FROM faq WHERE question = 'why?' AND id = ?",
			want:      "SELECT * FROM faq WHERE question = 'why?' AND id = @p0",
			wantCount: 1,
		},
		{
			name:      "escaped quote inside string literal",
			query:     "SELECT 'it''s a ?', ? FROM t",
			want:      "SELECT 'it''s a ?', @p0 FROM t",
			wantCount: 1,
		},
		{
			name:      "double quoted identifier",
			query:     `SELECT "odd?col" FROM t WHERE id = ?`,
			want:      `SELECT "odd?col" FROM t WHERE id = @p0`,
			wantCount: 1,
		},
		{
			name:      "backtick identifier",
			query:     "SELECT `odd?col` FROM t WHERE id = ?",
			want:      "SELECT `odd?col` FROM t WHERE id = @p0",
			wantCount: 1,
		},
		{
			name:      "bracketed identifier",
			query:     "SELECT [odd?col] FROM t WHERE id = ?",
			want:      "SELECT [odd?col] FROM t WHERE id = @p0",
			wantCount: 1,
		},
		{
			name:      "line comment",
			query:     "SELECT ? -- what?\nFROM t",
			want:      "SELECT @p0 -- what?\nFROM t",
			wantCount: 1,
		},
		{
			name:      "block comment",
			query:     "SELECT ? /* really? */ FROM t",
			want:      "SELECT @p0 /* really? */ FROM t",
			wantCount: 1,
		},
		{
			name:      "unterminated string swallows rest",
			query:     "SELECT 'oops ? FROM t",
			want:      "SELECT 'oops ? FROM t",
			wantCount: 0,
		},
		{
			name:      "division is not a comment",
			query:     "SELECT a / b FROM t WHERE id = ?",
			want:      "SELECT a / b FROM t WHERE id = @p0",
			wantCount: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, n := Rewrite(tt.query, atBinder)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantCount, n)
		})
	}
}

func TestRewrite_OrdinalBinder(t *testing.T) {
	got, n := Rewrite("UPDATE t SET a = ?, b = ? WHERE id = ?", func(i int) string {
		return fmt.Sprintf("$%d", i+1)
	})
	assert.Equal(t, "UPDATE t SET a = $1, b = $2 WHERE id = $3", got)
	assert.Equal(t, 3, n)
}
