package database

import "testing"

func TestSQLiteRewriteQuery(t *testing.T) {
	d := NewSQLiteDialect()

	query := "SELECT * FROM users WHERE id = ? AND email = ?"
	if got := d.RewriteQuery(query); got != query {
		t.Errorf("RewriteQuery() = %q, want unchanged query", got)
	}
}

func TestMySQLRewriteQuery(t *testing.T) {
	d := NewMySQLDialect()

	query := "SELECT * FROM users WHERE id = ? AND email = ?"
	if got := d.RewriteQuery(query); got != query {
		t.Errorf("RewriteQuery() = %q, want unchanged query", got)
	}
}

func TestPostgresRewriteQuery(t *testing.T) {
	d := NewPostgresDialect()

	tests := []struct {
		name  string
		query string
		want  string
	}{
		{
			name:  "no placeholders",
			query: "SELECT * FROM users",
			want:  "SELECT * FROM users",
		},
		{
			name:  "single placeholder",
			query: "SELECT * FROM users WHERE id = ?",
			want:  "SELECT * FROM users WHERE id = $1",
		},
		{
			name:  "multiple placeholders",
			query: "INSERT INTO posts (body, user_id, family_id) VALUES (?, ?, ?)",
			want:  "INSERT INTO posts (body, user_id, family_id) VALUES ($1, $2, $3)",
		},
		{
			name:  "placeholders across clauses",
			query: "UPDATE family_invites SET accepted = ? WHERE id = ? AND accepted = ?",
			want:  "UPDATE family_invites SET accepted = $1 WHERE id = $2 AND accepted = $3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.RewriteQuery(tt.query); got != tt.want {
				t.Errorf("RewriteQuery() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDriverNames(t *testing.T) {
	tests := []struct {
		dialect Dialect
		want    string
	}{
		{NewSQLiteDialect(), "sqlite3"},
		{NewPostgresDialect(), "postgres"},
		{NewMySQLDialect(), "mysql"},
	}

	for _, tt := range tests {
		if got := tt.dialect.DriverName(); got != tt.want {
			t.Errorf("DriverName() = %q, want %q", got, tt.want)
		}
	}
}

func TestSupportsLastInsertId(t *testing.T) {
	if !NewSQLiteDialect().SupportsLastInsertId() {
		t.Error("sqlite should support LastInsertId")
	}
	if !NewMySQLDialect().SupportsLastInsertId() {
		t.Error("mysql should support LastInsertId")
	}
	if NewPostgresDialect().SupportsLastInsertId() {
		t.Error("postgres should not support LastInsertId")
	}
}

func TestMySQLDSNAddsParseTime(t *testing.T) {
	d := NewMySQLDialect()

	tests := []struct {
		name string
		url  string
		want string
	}{
		{
			name: "bare dsn",
			url:  "user:pass@tcp(localhost:3306)/famplan",
			want: "user:pass@tcp(localhost:3306)/famplan?parseTime=true",
		},
		{
			name: "existing params",
			url:  "user:pass@tcp(localhost:3306)/famplan?charset=utf8mb4",
			want: "user:pass@tcp(localhost:3306)/famplan?charset=utf8mb4&parseTime=true",
		},
		{
			name: "already set",
			url:  "user:pass@tcp(localhost:3306)/famplan?parseTime=true",
			want: "user:pass@tcp(localhost:3306)/famplan?parseTime=true",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.DSN(DialectConfig{URL: tt.url}); got != tt.want {
				t.Errorf("DSN() = %q, want %q", got, tt.want)
			}
		})
	}
}
