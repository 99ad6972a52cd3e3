package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/rmuit/file-indexer/internal/casemode"
)

// Dialect encodes the SQL differences between the supported database kinds:
// placeholder style, the case-insensitive LIKE variant, substring functions,
// schema DDL and connection setup.
type Dialect interface {
	Name() string
	// Placeholder returns the n-th (1-based) statement placeholder.
	Placeholder(n int) string
	// Like returns "<col> LIKE <placeholder>" forced case-insensitive when
	// forceCI is set (only needed on a case-sensitive database fronting a
	// case-insensitive filesystem).
	Like(col, placeholder string, forceCI bool) string
	// EscapeClause returns the ESCAPE clause matching escapeLike.
	EscapeClause() string
	// FirstSegmentExpr returns an expression yielding the first "/"-separated
	// segment of col after skipping skip leading characters.
	FirstSegmentExpr(col string, skip int) string
	// InsertReturning reports whether inserts must use RETURNING to obtain
	// the generated fid instead of LastInsertId.
	InsertReturning() bool
	// Setup applies connection-wide settings for the matching mode.
	Setup(db *sql.DB, mode casemode.Mode) error
	// SchemaSQL returns the statements creating the table and its indexes.
	SchemaSQL(table string, fields []string, ciDB bool) []string
}

// NewDialect returns the dialect for a database/sql driver name.
func NewDialect(driver string) (Dialect, error) {
	switch driver {
	case "sqlite3":
		return sqliteDialect{}, nil
	case "mysql":
		return mysqlDialect{}, nil
	case "postgres":
		return postgresDialect{}, nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", driver)
}

// escapeLike escapes %, _ and the escape character itself in a LIKE value.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

type sqliteDialect struct{}

func (sqliteDialect) Name() string             { return "sqlite3" }
func (sqliteDialect) Placeholder(_ int) string { return "?" }
func (sqliteDialect) EscapeClause() string     { return ` ESCAPE '\'` }
func (sqliteDialect) InsertReturning() bool    { return false }

// Like is always plain for SQLite; case sensitivity of LIKE is a connection
// property set in Setup.
func (d sqliteDialect) Like(col, placeholder string, _ bool) string {
	return col + " LIKE " + placeholder + d.EscapeClause()
}

func (sqliteDialect) FirstSegmentExpr(col string, skip int) string {
	rest := fmt.Sprintf("substr(%s, %d)", col, skip+1)
	return fmt.Sprintf(
		"CASE WHEN instr(%s, '/') = 0 THEN %s ELSE substr(%s, 1, instr(%s, '/') - 1) END",
		rest, rest, rest, rest)
}

// Setup turns case_sensitive_like on only when both sides are
// case-sensitive; every other mode wants case-insensitive LIKE.
func (sqliteDialect) Setup(db *sql.DB, mode casemode.Mode) error {
	pragma := "OFF"
	if !mode.InsensitiveFS() && !mode.InsensitiveDB() {
		pragma = "ON"
	}
	_, err := db.Exec("PRAGMA case_sensitive_like = " + pragma)
	return err
}

func (sqliteDialect) SchemaSQL(table string, fields []string, ciDB bool) []string {
	collate := ""
	if ciDB {
		collate = " COLLATE NOCASE"
	}
	cols := []string{
		"fid INTEGER PRIMARY KEY AUTOINCREMENT",
		"dir TEXT NOT NULL" + collate,
		"filename TEXT NOT NULL" + collate,
	}
	for _, f := range fields {
		cols = append(cols, f+" TEXT NOT NULL")
	}
	cols = append(cols, "UNIQUE(dir, filename)")
	return []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", table, strings.Join(cols, ",\n\t")),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_%s_idx ON %s (%s)", table, fields[0], table, fields[0]),
	}
}

type mysqlDialect struct{}

func (mysqlDialect) Name() string             { return "mysql" }
func (mysqlDialect) Placeholder(_ int) string { return "?" }

// EscapeClause spells the backslash as '\\' because MySQL processes escapes
// inside string literals.
func (mysqlDialect) EscapeClause() string  { return ` ESCAPE '\\'` }
func (mysqlDialect) InsertReturning() bool { return false }

func (d mysqlDialect) Like(col, placeholder string, forceCI bool) string {
	if forceCI {
		return col + " COLLATE utf8mb4_general_ci LIKE " + placeholder + d.EscapeClause()
	}
	return col + " LIKE " + placeholder + d.EscapeClause()
}

func (mysqlDialect) FirstSegmentExpr(col string, skip int) string {
	rest := fmt.Sprintf("SUBSTRING(%s, %d)", col, skip+1)
	return fmt.Sprintf(
		"CASE WHEN LOCATE('/', %s) = 0 THEN %s ELSE SUBSTRING(%s, 1, LOCATE('/', %s) - 1) END",
		rest, rest, rest, rest)
}

func (mysqlDialect) Setup(_ *sql.DB, _ casemode.Mode) error { return nil }

func (mysqlDialect) SchemaSQL(table string, fields []string, ciDB bool) []string {
	collation := "utf8mb4_bin"
	if ciDB {
		collation = "utf8mb4_general_ci"
	}
	cols := []string{
		"fid BIGINT AUTO_INCREMENT PRIMARY KEY",
		fmt.Sprintf("dir VARCHAR(255) NOT NULL COLLATE %s", collation),
		fmt.Sprintf("filename VARCHAR(255) NOT NULL COLLATE %s", collation),
	}
	for _, f := range fields {
		cols = append(cols, f+" VARCHAR(512) NOT NULL")
	}
	cols = append(cols, "UNIQUE KEY (dir, filename)")
	return []string{
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n) DEFAULT CHARSET=utf8mb4", table, strings.Join(cols, ",\n\t")),
		fmt.Sprintf("CREATE INDEX %s_%s_idx ON %s (%s)", table, fields[0], table, fields[0]),
	}
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

func (postgresDialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }
func (postgresDialect) EscapeClause() string     { return ` ESCAPE '\'` }
func (postgresDialect) InsertReturning() bool    { return true }

func (d postgresDialect) Like(col, placeholder string, forceCI bool) string {
	if forceCI {
		return col + " ILIKE " + placeholder + d.EscapeClause()
	}
	return col + " LIKE " + placeholder + d.EscapeClause()
}

func (postgresDialect) FirstSegmentExpr(col string, skip int) string {
	rest := fmt.Sprintf("substr(%s, %d)", col, skip+1)
	return fmt.Sprintf(
		"CASE WHEN strpos(%s, '/') = 0 THEN %s ELSE substr(%s, 1, strpos(%s, '/') - 1) END",
		rest, rest, rest, rest)
}

func (postgresDialect) Setup(_ *sql.DB, _ casemode.Mode) error { return nil }

// SchemaSQL uses citext columns for a case-insensitive database; the citext
// extension must be available.
func (postgresDialect) SchemaSQL(table string, fields []string, ciDB bool) []string {
	var stmts []string
	coltype := "TEXT"
	if ciDB {
		stmts = append(stmts, "CREATE EXTENSION IF NOT EXISTS citext")
		coltype = "CITEXT"
	}
	cols := []string{
		"fid BIGSERIAL PRIMARY KEY",
		fmt.Sprintf("dir %s NOT NULL", coltype),
		fmt.Sprintf("filename %s NOT NULL", coltype),
	}
	for _, f := range fields {
		cols = append(cols, f+" TEXT NOT NULL")
	}
	cols = append(cols, "UNIQUE(dir, filename)")
	stmts = append(stmts,
		fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n\t%s\n)", table, strings.Join(cols, ",\n\t")),
		fmt.Sprintf("CREATE INDEX IF NOT EXISTS %s_%s_idx ON %s (%s)", table, fields[0], table, fields[0]),
	)
	return stmts
}
