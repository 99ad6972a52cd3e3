package store

import (
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/rmuit/file-indexer/internal/casemode"
	"github.com/rmuit/file-indexer/internal/ferrors"
)

// identifierRe limits table and column names, which are spliced into SQL.
var identifierRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQL is the database/sql-backed Store. The dialect encodes the differences
// between SQLite, MySQL and PostgreSQL; the matching mode decides whether
// comparisons need explicit lowering.
type SQL struct {
	db     *sql.DB
	d      Dialect
	mode   casemode.Mode
	table  string
	fields []string
}

// NewSQL creates a Store over an open database connection. fields are the
// cached columns besides fid/dir/filename; the first one is the hash.
func NewSQL(db *sql.DB, driver, table string, fields []string, mode casemode.Mode) (*SQL, error) {
	d, err := NewDialect(driver)
	if err != nil {
		return nil, err
	}
	if !identifierRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if len(fields) == 0 {
		return nil, fmt.Errorf("at least one cache field is required")
	}
	for _, f := range fields {
		if !identifierRe.MatchString(f) {
			return nil, fmt.Errorf("invalid field name %q", f)
		}
	}
	return &SQL{db: db, d: d, mode: mode, table: table, fields: fields}, nil
}

// Dialect returns the dialect in use.
func (s *SQL) Dialect() Dialect { return s.d }

// Prepare applies connection-wide setup for the matching mode.
func (s *SQL) Prepare() error {
	if err := s.d.Setup(s.db, s.mode); err != nil {
		return ferrors.NewStoreError("prepare", "failed to prepare connection", err)
	}
	return nil
}

// CreateSchema creates the table and its indexes if they do not exist.
func (s *SQL) CreateSchema() error {
	for _, stmt := range s.d.SchemaSQL(s.table, s.fields, s.mode.InsensitiveDB()) {
		if _, err := s.db.Exec(stmt); err != nil {
			// MySQL has no IF NOT EXISTS for CREATE INDEX.
			if strings.Contains(err.Error(), "Duplicate key name") {
				continue
			}
			return ferrors.NewStoreError("create_schema", "failed to create schema", err)
		}
	}
	return nil
}

// args collects statement arguments and hands out dialect placeholders.
type args struct {
	d    Dialect
	vals []interface{}
}

func (a *args) add(v interface{}) string {
	a.vals = append(a.vals, v)
	return a.d.Placeholder(len(a.vals))
}

// eq builds a case-aware equality condition on col.
func (s *SQL) eq(col string, a *args, val string) string {
	if s.mode.NeedSQLLowering() {
		return "LOWER(" + col + ") = " + a.add(strings.ToLower(val))
	}
	return col + " = " + a.add(val)
}

func (s *SQL) selectCols() string {
	return "fid, dir, filename, " + strings.Join(s.fields, ", ")
}

func (s *SQL) scanRecords(rows *sql.Rows) ([]*Record, error) {
	var records []*Record
	for rows.Next() {
		rec := &Record{Values: make(map[string]string, len(s.fields))}
		dest := []interface{}{&rec.Fid, &rec.Dir, &rec.Filename}
		vals := make([]string, len(s.fields))
		for i := range s.fields {
			dest = append(dest, &vals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		for i, f := range s.fields {
			rec.Values[f] = vals[i]
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// FetchDirRecords returns all records in the given directory, ordered by fid
// so duplicate resolution is deterministic.
func (s *SQL) FetchDirRecords(dir string) ([]*Record, error) {
	a := &args{d: s.d}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s ORDER BY fid",
		s.selectCols(), s.table, s.eq("dir", a, dir))
	rows, err := s.db.Query(query, a.vals...)
	if err != nil {
		return nil, ferrors.NewStoreError("fetch_dir_records", "failed to fetch directory records", err)
	}
	defer func() { _ = rows.Close() }()
	return s.scanRecords(rows)
}

// FetchSubdirNames returns the distinct first-level subdirectory names
// appearing in dir values strictly below the given directory. The names keep
// their stored casing, so several casings of one logical name can come back
// from a case-sensitive database.
func (s *SQL) FetchSubdirNames(dir string) ([]string, error) {
	a := &args{d: s.d}
	var where string
	skip := 0
	if dir == "" {
		where = "dir <> ''"
	} else {
		skip = len(dir) + 1
		pattern := escapeLike(dir) + "/%"
		where = s.d.Like("dir", a.add(pattern), s.mode.NeedSQLLowering())
	}
	expr := s.d.FirstSegmentExpr("dir", skip)
	query := fmt.Sprintf("SELECT DISTINCT %s FROM %s WHERE %s", expr, s.table, where)
	rows, err := s.db.Query(query, a.vals...)
	if err != nil {
		return nil, ferrors.NewStoreError("fetch_subdir_names", "failed to fetch subdirectory names", err)
	}
	defer func() { _ = rows.Close() }()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// FetchOne returns the records matching (dir, filename). More than one row
// can come back when a case-sensitive database holds rows colliding under
// case-insensitive matching.
func (s *SQL) FetchOne(dir, filename string) ([]*Record, error) {
	a := &args{d: s.d}
	query := fmt.Sprintf("SELECT %s FROM %s WHERE %s AND %s ORDER BY fid",
		s.selectCols(), s.table, s.eq("dir", a, dir), s.eq("filename", a, filename))
	rows, err := s.db.Query(query, a.vals...)
	if err != nil {
		return nil, ferrors.NewStoreError("fetch_one", "failed to fetch record", err)
	}
	defer func() { _ = rows.Close() }()
	return s.scanRecords(rows)
}

// Insert stores a new record and returns its fid.
func (s *SQL) Insert(rec *Record) (int64, error) {
	a := &args{d: s.d}
	cols := []string{"dir", "filename"}
	placeholders := []string{a.add(rec.Dir), a.add(rec.Filename)}
	for _, f := range s.fields {
		cols = append(cols, f)
		placeholders = append(placeholders, a.add(rec.Values[f]))
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		s.table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))

	if s.d.InsertReturning() {
		var fid int64
		if err := s.db.QueryRow(query+" RETURNING fid", a.vals...).Scan(&fid); err != nil {
			return 0, ferrors.NewStoreError("insert", "failed to insert record", err)
		}
		return fid, nil
	}
	res, err := s.db.Exec(query, a.vals...)
	if err != nil {
		return 0, ferrors.NewStoreError("insert", "failed to insert record", err)
	}
	fid, err := res.LastInsertId()
	if err != nil {
		return 0, ferrors.NewStoreError("insert", "failed to obtain inserted fid", err)
	}
	return fid, nil
}

// Update rewrites dir, filename and the cached fields of the row with the
// given fid. Updating a row that no longer exists is an error.
func (s *SQL) Update(fid int64, rec *Record) error {
	a := &args{d: s.d}
	sets := []string{
		"dir = " + a.add(rec.Dir),
		"filename = " + a.add(rec.Filename),
	}
	for _, f := range s.fields {
		sets = append(sets, f+" = "+a.add(rec.Values[f]))
	}
	query := fmt.Sprintf("UPDATE %s SET %s WHERE fid = %s",
		s.table, strings.Join(sets, ", "), a.add(fid))
	res, err := s.db.Exec(query, a.vals...)
	if err != nil {
		return ferrors.NewStoreError("update", "failed to update record", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return ferrors.NewStoreError("update", "failed to check update result", err)
	}
	if n == 0 {
		return ferrors.NewStoreError("update", fmt.Sprintf("no record with fid %d", fid), nil)
	}
	return nil
}

// DeleteByFid removes one record.
func (s *SQL) DeleteByFid(fid int64) (int64, error) {
	a := &args{d: s.d}
	query := fmt.Sprintf("DELETE FROM %s WHERE fid = %s", s.table, a.add(fid))
	res, err := s.db.Exec(query, a.vals...)
	if err != nil {
		return 0, ferrors.NewStoreError("delete_by_fid", "failed to delete record", err)
	}
	return res.RowsAffected()
}

// DeleteFilesInDir removes the records for the named files in the given
// directory, matching names under the active case mode.
func (s *SQL) DeleteFilesInDir(dir string, names []string) (int64, error) {
	if len(names) == 0 {
		return 0, nil
	}
	a := &args{d: s.d}
	dirCond := s.eq("dir", a, dir)
	nameCol := "filename"
	placeholders := make([]string, len(names))
	for i, name := range names {
		if s.mode.NeedSQLLowering() {
			name = strings.ToLower(name)
		}
		placeholders[i] = a.add(name)
	}
	if s.mode.NeedSQLLowering() {
		nameCol = "LOWER(filename)"
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s AND %s IN (%s)",
		s.table, dirCond, nameCol, strings.Join(placeholders, ", "))
	res, err := s.db.Exec(query, a.vals...)
	if err != nil {
		return 0, ferrors.NewStoreError("delete_files_in_dir", "failed to delete records", err)
	}
	return res.RowsAffected()
}

// DeleteSubtree removes all records whose dir equals the given prefix or
// lies below it.
func (s *SQL) DeleteSubtree(dir string) (int64, error) {
	a := &args{d: s.d}
	var query string
	if dir == "" {
		query = fmt.Sprintf("DELETE FROM %s", s.table)
	} else {
		eq := s.eq("dir", a, dir)
		like := s.d.Like("dir", a.add(escapeLike(dir)+"/%"), s.mode.NeedSQLLowering())
		query = fmt.Sprintf("DELETE FROM %s WHERE %s OR %s", s.table, eq, like)
	}
	res, err := s.db.Exec(query, a.vals...)
	if err != nil {
		return 0, ferrors.NewStoreError("delete_subtree", "failed to delete subtree", err)
	}
	return res.RowsAffected()
}

// CountRecords returns the total number of indexed records.
func (s *SQL) CountRecords() (int64, error) {
	var n int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM " + s.table).Scan(&n); err != nil {
		return 0, ferrors.NewStoreError("count_records", "failed to count records", err)
	}
	return n, nil
}
