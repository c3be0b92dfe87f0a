// Package datarecording stores flat records in an SQLite database. Every
// record type becomes a table whose columns are the struct's fields.
package datarecording

import (
	"database/sql"
	"fmt"
	"os"
	"reflect"
	"regexp"
	"strings"

	"github.com/fatih/structs"

	// Registers the sqlite3 driver.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// DataRecorder buffers records in memory and writes them to a database in
// batches.
type DataRecorder interface {
	// CreateTable creates a table whose columns follow the fields of
	// sampleEntry. The entry must be a struct with fields of basic kinds only.
	CreateTable(tableName string, sampleEntry any)

	// InsertData queues an entry for a table that already exists. The entry
	// must have the same type as the sample of the table.
	InsertData(tableName string, entry any)

	// ListTables returns the names of the tables created by the recorder.
	ListTables() []string

	// Flush writes all queued entries.
	Flush()

	// Close flushes and releases the database.
	Close() error
}

const defaultBatchSize = 100000

var tableNameRegexp = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*$`)

// New creates a recorder that writes to path.sqlite3. An empty path picks a
// unique name. The recorder is flushed when the program exits through atexit.
func New(path string) DataRecorder {
	w := newSQLiteWriter()
	w.open(path)

	atexit.Register(func() { w.Flush() })

	return w
}

// NewWithDB creates a recorder on an open database.
func NewWithDB(db *sql.DB) DataRecorder {
	w := newSQLiteWriter()
	w.DB = db

	atexit.Register(func() { w.Flush() })

	return w
}

type table struct {
	structType reflect.Type
	entries    []any
}

type sqliteWriter struct {
	*sql.DB

	dbName     string
	tables     map[string]*table
	tableNames []string
	batchSize  int
	entryCount int
	closed     bool
}

func newSQLiteWriter() *sqliteWriter {
	return &sqliteWriter{
		batchSize: defaultBatchSize,
		tables:    make(map[string]*table),
	}
}

func (w *sqliteWriter) open(path string) {
	w.dbName = path
	if w.dbName == "" {
		w.dbName = "elasticbuf_trace_" + xid.New().String()
	}

	filename := w.dbName + ".sqlite3"

	if _, err := os.Stat(filename); err == nil {
		panic(fmt.Errorf("file %s already exists", filename))
	}

	fmt.Fprintf(os.Stderr, "Database created for recording: %s\n", filename)

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		panic(err)
	}

	w.DB = db
}

func columnType(kind reflect.Kind) (string, bool) {
	switch kind {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
		reflect.Uint64:
		return "INTEGER", true
	case reflect.Float32, reflect.Float64:
		return "REAL", true
	case reflect.String:
		return "TEXT", true
	default:
		return "", false
	}
}

func (w *sqliteWriter) columns(sampleEntry any) []string {
	t := reflect.TypeOf(sampleEntry)
	if t == nil || t.Kind() != reflect.Struct {
		panic(fmt.Sprintf("entry of type %v is not a struct", t))
	}

	names := structs.Names(sampleEntry)
	if len(names) != t.NumField() {
		panic(fmt.Sprintf("entry of type %v has unexported fields", t))
	}

	cols := make([]string, 0, len(names))

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		sqlType, ok := columnType(field.Type.Kind())
		if !ok {
			panic(fmt.Sprintf("field %s of type %v cannot be recorded",
				field.Name, field.Type))
		}

		cols = append(cols, names[i]+" "+sqlType)
	}

	return cols
}

func (w *sqliteWriter) CreateTable(tableName string, sampleEntry any) {
	if !tableNameRegexp.MatchString(tableName) {
		panic(fmt.Sprintf("table name %q is not valid", tableName))
	}

	if _, exists := w.tables[tableName]; exists {
		panic(fmt.Sprintf("table %s already exists", tableName))
	}

	cols := w.columns(sampleEntry)

	w.mustExecute(`CREATE TABLE ` + tableName +
		` (` + "\n\t" + strings.Join(cols, ",\n\t") + "\n" + `);`)

	w.tables[tableName] = &table{structType: reflect.TypeOf(sampleEntry)}
	w.tableNames = append(w.tableNames, tableName)
}

func (w *sqliteWriter) InsertData(tableName string, entry any) {
	table, exists := w.tables[tableName]
	if !exists {
		panic(fmt.Sprintf("table %s does not exist", tableName))
	}

	if reflect.TypeOf(entry) != table.structType {
		panic(fmt.Sprintf("entry of type %T does not fit table %s",
			entry, tableName))
	}

	table.entries = append(table.entries, entry)

	w.entryCount++
	if w.entryCount >= w.batchSize {
		w.Flush()
	}
}

func (w *sqliteWriter) ListTables() []string {
	return append([]string(nil), w.tableNames...)
}

func (w *sqliteWriter) Flush() {
	if w.entryCount == 0 || w.closed {
		return
	}

	tx, err := w.Begin()
	if err != nil {
		panic(err)
	}

	for _, tableName := range w.tableNames {
		table := w.tables[tableName]
		if len(table.entries) == 0 {
			continue
		}

		stmt, err := tx.Prepare(insertStatement(tableName, table.structType))
		if err != nil {
			panic(err)
		}

		for _, entry := range table.entries {
			if _, err := stmt.Exec(fieldValues(entry)...); err != nil {
				panic(err)
			}
		}

		stmt.Close()

		table.entries = nil
	}

	if err := tx.Commit(); err != nil {
		panic(err)
	}

	w.entryCount = 0
}

func (w *sqliteWriter) Close() error {
	if w.closed {
		return nil
	}

	w.Flush()
	w.closed = true

	return w.DB.Close()
}

func (w *sqliteWriter) mustExecute(query string) sql.Result {
	res, err := w.Exec(query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to execute: %s\n", query)
		panic(err)
	}

	return res
}

func insertStatement(tableName string, t reflect.Type) string {
	marks := make([]string, t.NumField())
	for i := range marks {
		marks[i] = "?"
	}

	return "INSERT INTO " + tableName +
		" VALUES (" + strings.Join(marks, ", ") + ")"
}

// fieldValues lists the fields of an entry in column order. Unsigned values
// are stored with the bit pattern of an int64, since SQLite integers are
// signed.
func fieldValues(entry any) []any {
	v := reflect.ValueOf(entry)
	values := make([]any, v.NumField())

	for i := range values {
		f := v.Field(i)

		switch f.Kind() {
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32,
			reflect.Uint64:
			values[i] = int64(f.Uint())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32,
			reflect.Int64:
			values[i] = f.Int()
		case reflect.Bool:
			values[i] = f.Bool()
		case reflect.Float32, reflect.Float64:
			values[i] = f.Float()
		default:
			values[i] = f.String()
		}
	}

	return values
}
