// Package sqlite provides SQLite database writing for calculated mass tables
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/ChrisMcGann/exactmass/pkg/core"
)

// ErrRunDiscarded is returned by Finalize when an earlier write failed.
var ErrRunDiscarded = errors.New("calculation run discarded after a failed write")

// Date format for CalculationRun (ISO 8601)
const runDateFormat = time.RFC3339

// RunInfo describes the calculation stored by a Writer
type RunInfo struct {
	Precision   int32
	Elimination string
	SourceFile  string
}

// Writer handles writing one calculation run to a SQLite database file.
// A database can hold many runs; each gets its own run id. A run is written
// in one transaction and only committed by Finalize, so a failed write never
// leaves a partial run behind.
type Writer struct {
	db    *sql.DB
	tx    *sql.Tx
	runID string
	info  RunInfo

	columnStmt   *sql.Stmt
	compoundStmt *sql.Stmt
	massStmt     *sql.Stmt

	columnIDs []int64
	rowCount  int
	failed    bool
	finalized bool
}

// NewWriter opens (or creates) the database and starts a new run
func NewWriter(outputPath string, info RunInfo) (*Writer, error) {
	db, err := sql.Open("sqlite3", outputPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	return NewWriterDB(db, info)
}

// NewWriterDB starts a new run on an open database. The writer takes
// ownership of db and closes it in Finalize, or here on error.
func NewWriterDB(db *sql.DB, info RunInfo) (*Writer, error) {
	w := &Writer{
		db:    db,
		runID: uuid.New().String(),
		info:  info,
	}

	if err := w.createTables(); err != nil {
		db.Close()
		return nil, err
	}

	tx, err := db.Begin()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to begin run: %w", err)
	}
	w.tx = tx

	if err := w.prepareStatements(); err != nil {
		tx.Rollback()
		db.Close()
		return nil, err
	}

	return w, nil
}

// RunID returns the id of the run being written
func (w *Writer) RunID() string {
	return w.runID
}

// createTables creates the required database schema
func (w *Writer) createTables() error {
	schema := `
	CREATE TABLE IF NOT EXISTS CalculationRun (
		RunId TEXT PRIMARY KEY,
		CreationDate TEXT,
		Precision INTEGER,
		Elimination TEXT,
		SourceFile TEXT,
		NoofCompounds INTEGER
	);

	CREATE TABLE IF NOT EXISTS IonColumnTable (
		ColumnId INTEGER PRIMARY KEY AUTOINCREMENT,
		RunId TEXT REFERENCES CalculationRun(RunId),
		Position INTEGER,
		Name TEXT,
		AddFormula TEXT,
		DeleteFormula TEXT,
		Adduct TEXT,
		Charge INTEGER,
		RetentionTime BOOL
	);

	CREATE TABLE IF NOT EXISTS CompoundTable (
		CompoundId INTEGER PRIMARY KEY AUTOINCREMENT,
		RunId TEXT REFERENCES CalculationRun(RunId),
		Position INTEGER,
		Name TEXT,
		Formula TEXT,
		Invalid BOOL
	);

	CREATE TABLE IF NOT EXISTS MassTable (
		CompoundId INTEGER REFERENCES CompoundTable(CompoundId),
		ColumnId INTEGER REFERENCES IonColumnTable(ColumnId),
		Value TEXT,
		Mass DOUBLE,
		PRIMARY KEY (CompoundId, ColumnId)
	);
	`

	_, err := w.db.Exec(schema)
	if err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	return nil
}

// prepareStatements prepares SQL statements for batch insertion
func (w *Writer) prepareStatements() error {
	var err error

	w.columnStmt, err = w.tx.Prepare(`
		INSERT INTO IonColumnTable (
			RunId, Position, Name, AddFormula, DeleteFormula, Adduct, Charge, RetentionTime
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare column statement: %w", err)
	}

	w.compoundStmt, err = w.tx.Prepare(`
		INSERT INTO CompoundTable (RunId, Position, Name, Formula, Invalid) VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare compound statement: %w", err)
	}

	w.massStmt, err = w.tx.Prepare(`
		INSERT INTO MassTable (CompoundId, ColumnId, Value, Mass) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare mass statement: %w", err)
	}

	return nil
}

// WriteColumns stores the ion columns of the run. It must be called once, before WriteRow.
func (w *Writer) WriteColumns(columns []core.IonColumn) error {
	return w.check(w.writeColumns(columns))
}

func (w *Writer) writeColumns(columns []core.IonColumn) error {
	if w.columnIDs != nil {
		return fmt.Errorf("columns already written for run %s", w.runID)
	}

	w.columnIDs = make([]int64, 0, len(columns))
	for i, col := range columns {
		res, err := w.columnStmt.Exec(
			w.runID,           // RunId
			i+1,               // Position
			col.Name,          // Name
			col.Add,           // AddFormula
			col.Delete,        // DeleteFormula
			col.Adduct,        // Adduct
			col.Charge,        // Charge
			col.RetentionTime, // RetentionTime
		)
		if err != nil {
			return fmt.Errorf("failed to insert column %q: %w", col.Name, err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to read column id: %w", err)
		}
		w.columnIDs = append(w.columnIDs, id)
	}
	return nil
}

// WriteRow writes a single compound and its cells. Empty cells are skipped;
// cells holding a number also get a numeric Mass.
func (w *Writer) WriteRow(row *core.Row) error {
	return w.check(w.writeRow(row))
}

func (w *Writer) writeRow(row *core.Row) error {
	if w.columnIDs == nil {
		return fmt.Errorf("columns must be written before rows")
	}
	if len(row.Cells) != len(w.columnIDs) {
		return fmt.Errorf("row %q has %d cells, run has %d columns", row.Label(), len(row.Cells), len(w.columnIDs))
	}

	w.rowCount++
	res, err := w.compoundStmt.Exec(w.runID, w.rowCount, row.Name, row.Formula, row.Invalid)
	if err != nil {
		return fmt.Errorf("failed to insert compound: %w", err)
	}
	compoundID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read compound id: %w", err)
	}

	for i, cell := range row.Cells {
		if cell == "" {
			continue
		}

		// Markers such as N/A keep a NULL mass
		var mass interface{} = nil
		if d, err := decimal.NewFromString(cell); err == nil {
			mass = d.InexactFloat64()
		}

		if _, err := w.massStmt.Exec(compoundID, w.columnIDs[i], cell, mass); err != nil {
			return fmt.Errorf("failed to insert mass of %q: %w", row.Label(), err)
		}
	}
	return nil
}

// check marks the run as failed when err is set
func (w *Writer) check(err error) error {
	if err != nil {
		w.failed = true
	}
	return err
}

// WriteTable writes the columns and every row of table
func (w *Writer) WriteTable(table *core.Table) error {
	if err := w.WriteColumns(table.Columns); err != nil {
		return err
	}
	for _, row := range table.Rows {
		if err := w.WriteRow(row); err != nil {
			return err
		}
	}
	return nil
}

// Finalize writes the run record, commits the run and closes the database.
// After a failed write the run is rolled back instead and ErrRunDiscarded is returned.
func (w *Writer) Finalize() error {
	if w.finalized {
		return nil
	}
	w.finalized = true

	if w.failed {
		w.abort()
		return fmt.Errorf("%w: run %s", ErrRunDiscarded, w.runID)
	}

	_, err := w.tx.Exec(`
		INSERT INTO CalculationRun (RunId, CreationDate, Precision, Elimination, SourceFile, NoofCompounds)
		VALUES (?, ?, ?, ?, ?, ?)
	`, w.runID, time.Now().UTC().Format(runDateFormat), w.info.Precision, w.info.Elimination, w.info.SourceFile, w.rowCount)
	if err != nil {
		w.abort()
		return fmt.Errorf("failed to insert run: %w", err)
	}

	// Close prepared statements
	for _, stmt := range []*sql.Stmt{w.columnStmt, w.compoundStmt, w.massStmt} {
		if stmt != nil {
			stmt.Close()
		}
	}

	if err := w.tx.Commit(); err != nil {
		w.db.Close()
		return fmt.Errorf("failed to commit run: %w", err)
	}

	if err := w.db.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}

// abort rolls back the run and closes the database
func (w *Writer) abort() {
	w.tx.Rollback()
	w.db.Close()
}

// Close closes the database connection (alias for Finalize)
func (w *Writer) Close() error {
	return w.Finalize()
}
