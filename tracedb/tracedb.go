// Package tracedb reads TAGE conditional-branch trace tables from SQLite.
//
// A trace database holds up to eight partitions named CondTrace_0 through
// CondTrace_7, each with per-event rows (CFIPC, STARTPC_ADDR, STAMP,
// MISPREDICT). The Store discovers whichever partitions exist and serves
// pre-grouped per-PC counts to the engine.
package tracedb

import (
	"database/sql"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/TheKiteRunner24/tage-trace-analyzer/engine"
)

// tablePrefix names the partition tables the simulator emits.
const tablePrefix = "CondTrace_"

// Store is a read-only handle on one trace database. It implements
// engine.Source. Each analysis call should own its Store exclusively and
// Close it when done.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens an existing trace database. A missing file is an error —
// the sqlite driver would silently create an empty database otherwise.
func Open(path string) (*Store, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("trace database: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}

	return &Store{db: db, path: path}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Partitions lists the CondTrace tables present in the database, ordered
// by their numeric suffix. Tables that are absent simply do not appear;
// a database with no partitions returns an empty list, not an error.
func (s *Store) Partitions() ([]string, error) {
	rows, err := s.db.Query(
		`SELECT name FROM sqlite_master WHERE type='table' AND name LIKE ?`,
		tablePrefix+"%",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		// Only digit suffixes qualify; anything else is not a trace
		// partition and must not be interpolated into a query.
		if _, ok := partitionIndex(name); ok {
			names = append(names, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.Slice(names, func(i, j int) bool {
		a, _ := partitionIndex(names[i])
		b, _ := partitionIndex(names[j])
		return a < b
	})
	return names, nil
}

// Scan returns per-PC grouped counts for one partition. When tr is non-nil
// only events with STAMP inside the inclusive range contribute.
func (s *Store) Scan(partition string, tr *engine.TickRange) ([]engine.Row, error) {
	if _, ok := partitionIndex(partition); !ok {
		return nil, fmt.Errorf("not a trace partition: %q", partition)
	}

	// Table names cannot be bound as parameters; partition names are
	// validated above.
	query := fmt.Sprintf(`
		SELECT CFIPC, STARTPC_ADDR, COUNT(*), SUM(MISPREDICT)
		FROM %s`, partition)

	var args []interface{}
	if tr != nil {
		query += ` WHERE STAMP BETWEEN ? AND ?`
		args = append(args, tr.Start, tr.End)
	}
	query += ` GROUP BY CFIPC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Row
	for rows.Next() {
		var pc, startPC, total, mispred int64
		if err := rows.Scan(&pc, &startPC, &total, &mispred); err != nil {
			return nil, err
		}
		out = append(out, engine.Row{
			Addr:         uint64(pc),
			StartAddr:    uint64(startPC),
			Total:        total,
			Mispredicted: mispred,
		})
	}
	return out, rows.Err()
}

// partitionIndex extracts the numeric suffix from a partition table name.
func partitionIndex(name string) (int, bool) {
	suffix, ok := strings.CutPrefix(name, tablePrefix)
	if !ok || suffix == "" {
		return 0, false
	}
	n, err := strconv.Atoi(suffix)
	if err != nil || n < 0 {
		return 0, false
	}
	return n, true
}
