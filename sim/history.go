package sim

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	// SQLite driver for the database-backed event log.
	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

// EventLogger persists the event history of a run. Delivery is best-effort:
// the simulation never fails because a row could not be written.
type EventLogger interface {
	Record(time float64, kind EventKind, custID, queueLen, busyServers int) error
	Close() error
}

// NewEventLogger opens an event logger for path. Paths ending in ".sqlite3"
// or ".db" get a SQLite-backed log; anything else gets the plain CSV format
// with header Time,Event,CustomerID,QueueLength,BusyServers.
func NewEventLogger(path string) (EventLogger, error) {
	if strings.HasSuffix(path, ".sqlite3") || strings.HasSuffix(path, ".db") {
		return newSQLiteLogger(path)
	}
	return newCSVLogger(path)
}

// csvLogger streams rows to a CSV file, flushing per event so the history
// is readable while the simulation is still running.
type csvLogger struct {
	f *os.File
}

func newCSVLogger(path string) (*csvLogger, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	if _, err := fmt.Fprintln(f, "Time,Event,CustomerID,QueueLength,BusyServers"); err != nil {
		f.Close()
		return nil, err
	}
	return &csvLogger{f: f}, nil
}

func (l *csvLogger) Record(time float64, kind EventKind, custID, queueLen, busyServers int) error {
	_, err := fmt.Fprintf(l.f, "%.2f,%s,%d,%d,%d\n", time, kind, custID, queueLen, busyServers)
	return err
}

func (l *csvLogger) Close() error {
	return l.f.Close()
}

// sqliteLogger records events into an `events` table, buffering rows and
// writing them in transactions to keep inserts off the per-event path.
type sqliteLogger struct {
	db        *sql.DB
	buffered  []Notification
	batchSize int
}

const sqliteBatchSize = 512

func newSQLiteLogger(path string) (*sqliteLogger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS events (
		time REAL,
		event TEXT,
		customer_id INTEGER,
		queue_length INTEGER,
		busy_servers INTEGER
	)`)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &sqliteLogger{db: db, batchSize: sqliteBatchSize}, nil
}

func (l *sqliteLogger) Record(time float64, kind EventKind, custID, queueLen, busyServers int) error {
	l.buffered = append(l.buffered, Notification{
		Time:        time,
		Kind:        kind,
		CustomerID:  custID,
		QueueLen:    queueLen,
		BusyServers: busyServers,
	})
	if len(l.buffered) >= l.batchSize {
		return l.flush()
	}
	return nil
}

func (l *sqliteLogger) flush() error {
	if len(l.buffered) == 0 {
		return nil
	}
	tx, err := l.db.Begin()
	if err != nil {
		return err
	}
	stmt, err := tx.Prepare("INSERT INTO events (time, event, customer_id, queue_length, busy_servers) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		tx.Rollback()
		return err
	}
	for _, n := range l.buffered {
		if _, err := stmt.Exec(n.Time, n.Kind.String(), n.CustomerID, n.QueueLen, n.BusyServers); err != nil {
			stmt.Close()
			tx.Rollback()
			return err
		}
	}
	stmt.Close()
	if err := tx.Commit(); err != nil {
		return err
	}
	l.buffered = l.buffered[:0]
	return nil
}

func (l *sqliteLogger) Close() error {
	if err := l.flush(); err != nil {
		logrus.Warnf("event log: flush on close failed: %v", err)
	}
	return l.db.Close()
}
