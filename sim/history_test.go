package sim

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVLogger_WritesHeaderAndRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.csv")
	logger, err := NewEventLogger(path)
	require.NoError(t, err)

	require.NoError(t, logger.Record(0, EventArrival, 0, 1, 0))
	require.NoError(t, logger.Record(12.5, EventServiceStart, 0, 0, 1))
	require.NoError(t, logger.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Time,Event,CustomerID,QueueLength,BusyServers", lines[0])
	assert.Equal(t, "0.00,Arrival,0,1,0", lines[1])
	assert.Equal(t, "12.50,ServiceStart,0,0,1", lines[2])
}

func TestSQLiteLogger_PersistsEvents(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.sqlite3")
	logger, err := NewEventLogger(path)
	require.NoError(t, err)

	require.NoError(t, logger.Record(0, EventArrival, 3, 1, 0))
	require.NoError(t, logger.Record(5, EventServiceEnd, 3, 0, 0))
	require.NoError(t, logger.Close())

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM events").Scan(&count))
	assert.Equal(t, 2, count)

	var event string
	var custID, queueLen int
	require.NoError(t, db.QueryRow(
		"SELECT event, customer_id, queue_length FROM events WHERE time = 0").
		Scan(&event, &custID, &queueLen))
	assert.Equal(t, "Arrival", event)
	assert.Equal(t, 3, custID)
	assert.Equal(t, 1, queueLen)
}

func TestNewEventLogger_BackendSelection(t *testing.T) {
	dir := t.TempDir()

	csv, err := NewEventLogger(filepath.Join(dir, "events.csv"))
	require.NoError(t, err)
	defer csv.Close()
	assert.IsType(t, &csvLogger{}, csv)

	db, err := NewEventLogger(filepath.Join(dir, "events.db"))
	require.NoError(t, err)
	defer db.Close()
	assert.IsType(t, &sqliteLogger{}, db)
}
