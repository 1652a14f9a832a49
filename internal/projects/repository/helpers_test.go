package repository

import (
	"database/sql"
	"database/sql/driver"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"
)

func setupMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func anyArgs(n int) []driver.Value {
	out := make([]driver.Value, n)
	for i := range out {
		out[i] = sqlmock.AnyArg()
	}
	return out
}

func scalarNames() []string {
	names := make([]string, len(scalarColumns))
	for i, c := range scalarColumns {
		names[i] = c.name
	}
	return names
}

// scalarValues returns a row of scalar values in column order.
func scalarValues(title, status, fy string, grant float64) []driver.Value {
	return []driver.Value{
		title, "Adaptation", "Water", status, fy, "2024-01-01", "2026-12-31",
		1000.0, grant, 0.0, 0.0,
		"Reduce flood exposure", int64(1200), int64(5000),
		"", "", "", "", 0.0, "", "",
	}
}

func projectCols() []string {
	cols := append([]string{"project_id"}, scalarNames()...)
	return append(cols, "created_at", "updated_at", "presence", "wash_percentage", "description")
}

func projectValues(id, title, status string, wash bool) []driver.Value {
	now := time.Now()
	vals := append([]driver.Value{id}, scalarValues(title, status, "2024", 100)...)
	vals = append(vals, now, now)
	if wash {
		return append(vals, true, 25.0, "Boreholes")
	}
	return append(vals, nil, nil, nil)
}

func pendingCols() []string {
	cols := append([]string{"pending_project_id"}, scalarNames()...)
	cols = append(cols, "wash_component")
	for _, rel := range relations {
		cols = append(cols, rel.pendingColumn)
	}
	return append(cols, "submitter_email", "submitted_at")
}

// pendingValues builds a pending row; arrays are keyed by pendingColumn and
// given in Postgres text form ("{a1,a2}").
func pendingValues(id string, wash []byte, arrays map[string]string) []driver.Value {
	vals := append([]driver.Value{id}, scalarValues("Coastal Embankment", "Pipeline", "2025", 200)...)
	vals = append(vals, wash)
	for _, rel := range relations {
		v, ok := arrays[rel.pendingColumn]
		if !ok {
			v = "{}"
		}
		vals = append(vals, v)
	}
	return append(vals, "citizen@example.org", time.Now())
}

func relationCols(rel string) []string {
	return []string{"project_id", rel, "name"}
}
