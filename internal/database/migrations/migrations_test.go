package migrations_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/subwayline/subwayline/internal/database/migrations"
)

func TestLoad_OrderedAndTrackingTableFirst(t *testing.T) {
	ms, err := migrations.Load()
	require.NoError(t, err)
	require.NotEmpty(t, ms)

	assert.Equal(t, "000_schema_migrations.sql", ms[0].Version)
	assert.Contains(t, ms[0].SQL, "schema_migrations")

	for i := 1; i < len(ms); i++ {
		assert.Less(t, ms[i-1].Version, ms[i].Version)
	}
}

func TestLoad_DefinesLineTables(t *testing.T) {
	ms, err := migrations.Load()
	require.NoError(t, err)

	var all strings.Builder
	for _, m := range ms {
		all.WriteString(m.SQL)
	}

	for _, table := range []string{"stations", "lines", "line_sections"} {
		assert.Contains(t, all.String(), "CREATE TABLE IF NOT EXISTS "+table+" ")
	}
}
