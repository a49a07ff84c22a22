package reports

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// The window bounds are UTC instants. Bucketing has to convert the
// timestamptz column to UTC before grouping, or a sale rung up at 23:30Z
// lands in a different hour whenever the session timezone is not UTC.
func TestBucketQueriesGroupInUTC(t *testing.T) {
	require.Contains(t, hourlyTotalsQuery, `AT TIME ZONE 'UTC'`)
	require.Contains(t, dailyTotalsQuery, `AT TIME ZONE 'UTC'`)
}
