package timezone_test

import (
	"testing"
	"time"

	"travelo/shared/timezone"

	"github.com/stretchr/testify/assert"
)

func TestNow(t *testing.T) {
	now := timezone.Now()

	assert.False(t, now.IsZero())
	assert.Equal(t, timezone.GetLocation(), now.Location())
}

func TestToAppTime_PreservesInstant(t *testing.T) {
	utc := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)

	converted := timezone.ToAppTime(utc)

	assert.True(t, utc.Equal(converted))
	assert.Equal(t, timezone.GetLocation(), converted.Location())
}

func TestFormat(t *testing.T) {
	utc := time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)

	assert.Equal(t, timezone.ToAppTime(utc).Format(time.RFC3339), timezone.Format(utc, time.RFC3339))
}
