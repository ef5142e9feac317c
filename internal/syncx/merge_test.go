package syncx

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolve_IncomingNewer_Applies(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, Apply, Resolve(base.Add(time.Second), base))
}

func TestResolve_IncomingOlder_Keeps(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, Keep, Resolve(base.Add(-time.Second), base))
}

func TestResolve_EqualTimestamps_Keeps(t *testing.T) {
	// Equal timestamps keep the existing record, which makes re-applying the
	// same record a no-op.
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, Keep, Resolve(base, base))
}

func TestResolve_NanosecondPrecision(t *testing.T) {
	base := time.Date(2025, 3, 1, 12, 0, 0, 500, time.UTC)
	assert.Equal(t, Apply, Resolve(base.Add(time.Nanosecond), base))
	assert.Equal(t, Keep, Resolve(base.Add(-time.Nanosecond), base))
}

func TestResolve_MissingExisting_Applies(t *testing.T) {
	// A record absent locally is represented by the zero time and always loses.
	incoming := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, Apply, Resolve(incoming, time.Time{}))
}
