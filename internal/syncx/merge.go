// Package syncx holds the pieces of the sync engine shared by the client and
// the server: the change-set shape that travels over the wire and the
// last-write-wins merge rule both halves apply.
package syncx

import "time"

// Outcome is the decision of the merge rule for one incoming record.
type Outcome int

const (
	// Apply replaces the existing record wholesale with the incoming one.
	Apply Outcome = iota
	// Keep leaves the existing record untouched.
	Keep
)

// Resolve compares an incoming record's updated_at against the existing
// record's and returns the merge decision: the strictly greater timestamp
// wins wholesale, and on exact equality the existing record is kept, which
// makes re-applying the same record a no-op.
//
// Tombstones participate like any other update: a later edit resurrects a
// deleted record, and a later delete overrides a live edit. The rule is
// deliberately coarse; concurrent edits to different fields on two devices
// are not merged, one of them loses.
func Resolve(incoming, existing time.Time) Outcome {
	if incoming.After(existing) {
		return Apply
	}
	return Keep
}
