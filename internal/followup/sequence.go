// Package followup implements the post-purchase email sequence: a per-lead
// state machine advanced by an external periodic tick. A lead moves from
// not-started through emails 1..4 on a fixed day-offset cadence, with
// unsubscribe as an absorbing state.
package followup

import (
	"time"

	"growthscore_backend/internal/email"
)

// scheduleDays holds the day offset of each email relative to sequence
// start, indexed by email number. Email 1 goes out immediately, then days
// 2, 3, and 5.
var scheduleDays = [email.SequenceLength + 1]int{0, 0, 2, 3, 5}

// nextDueAfter returns when the email following sentEmail becomes eligible,
// measured from the moment sentEmail actually went out. The gap is the
// difference between consecutive schedule offsets, so a late send shifts the
// remaining cadence rather than compressing it. Returns nil after the final
// email.
func nextDueAfter(sentEmail int, sentAt time.Time) *time.Time {
	next := sentEmail + 1
	if next > email.SequenceLength {
		return nil
	}
	gap := scheduleDays[next] - scheduleDays[sentEmail]
	due := sentAt.AddDate(0, 0, gap)
	return &due
}
