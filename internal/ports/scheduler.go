package ports

import (
	"time"

	"careerpoker/internal/domain"
)

// Scheduler is the deferred-call facility used to answer a stale prompt on a
// player's behalf.
type Scheduler interface {
	// Schedule arranges for intent to be applied after delay and returns a
	// handle for Cancel.
	Schedule(intent domain.Intent, delay time.Duration) string
	// Cancel drops a scheduled intent. Unknown handles are ignored.
	Cancel(handle string)
}
