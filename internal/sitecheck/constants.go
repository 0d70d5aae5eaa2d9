package sitecheck

import "time"

// Submission outcomes.
const (
	outcomeSent      = "sent"
	outcomeDuplicate = "duplicate"
	outcomeThrottled = "throttled"
	outcomeFailed    = "failed"
)

// Worker configuration constants.
const (
	WorkerChannelMultiplier = 2
)

// Runner configuration constants.
const (
	DefaultReplyWait     = 10 * time.Second
	pollInterval         = 50 * time.Millisecond
	PercentageMultiplier = 100
)

// idempotencyHeader matches the header the contact endpoint reads.
const idempotencyHeader = "Idempotency-Key"

// Pages is the routing surface every deployment serves.
var Pages = []string{"/", "/about", "/services", "/work", "/blog", "/contact", "/privacy", "/terms"}
