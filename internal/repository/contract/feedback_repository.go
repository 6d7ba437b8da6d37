package contract

import "time"

// FeedbackEntry is one piece of negative feedback kept for later review.
type FeedbackEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	MessageID   string    `json:"message_id"`
	Suggestions string    `json:"suggestions,omitempty"`
}

// FeedbackRepository records user feedback on assistant answers. Positive
// feedback is acknowledged without storage; only negative feedback lands
// on disk.
type FeedbackRepository interface {
	AppendNegative(entry FeedbackEntry) error
}
