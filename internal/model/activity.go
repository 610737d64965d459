package model

import "time"

// ActivityLogCap is the maximum number of entries kept in the activity log.
// Appending beyond the cap drops the oldest entries.
const ActivityLogCap = 1000

// Activity types written by the mutating services.
const (
	ActivityJobCreated      = "job_created"
	ActivityJobUpdated      = "job_updated"
	ActivityJobDeleted      = "job_deleted"
	ActivityReferralCreated = "referral_created"
	ActivityReferralUpdated = "referral_updated"
	ActivityReferralDeleted = "referral_deleted"
	ActivityComment         = "comment"
	ActivityDeleteComment   = "delete_comment"
	ActivityReply           = "reply"
)

// Activity is an append-only audit entry describing a mutating action
// elsewhere in the system. Clients read the feed; they never mutate entries.
type Activity struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	Description string         `json:"description"`
	Metadata    map[string]any `json:"metadata"`
	Timestamp   time.Time      `json:"timestamp"`
}
