package model

import "time"

// JobStatus marks whether a posting still accepts referrals.
type JobStatus string

const (
	JobActive   JobStatus = "Active"
	JobInactive JobStatus = "Inactive"
)

// JobDetail is the long-form body of a posting, kept as a nested object
// ("jobsdetail" on the wire) because that is how the dashboard renders it.
type JobDetail struct {
	Description  string `json:"description"`
	Requirements string `json:"requirements"`
	Benefits     string `json:"benefits"`
	Other        string `json:"other"`
}

// Job is a posting recruiters refer candidates against. The posting owns its
// comment thread (Comments) and the set of users who bookmarked it (SavedBy).
//
// SavedBy is a set: a user id appears at most once, enforced at write time
// by the job service. Comments are stored newest-first.
type Job struct {
	ID                 string     `json:"_id"`
	Title              string     `json:"title"`
	Company            string     `json:"company"`
	Location           string     `json:"location"`
	Salary             string     `json:"salary"`
	Bonus              float64    `json:"bonus"`
	RewardCandidateUSD float64    `json:"rewardCandidateUSD"`
	RewardInterviewUSD float64    `json:"rewardInterviewUSD"`
	Vacancies          int        `json:"vacancies"`
	Applicants         int        `json:"applicants"`
	Deadline           *time.Time `json:"deadline,omitempty"`
	Status             JobStatus  `json:"status"`
	Keywords           []string   `json:"keywords,omitempty"`
	Detail             JobDetail  `json:"jobsdetail"`
	SavedBy            []string   `json:"savedBy"`
	Comments           []Comment  `json:"comments"`
	CreatedAt          time.Time  `json:"createdAt"`
	UpdatedAt          time.Time  `json:"updatedAt"`
}

// SavedByContains reports whether userID has bookmarked the job.
func (j *Job) SavedByContains(userID string) bool {
	for _, id := range j.SavedBy {
		if id == userID {
			return true
		}
	}
	return false
}

// Comment is a discussion entry on a job's thread. Any authenticated actor
// can comment; only the author or an admin may edit or delete it.
type Comment struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	Author     string     `json:"author"`
	AuthorRole Role       `json:"authorRole"`
	UserID     string     `json:"userId"`
	Timestamp  time.Time  `json:"timestamp"`
	EditedAt   *time.Time `json:"editedAt"`
	Replies    []Reply    `json:"replies,omitempty"`
}

// Reply is an admin answer under a comment. Replies are appended in
// chronological order (unlike comments, which are prepended).
type Reply struct {
	ID         string    `json:"id"`
	Text       string    `json:"text"`
	Author     string    `json:"author"`
	AuthorRole Role      `json:"authorRole"`
	UserID     string    `json:"userId"`
	Timestamp  time.Time `json:"timestamp"`
}
