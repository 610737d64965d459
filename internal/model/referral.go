package model

import "time"

// ReferralStatus tracks a candidate submission through its lifecycle.
type ReferralStatus string

const (
	ReferralSubmitted    ReferralStatus = "submitted"
	ReferralUnderReview  ReferralStatus = "under_review"
	ReferralInterviewing ReferralStatus = "interviewing"
	ReferralOffer        ReferralStatus = "offer"
	ReferralHired        ReferralStatus = "hired"
	ReferralRejected     ReferralStatus = "rejected"
	ReferralOnboard      ReferralStatus = "onboard"
)

// referralTransitions is the allowed status graph:
//
//	submitted → under_review → interviewing → offer → hired | rejected
//	hired → onboard
//
// rejected and onboard are terminal.
var referralTransitions = map[ReferralStatus][]ReferralStatus{
	ReferralSubmitted:    {ReferralUnderReview},
	ReferralUnderReview:  {ReferralInterviewing},
	ReferralInterviewing: {ReferralOffer},
	ReferralOffer:        {ReferralHired, ReferralRejected},
	ReferralHired:        {ReferralOnboard},
}

// ValidReferralStatus reports whether s is one of the seven known states.
func ValidReferralStatus(s ReferralStatus) bool {
	switch s {
	case ReferralSubmitted, ReferralUnderReview, ReferralInterviewing,
		ReferralOffer, ReferralHired, ReferralRejected, ReferralOnboard:
		return true
	}
	return false
}

// CanTransitionTo reports whether moving from s to next respects the status
// graph. Writing the same status back is always allowed (a field-only update
// resends the current status).
func (s ReferralStatus) CanTransitionTo(next ReferralStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range referralTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Referral is a candidate submitted by a recruiter against a job.
// Recruiter, Admin and Job hold entity ids; Recruiter may also be matched by
// the recruiter's email when listing (legacy records stored emails there).
type Referral struct {
	ID             string         `json:"_id"`
	Recruiter      string         `json:"recruiter"`
	Admin          string         `json:"admin"`
	Job            string         `json:"job"`
	CandidateName  string         `json:"candidateName"`
	CandidateEmail string         `json:"candidateEmail"`
	CandidatePhone string         `json:"candidatePhone"`
	CVURL          string         `json:"cvUrl"`
	LinkedIn       string         `json:"linkedin"`
	Portfolio      string         `json:"portfolio"`
	Suitability    string         `json:"suitability"`
	Bonus          float64        `json:"bonus"`
	Message        string         `json:"message"`
	Status         ReferralStatus `json:"status"`
	Finalized      bool           `json:"finalized"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}
