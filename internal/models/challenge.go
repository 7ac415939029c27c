package models

import "time"

type ChallengeState string

const (
	ChallengeIssued   ChallengeState = "issued"
	ChallengeAccepted ChallengeState = "accepted"
	ChallengeDeclined ChallengeState = "declined"
	ChallengeExpired  ChallengeState = "expired"
)

// Challenge lives only in process memory until it is accepted.
type Challenge struct {
	ID             string          `json:"id"`
	ChallengerID   string          `json:"challenger_id"`
	ChallengerName string          `json:"challenger_name"`
	OpponentID     string          `json:"opponent_id"`
	OpponentName   string          `json:"opponent_name"`
	CreatedAt      time.Time       `json:"created_at"`
	ExpiresAt      time.Time       `json:"expires_at"`
	Announcement   AnnouncementRef `json:"announcement"`
	State          ChallengeState  `json:"state"`
}
