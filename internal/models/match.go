package models

import "time"

type MatchStatus string

const (
	MatchPending             MatchStatus = "pending"
	MatchConfirmed           MatchStatus = "confirmed"
	MatchDisputed            MatchStatus = "disputed"
	MatchTimedOut            MatchStatus = "timed_out"
	MatchErrorPlayerNotFound MatchStatus = "error_player_not_found"
)

// Terminal reports whether no automatic transition can leave the status.
// A disputed match is terminal for reconciliation but can still be
// confirmed by an admin override.
func (s MatchStatus) Terminal() bool {
	return s != MatchPending
}

// Report is a participant's self-declared outcome. The zero value means
// the participant has not reported yet.
type Report string

const (
	ReportUnset Report = ""
	ReportWin   Report = "win"
	ReportLoss  Report = "loss"
)

func (r Report) IsSet() bool {
	return r != ReportUnset
}

func (r Report) Valid() bool {
	return r == ReportWin || r == ReportLoss
}

// AnnouncementRef points at the channel message a match was announced in.
// It is used for linking and editing only, never for match logic.
type AnnouncementRef struct {
	ChannelID string `json:"channel_id" db:"channel_id"`
	MessageID string `json:"message_id" db:"message_id"`
}

type Match struct {
	ID            string          `json:"id" db:"match_id"`
	Player1ID     string          `json:"player1_id" db:"player1_id"`
	Player2ID     string          `json:"player2_id" db:"player2_id"`
	Announcement  AnnouncementRef `json:"announcement"`
	CreatedAt     time.Time       `json:"created_at" db:"created_at"`
	Player1Report Report          `json:"player1_report,omitempty" db:"player1_report"`
	Player2Report Report          `json:"player2_report,omitempty" db:"player2_report"`
	Status        MatchStatus     `json:"status" db:"status"`
}

func (m *Match) IsParticipant(playerID string) bool {
	return playerID != "" && (playerID == m.Player1ID || playerID == m.Player2ID)
}

// Opponent returns the other participant, or "" if playerID is not in the match.
func (m *Match) Opponent(playerID string) string {
	switch playerID {
	case m.Player1ID:
		return m.Player2ID
	case m.Player2ID:
		return m.Player1ID
	default:
		return ""
	}
}

// ReportOf returns the report slot belonging to playerID.
func (m *Match) ReportOf(playerID string) Report {
	switch playerID {
	case m.Player1ID:
		return m.Player1Report
	case m.Player2ID:
		return m.Player2Report
	default:
		return ReportUnset
	}
}

func (m *Match) BothReported() bool {
	return m.Player1Report.IsSet() && m.Player2Report.IsSet()
}
