package application

import "elobot/internal/models"

// Outcome is the kind of terminal state a reconciliation leads to.
type Outcome int

const (
	OutcomeConfirm Outcome = iota
	OutcomeDispute
	OutcomeTimeout
)

// Verdict is the pure decision taken from the two report slots.
type Verdict struct {
	Outcome Outcome
	// Player1Wins is meaningful only for OutcomeConfirm.
	Player1Wins bool
}

func (v Verdict) RequiresHumanAction() bool {
	return v.Outcome == OutcomeDispute
}

// Decide maps the report slots of a pending match to a verdict. A lone claim
// decides the match; two agreeing claims confirm it; two identical claims
// dispute it; silence times it out.
func Decide(p1, p2 models.Report) Verdict {
	switch {
	case p1 == models.ReportWin && p2 == models.ReportLoss:
		return Verdict{Outcome: OutcomeConfirm, Player1Wins: true}
	case p1 == models.ReportLoss && p2 == models.ReportWin:
		return Verdict{Outcome: OutcomeConfirm}
	case p1.IsSet() && p2.IsSet():
		return Verdict{Outcome: OutcomeDispute}
	case p1.IsSet():
		return Verdict{Outcome: OutcomeConfirm, Player1Wins: p1 == models.ReportWin}
	case p2.IsSet():
		return Verdict{Outcome: OutcomeConfirm, Player1Wins: p2 == models.ReportLoss}
	default:
		return Verdict{Outcome: OutcomeTimeout}
	}
}

// Trigger names what started a reconciliation.
type Trigger string

const (
	TriggerReport Trigger = "report"
	TriggerSweep  Trigger = "sweep"
	TriggerAdmin  Trigger = "admin"
)

// Resolution describes what a reconciliation did. Applied is false when the
// match was already terminal or another caller won the status swap.
type Resolution struct {
	MatchID string
	Applied bool
	Status  models.MatchStatus
	Trigger Trigger

	WinnerID        string
	LoserID         string
	WinnerOldRating int
	WinnerNewRating int
	LoserOldRating  int
	LoserNewRating  int

	// MissingPlayerID is set when the match ended as error_player_not_found.
	MissingPlayerID string
}

func (r *Resolution) WinnerGain() int {
	return r.WinnerNewRating - r.WinnerOldRating
}

func (r *Resolution) LoserLoss() int {
	return r.LoserOldRating - r.LoserNewRating
}

// RequiresHumanAction reports whether the match ended disputed and waits for
// an administrator.
func (r *Resolution) RequiresHumanAction() bool {
	return r.Status == models.MatchDisputed
}

// ReportAck is returned for an accepted report. Resolution is non-nil when
// the report completed the match and reconciliation ran.
type ReportAck struct {
	Match      *models.Match
	Report     models.Report
	Resolution *Resolution
}
