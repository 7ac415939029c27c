package application

import (
	"testing"

	"elobot/internal/models"
)

func TestDecide(t *testing.T) {
	const (
		unset = models.ReportUnset
		win   = models.ReportWin
		loss  = models.ReportLoss
	)
	tests := []struct {
		p1, p2      models.Report
		outcome     Outcome
		player1Wins bool
	}{
		{win, loss, OutcomeConfirm, true},
		{loss, win, OutcomeConfirm, false},
		{win, win, OutcomeDispute, false},
		{loss, loss, OutcomeDispute, false},
		{win, unset, OutcomeConfirm, true},
		{loss, unset, OutcomeConfirm, false},
		{unset, win, OutcomeConfirm, false},
		{unset, loss, OutcomeConfirm, true},
		{unset, unset, OutcomeTimeout, false},
	}
	for _, tt := range tests {
		got := Decide(tt.p1, tt.p2)
		if got.Outcome != tt.outcome {
			t.Errorf("Decide(%q, %q).Outcome = %v, want %v", tt.p1, tt.p2, got.Outcome, tt.outcome)
			continue
		}
		if got.Outcome == OutcomeConfirm && got.Player1Wins != tt.player1Wins {
			t.Errorf("Decide(%q, %q).Player1Wins = %v, want %v", tt.p1, tt.p2, got.Player1Wins, tt.player1Wins)
		}
		if got.RequiresHumanAction() != (tt.outcome == OutcomeDispute) {
			t.Errorf("Decide(%q, %q).RequiresHumanAction() = %v", tt.p1, tt.p2, got.RequiresHumanAction())
		}
	}
}

func TestResolutionRequiresHumanAction(t *testing.T) {
	for status, want := range map[models.MatchStatus]bool{
		models.MatchDisputed:            true,
		models.MatchConfirmed:           false,
		models.MatchTimedOut:            false,
		models.MatchErrorPlayerNotFound: false,
		models.MatchPending:             false,
	} {
		r := &Resolution{Status: status}
		if got := r.RequiresHumanAction(); got != want {
			t.Errorf("RequiresHumanAction() for %s = %v, want %v", status, got, want)
		}
	}
}
