package discord

import "testing"

func TestParseComponentID(t *testing.T) {
	valid := []componentID{
		{kindChallenge, actionAccept, "abc123"},
		{kindChallenge, actionDecline, "abc123"},
		{kindReport, actionWin, "1a2b3c4d"},
		{kindReport, actionLoss, "1a2b3c4d"},
	}
	for _, want := range valid {
		got, err := parseComponentID(want.String())
		if err != nil {
			t.Errorf("parseComponentID(%q): %v", want.String(), err)
			continue
		}
		if got != want {
			t.Errorf("parseComponentID(%q) = %+v", want.String(), got)
		}
	}

	for _, raw := range []string{"", "report:win", "report:win:", "report:draw:m1", "duel:accept:x", "i_won"} {
		if _, err := parseComponentID(raw); err == nil {
			t.Errorf("parseComponentID(%q) succeeded", raw)
		}
	}
}
