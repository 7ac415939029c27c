package discord

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"elobot/internal/application"
	"elobot/internal/models"

	"github.com/bwmarrin/discordgo"
)

func testMatch(p1, p2 models.Report) *models.Match {
	return &models.Match{
		ID:            "1a2b3c4d",
		Player1ID:     "111",
		Player2ID:     "222",
		Announcement:  models.AnnouncementRef{ChannelID: "c1", MessageID: "m1"},
		Player1Report: p1,
		Player2Report: p2,
	}
}

func TestResolutionMessageConfirmed(t *testing.T) {
	res := &application.Resolution{
		MatchID: "1a2b3c4d", Applied: true, Status: models.MatchConfirmed,
		WinnerID: "111", LoserID: "222",
		WinnerOldRating: 1000, WinnerNewRating: 1015,
		LoserOldRating: 1000, LoserNewRating: 985,
	}

	msg := resolutionMessage(testMatch(models.ReportWin, models.ReportLoss), res, "g1", "")
	for _, want := range []string{"Result Confirmed", "<@111> has defeated <@222>", "`1015`, +15", "`985`, -15"} {
		if !strings.Contains(msg.Content, want) {
			t.Errorf("confirmed message %q missing %q", msg.Content, want)
		}
	}

	msg = resolutionMessage(testMatch(models.ReportUnset, models.ReportLoss), res, "g1", "")
	if !strings.Contains(msg.Content, "Only <@222> reported") {
		t.Errorf("automatic message = %q", msg.Content)
	}
}

func TestResolutionMessageDisputed(t *testing.T) {
	res := &application.Resolution{MatchID: "1a2b3c4d", Applied: true, Status: models.MatchDisputed}

	msg := resolutionMessage(testMatch(models.ReportWin, models.ReportWin), res, "g1", "999")
	if !strings.Contains(msg.Content, "<@&999>") {
		t.Errorf("content = %q, want admin role mention", msg.Content)
	}
	if msg.AllowedMentions == nil || len(msg.AllowedMentions.Roles) != 1 {
		t.Errorf("allowed mentions = %+v", msg.AllowedMentions)
	}
	if len(msg.Components) != 1 {
		t.Fatalf("components = %+v", msg.Components)
	}
	row := msg.Components[0].(discordgo.ActionsRow)
	btn := row.Components[0].(discordgo.Button)
	if btn.URL != "https://discord.com/channels/g1/c1/m1" {
		t.Errorf("jump url = %q", btn.URL)
	}

	msg = resolutionMessage(testMatch(models.ReportLoss, models.ReportLoss), res, "g1", "")
	if !strings.Contains(msg.Content, "An **admin**") || msg.AllowedMentions != nil {
		t.Errorf("without role: %+v", msg)
	}
}

func TestResolutionMessageOtherStatuses(t *testing.T) {
	tests := map[models.MatchStatus]string{
		models.MatchTimedOut:            "Neither player reported in time",
		models.MatchErrorPlayerNotFound: "a player left the server",
	}
	for status, want := range tests {
		res := &application.Resolution{MatchID: "1a2b3c4d", Applied: true, Status: status}
		msg := resolutionMessage(testMatch(models.ReportUnset, models.ReportUnset), res, "g1", "")
		if !strings.Contains(msg.Content, want) {
			t.Errorf("%s: content = %q", status, msg.Content)
		}
	}
}

func TestHumanDuration(t *testing.T) {
	tests := map[time.Duration]string{
		time.Hour:         "1 hour",
		2 * time.Hour:     "2 hours",
		240 * time.Second: "4 minutes",
		time.Minute:       "1 minute",
		90 * time.Second:  "1m30s",
	}
	for in, want := range tests {
		if got := humanDuration(in); got != want {
			t.Errorf("humanDuration(%s) = %q, want %q", in, got, want)
		}
	}
}

func TestRejectionText(t *testing.T) {
	wrapped := fmt.Errorf("submit: %w", application.ErrDuplicateReport)
	if text, ok := rejectionText(wrapped); !ok || !strings.Contains(text, "already reported") {
		t.Errorf("rejectionText(duplicate) = %q, %v", text, ok)
	}
	if text, ok := rejectionText(errors.New("db down")); ok || text != msgUnexpected {
		t.Errorf("rejectionText(unexpected) = %q, %v", text, ok)
	}
}

func TestIsUnknownMember(t *testing.T) {
	byCode := &discordgo.RESTError{Message: &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownMember}}
	byStatus := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound}}
	other := &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusForbidden}}

	if !isUnknownMember(fmt.Errorf("wrap: %w", byCode)) {
		t.Error("unknown member code not detected")
	}
	if !isUnknownMember(byStatus) {
		t.Error("404 not detected")
	}
	if isUnknownMember(other) || isUnknownMember(errors.New("timeout")) {
		t.Error("false positive")
	}
}
