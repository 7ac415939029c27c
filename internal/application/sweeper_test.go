package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"elobot/internal/models"

	"github.com/jonboulle/clockwork"
)

type flakyMatches struct {
	MatchService
	failOn string
}

func (f flakyMatches) Reconcile(ctx context.Context, matchID string, trigger Trigger) (*Resolution, error) {
	if matchID == f.failOn {
		return nil, errors.New("boom")
	}
	return f.MatchService.Reconcile(ctx, matchID, trigger)
}

func TestSweepResolvesStaleMatches(t *testing.T) {
	store := newTestStore(t)
	clock := clockwork.NewFakeClockAt(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC))
	matches := NewMatchServiceImpl(store, newFakeDirectory(), &fakeNotifier{}, clock, nil, testLogger{t})
	sweeper := NewSweeper(store, matches, "arena", Timing{ReportWindow: time.Hour}, clock, nil, testLogger{t})
	ctx := context.Background()

	seedMatch(t, store, "won", clock.Now().Add(-2*time.Hour), 1000, 1000)
	seedMatch(t, store, "silent", clock.Now().Add(-90*time.Minute), 1000, 1000)
	seedMatch(t, store, "fresh", clock.Now().Add(-10*time.Minute), 1000, 1000)
	if _, err := store.SetReport(ctx, "won", "p1", models.ReportWin); err != nil {
		t.Fatal(err)
	}

	report, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if report != (SweepReport{Found: 2, Resolved: 2}) {
		t.Errorf("report = %+v", report)
	}

	if got := mustStatus(t, store, "won"); got != models.MatchConfirmed {
		t.Errorf("won: status %s", got)
	}
	if got := mustStatus(t, store, "silent"); got != models.MatchTimedOut {
		t.Errorf("silent: status %s", got)
	}
	if got := mustStatus(t, store, "fresh"); got != models.MatchPending {
		t.Errorf("fresh: status %s", got)
	}
	p1, p2 := mustPlayer(t, store, "p1"), mustPlayer(t, store, "p2")
	if p1.Rating != 1015 || p2.Rating != 985 || p1.GamesPlayed != 1 || p2.GamesPlayed != 1 {
		t.Errorf("p1=%+v p2=%+v", p1, p2)
	}
}

func TestSweepSkipsOtherVenuesAndIsolatesFailures(t *testing.T) {
	store := newTestStore(t)
	clock := clockwork.NewFakeClock()
	matches := NewMatchServiceImpl(store, newFakeDirectory(), nil, clock, nil, testLogger{t})
	sweeper := NewSweeper(store, flakyMatches{MatchService: matches, failOn: "bad"}, "arena", Timing{}, clock, nil, testLogger{t})
	ctx := context.Background()

	old := clock.Now().Add(-3 * time.Hour)
	seedMatch(t, store, "bad", old, 1000, 1000)
	seedMatch(t, store, "good", old.Add(time.Minute), 1000, 1000)
	elsewhere := &models.Match{
		ID:           "elsewhere",
		Player1ID:    "p1",
		Player2ID:    "p2",
		Announcement: models.AnnouncementRef{ChannelID: "lobby", MessageID: "x"},
		CreatedAt:    old,
	}
	if err := store.CreateMatch(ctx, elsewhere); err != nil {
		t.Fatal(err)
	}

	report, err := sweeper.Sweep(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if report != (SweepReport{Found: 3, Resolved: 1, Skipped: 1, Failed: 1}) {
		t.Errorf("report = %+v", report)
	}
	if got := mustStatus(t, store, "good"); got != models.MatchTimedOut {
		t.Errorf("good: status %s", got)
	}
	if got := mustStatus(t, store, "elsewhere"); got != models.MatchPending {
		t.Errorf("elsewhere: status %s", got)
	}
}
