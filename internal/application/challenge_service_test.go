package application

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"elobot/internal/models"

	"github.com/jonboulle/clockwork"
)

type challengeFixture struct {
	clock    *clockwork.FakeClock
	notifier *fakeNotifier
	svc      *ChallengeServiceImpl
	allocs   atomic.Int32
}

func newChallengeFixture(t *testing.T) *challengeFixture {
	t.Helper()
	f := &challengeFixture{
		clock:    clockwork.NewFakeClock(),
		notifier: &fakeNotifier{},
	}
	f.svc = NewChallengeServiceImpl(newTestStore(t), f.notifier, 240*time.Second, f.clock, nil, testLogger{t})
	f.svc.newMatchID = func() string {
		f.allocs.Add(1)
		return newMatchID()
	}
	t.Cleanup(f.svc.Close)
	return f
}

func (f *challengeFixture) issue(t *testing.T) *models.Challenge {
	t.Helper()
	c, err := f.svc.Issue(context.Background(), IssueRequest{
		Challenger: Member{ID: "alice", DisplayName: "Alice"},
		Opponent:   Member{ID: "bob", DisplayName: "Bob"},
	})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if err := f.svc.Bind(c.ID, models.AnnouncementRef{ChannelID: "arena", MessageID: "msg1"}); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	return c
}

func TestIssueRejectsInvalidOpponent(t *testing.T) {
	f := newChallengeFixture(t)
	ctx := context.Background()
	alice := Member{ID: "alice"}

	if _, err := f.svc.Issue(ctx, IssueRequest{Challenger: alice, Opponent: alice}); !errors.Is(err, ErrInvalidOpponent) {
		t.Errorf("self challenge: err = %v", err)
	}
	if _, err := f.svc.Issue(ctx, IssueRequest{Challenger: alice, Opponent: Member{ID: "bot"}, OpponentIsBot: true}); !errors.Is(err, ErrInvalidOpponent) {
		t.Errorf("bot challenge: err = %v", err)
	}
	if f.svc.Pending() != 0 {
		t.Errorf("Pending() = %d", f.svc.Pending())
	}
}

func TestAcceptCreatesPendingMatch(t *testing.T) {
	f := newChallengeFixture(t)
	ctx := context.Background()
	c := f.issue(t)

	if _, err := f.svc.Accept(ctx, c.ID, "alice"); !errors.Is(err, ErrNotChallengedPlayer) {
		t.Errorf("challenger accepting: err = %v", err)
	}

	m, err := f.svc.Accept(ctx, c.ID, "bob")
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if m.Player1ID != "alice" || m.Player2ID != "bob" || m.Status != models.MatchPending || len(m.ID) != matchIDLength {
		t.Errorf("match = %+v", m)
	}
	if m.Announcement.MessageID != "msg1" {
		t.Errorf("announcement = %+v", m.Announcement)
	}
	stored, err := f.svc.repo.GetMatch(ctx, m.ID)
	if err != nil || stored == nil {
		t.Fatalf("stored match = %v, %v", stored, err)
	}

	if _, err := f.svc.Decline(ctx, c.ID, "bob"); !errors.Is(err, ErrChallengeNotActionable) {
		t.Errorf("decline after accept: err = %v", err)
	}

	f.clock.Advance(5 * time.Minute)
	if expired, _, _ := f.notifier.counts(); expired != 0 {
		t.Errorf("accepted challenge expired")
	}
}

func TestDeclineCreatesNoMatch(t *testing.T) {
	f := newChallengeFixture(t)
	ctx := context.Background()
	c := f.issue(t)

	got, err := f.svc.Decline(ctx, c.ID, "bob")
	if err != nil {
		t.Fatalf("Decline: %v", err)
	}
	if got.State != models.ChallengeDeclined {
		t.Errorf("state = %s", got.State)
	}
	if f.allocs.Load() != 0 {
		t.Errorf("allocated %d match ids", f.allocs.Load())
	}
	if _, err := f.svc.Accept(ctx, c.ID, "bob"); !errors.Is(err, ErrChallengeNotActionable) {
		t.Errorf("accept after decline: err = %v", err)
	}
}

func TestUnansweredChallengeExpires(t *testing.T) {
	f := newChallengeFixture(t)
	c := f.issue(t)

	f.clock.Advance(239 * time.Second)
	if f.svc.Pending() != 1 {
		t.Fatalf("expired early")
	}
	f.clock.Advance(time.Second)
	waitFor(t, func() bool {
		expired, _, _ := f.notifier.counts()
		return expired == 1
	})

	if f.svc.Pending() != 0 {
		t.Errorf("Pending() = %d after expiry", f.svc.Pending())
	}
	if f.allocs.Load() != 0 {
		t.Errorf("expired challenge allocated %d match ids", f.allocs.Load())
	}
	if _, err := f.svc.Accept(context.Background(), c.ID, "bob"); !errors.Is(err, ErrChallengeNotActionable) {
		t.Errorf("accept after expiry: err = %v", err)
	}
}

func TestAcceptDeclineRaceHasOneWinner(t *testing.T) {
	f := newChallengeFixture(t)
	ctx := context.Background()
	c := f.issue(t)

	var (
		wg   sync.WaitGroup
		wins atomic.Int32
	)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(accept bool) {
			defer wg.Done()
			var err error
			if accept {
				_, err = f.svc.Accept(ctx, c.ID, "bob")
			} else {
				_, err = f.svc.Decline(ctx, c.ID, "bob")
			}
			switch {
			case err == nil:
				wins.Add(1)
			case !errors.Is(err, ErrChallengeNotActionable):
				t.Errorf("unexpected error: %v", err)
			}
		}(i%2 == 0)
	}
	wg.Wait()

	if wins.Load() != 1 {
		t.Errorf("%d transitions won, want 1", wins.Load())
	}
	if f.allocs.Load() > 1 {
		t.Errorf("allocated %d match ids", f.allocs.Load())
	}
}
