package application

import (
	"context"
	"sync"
	"testing"
	"time"

	"elobot/internal/models"
	"elobot/internal/repository"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type testLogger struct{ t *testing.T }

func (l testLogger) Error(format string, v ...interface{}) { l.t.Logf("ERROR "+format, v...) }
func (l testLogger) Warn(format string, v ...interface{})  { l.t.Logf("WARN "+format, v...) }
func (l testLogger) Info(format string, v ...interface{})  { l.t.Logf("INFO "+format, v...) }
func (l testLogger) Debug(format string, v ...interface{}) { l.t.Logf("DEBUG "+format, v...) }

func newTestStore(t *testing.T) *repository.RedisStore {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return repository.NewRedisStore(rdb)
}

type fakeDirectory struct {
	mu   sync.Mutex
	gone map[string]bool
}

func newFakeDirectory(gone ...string) *fakeDirectory {
	d := &fakeDirectory{gone: make(map[string]bool)}
	for _, id := range gone {
		d.gone[id] = true
	}
	return d
}

func (d *fakeDirectory) Member(_ context.Context, id string) (*Member, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.gone[id] {
		return nil, ErrMemberNotFound
	}
	return &Member{ID: id, DisplayName: "user-" + id, Mention: "<@" + id + ">"}, nil
}

type fakeNotifier struct {
	mu       sync.Mutex
	expired  []string
	resolved []*Resolution
	disabled []models.AnnouncementRef
	fail     error
}

func (n *fakeNotifier) ChallengeExpired(_ context.Context, c *models.Challenge) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.expired = append(n.expired, c.ID)
	return n.fail
}

func (n *fakeNotifier) MatchResolved(_ context.Context, _ *models.Match, r *Resolution) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.resolved = append(n.resolved, r)
	return n.fail
}

func (n *fakeNotifier) DisableReporting(_ context.Context, ref models.AnnouncementRef) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.disabled = append(n.disabled, ref)
	return n.fail
}

func (n *fakeNotifier) counts() (expired, resolved, disabled int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.expired), len(n.resolved), len(n.disabled)
}

// seedMatch stores a pending match between p1 and p2 with both players at
// the given ratings.
func seedMatch(t *testing.T, store repository.Store, id string, created time.Time, r1, r2 int) *models.Match {
	t.Helper()
	ctx := context.Background()
	for _, p := range []struct {
		id     string
		rating int
	}{{"p1", r1}, {"p2", r2}} {
		if err := store.UpsertPlayerIfAbsent(ctx, p.id, "name-"+p.id); err != nil {
			t.Fatalf("UpsertPlayerIfAbsent(%s): %v", p.id, err)
		}
		if err := store.UpdatePlayerRating(ctx, p.id, p.rating, 0, 0); err != nil {
			t.Fatalf("UpdatePlayerRating(%s): %v", p.id, err)
		}
	}
	m := &models.Match{
		ID:           id,
		Player1ID:    "p1",
		Player2ID:    "p2",
		Announcement: models.AnnouncementRef{ChannelID: "arena", MessageID: "msg-" + id},
		CreatedAt:    created,
		Status:       models.MatchPending,
	}
	if err := store.CreateMatch(context.Background(), m); err != nil {
		t.Fatalf("CreateMatch: %v", err)
	}
	return m
}

func mustPlayer(t *testing.T, store repository.Store, id string) *models.Player {
	t.Helper()
	p, err := store.GetPlayer(context.Background(), id)
	if err != nil || p == nil {
		t.Fatalf("GetPlayer(%s) = %v, %v", id, p, err)
	}
	return p
}

func mustStatus(t *testing.T, store repository.Store, id string) models.MatchStatus {
	t.Helper()
	m, err := store.GetMatch(context.Background(), id)
	if err != nil || m == nil {
		t.Fatalf("GetMatch(%s) = %v, %v", id, m, err)
	}
	return m.Status
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}
