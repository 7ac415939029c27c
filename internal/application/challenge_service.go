package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"elobot/internal/metrics"
	"elobot/internal/models"
	"elobot/internal/repository"

	"github.com/jonboulle/clockwork"
)

type IssueRequest struct {
	Challenger    Member
	Opponent      Member
	OpponentIsBot bool
}

type pendingChallenge struct {
	mu    sync.Mutex
	c     models.Challenge
	timer clockwork.Timer
}

// ChallengeServiceImpl keeps open challenges in memory. Each challenge has its
// own lock, so accept, decline and expiry of the same challenge are
// serialized and exactly one of them wins.
type ChallengeServiceImpl struct {
	repo     repository.Store
	notifier Notifier
	timeout  time.Duration
	clock    clockwork.Clock
	metrics  *metrics.Metrics
	logger   Logger

	newMatchID func() string

	mu         sync.Mutex
	challenges map[string]*pendingChallenge
}

func NewChallengeServiceImpl(repo repository.Store, notifier Notifier, timeout time.Duration, clock clockwork.Clock, m *metrics.Metrics, logger Logger) *ChallengeServiceImpl {
	if timeout <= 0 {
		timeout = defaultChallengeTimeout
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &ChallengeServiceImpl{
		repo:       repo,
		notifier:   notifier,
		timeout:    timeout,
		clock:      clock,
		metrics:    m,
		logger:     logger,
		newMatchID: newMatchID,
		challenges: make(map[string]*pendingChallenge),
	}
}

func (s *ChallengeServiceImpl) Issue(ctx context.Context, req IssueRequest) (*models.Challenge, error) {
	if req.OpponentIsBot || req.Opponent.IsBot || req.Challenger.ID == req.Opponent.ID {
		return nil, ErrInvalidOpponent
	}

	for _, m := range []Member{req.Challenger, req.Opponent} {
		if err := s.repo.UpsertPlayerIfAbsent(ctx, m.ID, m.DisplayName); err != nil {
			return nil, fmt.Errorf("failed to register player %s: %w", m.ID, err)
		}
	}

	now := s.clock.Now()
	p := &pendingChallenge{c: models.Challenge{
		ID:             newChallengeID(),
		ChallengerID:   req.Challenger.ID,
		ChallengerName: req.Challenger.DisplayName,
		OpponentID:     req.Opponent.ID,
		OpponentName:   req.Opponent.DisplayName,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.timeout),
		State:          models.ChallengeIssued,
	}}

	p.mu.Lock()
	s.mu.Lock()
	s.challenges[p.c.ID] = p
	open := len(s.challenges)
	s.mu.Unlock()
	p.timer = s.clock.AfterFunc(s.timeout, func() { s.expire(p.c.ID) })
	c := p.c
	p.mu.Unlock()

	s.metrics.SetOpenChallenges(open)
	s.logger.Info("Challenge %s issued: %s vs %s", c.ID, c.ChallengerID, c.OpponentID)
	return &c, nil
}

func (s *ChallengeServiceImpl) Bind(challengeID string, ref models.AnnouncementRef) error {
	p := s.lookup(challengeID)
	if p == nil {
		return ErrChallengeNotActionable
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.c.State != models.ChallengeIssued {
		return ErrChallengeNotActionable
	}
	p.c.Announcement = ref
	return nil
}

// Accept turns an issued challenge into a pending match. The match record is
// created before the call returns.
func (s *ChallengeServiceImpl) Accept(ctx context.Context, challengeID, actorID string) (*models.Match, error) {
	p := s.lookup(challengeID)
	if p == nil {
		return nil, ErrChallengeNotActionable
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if actorID != p.c.OpponentID {
		return nil, ErrNotChallengedPlayer
	}
	if p.c.State != models.ChallengeIssued {
		return nil, ErrChallengeNotActionable
	}

	match := &models.Match{
		ID:           s.newMatchID(),
		Player1ID:    p.c.ChallengerID,
		Player2ID:    p.c.OpponentID,
		Announcement: p.c.Announcement,
		CreatedAt:    s.clock.Now().UTC(),
		Status:       models.MatchPending,
	}
	if err := s.repo.CreateMatch(ctx, match); err != nil {
		return nil, fmt.Errorf("failed to create match for challenge %s: %w", challengeID, err)
	}

	p.timer.Stop()
	s.finish(p, models.ChallengeAccepted)
	s.logger.Info("Challenge %s accepted, match %s created", challengeID, match.ID)
	return match, nil
}

func (s *ChallengeServiceImpl) Decline(ctx context.Context, challengeID, actorID string) (*models.Challenge, error) {
	p := s.lookup(challengeID)
	if p == nil {
		return nil, ErrChallengeNotActionable
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if actorID != p.c.OpponentID {
		return nil, ErrNotChallengedPlayer
	}
	if p.c.State != models.ChallengeIssued {
		return nil, ErrChallengeNotActionable
	}

	p.timer.Stop()
	s.finish(p, models.ChallengeDeclined)
	s.logger.Info("Challenge %s declined by %s", challengeID, actorID)
	c := p.c
	return &c, nil
}

func (s *ChallengeServiceImpl) expire(challengeID string) {
	p := s.lookup(challengeID)
	if p == nil {
		return
	}
	p.mu.Lock()
	if p.c.State != models.ChallengeIssued {
		p.mu.Unlock()
		return
	}
	s.finish(p, models.ChallengeExpired)
	c := p.c
	p.mu.Unlock()

	s.logger.Info("Challenge %s expired", challengeID)
	if s.notifier == nil {
		return
	}
	if err := s.notifier.ChallengeExpired(context.Background(), &c); err != nil {
		s.logger.Warn("Failed to mark challenge %s as expired: %v", challengeID, err)
	}
}

// finish must be called with p.mu held.
func (s *ChallengeServiceImpl) finish(p *pendingChallenge, state models.ChallengeState) {
	p.c.State = state
	s.mu.Lock()
	delete(s.challenges, p.c.ID)
	open := len(s.challenges)
	s.mu.Unlock()
	s.metrics.ChallengeFinished(string(state))
	s.metrics.SetOpenChallenges(open)
}

func (s *ChallengeServiceImpl) lookup(id string) *pendingChallenge {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.challenges[id]
}

// Pending returns the number of challenges still waiting for an answer.
func (s *ChallengeServiceImpl) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.challenges)
}

// Close stops every pending timer. Open challenges are dropped.
func (s *ChallengeServiceImpl) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, p := range s.challenges {
		p.timer.Stop()
		delete(s.challenges, id)
	}
}
