package application

import (
	"context"
	"errors"
	"fmt"

	"elobot/internal/metrics"
	"elobot/internal/models"
	"elobot/internal/rating"
	"elobot/internal/repository"

	"github.com/jonboulle/clockwork"
)

type MatchServiceImpl struct {
	repo     repository.Store
	dir      Directory
	notifier Notifier
	clock    clockwork.Clock
	metrics  *metrics.Metrics
	logger   Logger
}

func NewMatchServiceImpl(repo repository.Store, dir Directory, notifier Notifier, clock clockwork.Clock, m *metrics.Metrics, logger Logger) *MatchServiceImpl {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MatchServiceImpl{
		repo:     repo,
		dir:      dir,
		notifier: notifier,
		clock:    clock,
		metrics:  m,
		logger:   logger,
	}
}

func (s *MatchServiceImpl) GetMatch(ctx context.Context, matchID string) (*models.Match, error) {
	match, err := s.repo.GetMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to load match %s: %w", matchID, err)
	}
	if match == nil {
		return nil, ErrUnknownMatch
	}
	return match, nil
}

// SubmitReport records one participant's claim. When the claim fills the
// second slot the match is reconciled before returning.
func (s *MatchServiceImpl) SubmitReport(ctx context.Context, matchID, playerID string, report models.Report) (*ReportAck, error) {
	ack, err := s.submitReport(ctx, matchID, playerID, report)
	if err != nil {
		s.metrics.Report(rejectionLabel(err))
		return nil, err
	}
	s.metrics.Report(string(report))
	return ack, nil
}

func (s *MatchServiceImpl) submitReport(ctx context.Context, matchID, playerID string, report models.Report) (*ReportAck, error) {
	if !report.Valid() {
		return nil, ErrInvalidReport
	}

	match, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != models.MatchPending {
		return nil, ErrNotPending
	}
	if !match.IsParticipant(playerID) {
		return nil, ErrNotParticipant
	}
	if match.ReportOf(playerID).IsSet() {
		return nil, ErrDuplicateReport
	}

	written, err := s.repo.SetReport(ctx, matchID, playerID, report)
	switch {
	case errors.Is(err, repository.ErrStatusConflict):
		return nil, ErrNotPending
	case errors.Is(err, repository.ErrNotParticipant):
		return nil, ErrNotParticipant
	case errors.Is(err, repository.ErrNotFound):
		return nil, ErrUnknownMatch
	case err != nil:
		return nil, fmt.Errorf("failed to record report on match %s: %w", matchID, err)
	case !written:
		return nil, ErrDuplicateReport
	}
	s.logger.Info("Player %s reported %s on match %s", playerID, report, matchID)

	match, err = s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	ack := &ReportAck{Match: match, Report: report}
	if !match.BothReported() || match.Status != models.MatchPending {
		return ack, nil
	}

	res, err := s.Reconcile(ctx, matchID, TriggerReport)
	if err != nil {
		// The report itself is stored; the sweep retries the reconciliation.
		s.logger.Error("Failed to reconcile match %s after second report: %v", matchID, err)
		return ack, nil
	}
	ack.Resolution = res
	if res.Applied {
		if m, err := s.GetMatch(ctx, matchID); err == nil {
			ack.Match = m
		}
	}
	return ack, nil
}

// Reconcile moves a pending match to its terminal state based on the report
// slots. Calling it on a non-pending match is a no-op. The write is guarded on
// the reports the verdict was taken from; if a report lands in between, the
// match is read again and decided anew.
func (s *MatchServiceImpl) Reconcile(ctx context.Context, matchID string, trigger Trigger) (*Resolution, error) {
	for attempt := 0; attempt < reconcileAttempts; attempt++ {
		match, err := s.GetMatch(ctx, matchID)
		if err != nil {
			return nil, err
		}
		res := &Resolution{MatchID: matchID, Status: match.Status, Trigger: trigger}
		if match.Status != models.MatchPending {
			return res, nil
		}
		res, err = s.reconcileOnce(ctx, match, res)
		if err != nil || res.Applied {
			return res, err
		}
		s.logger.Debug("Match %s changed while reconciling (attempt %d)", matchID, attempt+1)
	}
	return nil, fmt.Errorf("failed to reconcile match %s: %w", matchID, ErrReconcileContended)
}

func (s *MatchServiceImpl) reconcileOnce(ctx context.Context, match *models.Match, res *Resolution) (*Resolution, error) {
	guard := repository.ReportGuard(match, pendingOnly...)
	verdict := Decide(match.Player1Report, match.Player2Report)
	switch verdict.Outcome {
	case OutcomeDispute:
		return s.transition(ctx, match, res, guard, models.MatchDisputed)
	case OutcomeTimeout:
		return s.transition(ctx, match, res, guard, models.MatchTimedOut)
	}

	winner, loser := match.Player2ID, match.Player1ID
	if verdict.Player1Wins {
		winner, loser = match.Player1ID, match.Player2ID
	}
	return s.confirm(ctx, match, res, winner, loser, guard)
}

// ForceResolve confirms a pending or disputed match with the declared
// winner regardless of the report slots.
func (s *MatchServiceImpl) ForceResolve(ctx context.Context, matchID, winnerID, requesterID string) (*Resolution, error) {
	match, err := s.GetMatch(ctx, matchID)
	if err != nil {
		return nil, err
	}
	if match.Status != models.MatchPending && match.Status != models.MatchDisputed {
		return nil, ErrAlreadyResolved
	}
	if !match.IsParticipant(winnerID) {
		return nil, ErrNotParticipant
	}

	s.logger.Info("Admin %s force-resolving match %s with winner %s", requesterID, matchID, winnerID)
	res := &Resolution{MatchID: matchID, Status: match.Status, Trigger: TriggerAdmin}
	res, err = s.confirm(ctx, match, res, winnerID, match.Opponent(winnerID), repository.StatusGuard(pendingOrDisputed...))
	if err != nil {
		return nil, err
	}
	if !res.Applied {
		return nil, ErrAlreadyResolved
	}
	return res, nil
}

func (s *MatchServiceImpl) confirm(ctx context.Context, match *models.Match, res *Resolution, winnerID, loserID string, guard repository.Guard) (*Resolution, error) {
	for _, id := range []string{winnerID, loserID} {
		if _, err := s.dir.Member(ctx, id); err != nil {
			if errors.Is(err, ErrMemberNotFound) {
				s.logger.Warn("Match %s: player %s left the server", match.ID, id)
				res.MissingPlayerID = id
				return s.transition(ctx, match, res, guard, models.MatchErrorPlayerNotFound)
			}
			return nil, fmt.Errorf("failed to look up member %s: %w", id, err)
		}
	}

	winner, err := s.repo.GetPlayer(ctx, winnerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load player %s: %w", winnerID, err)
	}
	loser, err := s.repo.GetPlayer(ctx, loserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load player %s: %w", loserID, err)
	}
	if winner == nil || loser == nil {
		res.MissingPlayerID = winnerID
		if loser == nil {
			res.MissingPlayerID = loserID
		}
		s.logger.Warn("Match %s: no player record for %s", match.ID, res.MissingPlayerID)
		return s.transition(ctx, match, res, guard, models.MatchErrorPlayerNotFound)
	}

	newWinner, newLoser := rating.Update(winner.Rating, loser.Rating)
	applied, err := s.repo.ConfirmMatch(ctx, match.ID, guard, repository.Result{
		WinnerID:     winnerID,
		LoserID:      loserID,
		WinnerRating: newWinner,
		LoserRating:  newLoser,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to confirm match %s: %w", match.ID, err)
	}
	if !applied {
		s.logger.Debug("Match %s changed before it could be confirmed", match.ID)
		return res, nil
	}

	res.Applied = true
	res.Status = models.MatchConfirmed
	res.WinnerID, res.LoserID = winnerID, loserID
	res.WinnerOldRating, res.WinnerNewRating = winner.Rating, newWinner
	res.LoserOldRating, res.LoserNewRating = loser.Rating, newLoser
	s.logger.Info("Match %s confirmed: %s %d -> %d, %s %d -> %d", match.ID,
		winnerID, winner.Rating, newWinner, loserID, loser.Rating, newLoser)
	s.afterResolution(ctx, match, res)
	return res, nil
}

func (s *MatchServiceImpl) transition(ctx context.Context, match *models.Match, res *Resolution, guard repository.Guard, next models.MatchStatus) (*Resolution, error) {
	swapped, err := s.repo.CompareAndSetStatus(ctx, match.ID, guard, next)
	if err != nil {
		return nil, fmt.Errorf("failed to set match %s to %s: %w", match.ID, next, err)
	}
	if !swapped {
		s.logger.Debug("Match %s changed before it could become %s", match.ID, next)
		return res, nil
	}
	res.Applied = true
	res.Status = next
	s.logger.Info("Match %s is now %s", match.ID, next)
	s.afterResolution(ctx, match, res)
	return res, nil
}

func (s *MatchServiceImpl) afterResolution(ctx context.Context, match *models.Match, res *Resolution) {
	s.metrics.Resolved(string(res.Status), string(res.Trigger))
	if s.notifier == nil {
		return
	}
	if err := s.notifier.MatchResolved(ctx, match, res); err != nil {
		s.logger.Warn("Failed to announce resolution of match %s: %v", match.ID, err)
	}
	if match.Announcement.MessageID == "" {
		return
	}
	if err := s.notifier.DisableReporting(ctx, match.Announcement); err != nil {
		s.logger.Warn("Failed to disable reporting for match %s: %v", match.ID, err)
	}
}

func (s *MatchServiceImpl) PlayerStats(ctx context.Context, playerID string) (*models.Player, error) {
	player, err := s.repo.GetPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load player %s: %w", playerID, err)
	}
	return player, nil
}

func (s *MatchServiceImpl) Leaderboard(ctx context.Context, limit int) ([]models.Player, error) {
	players, err := s.repo.ListTopPlayers(ctx, clampLeaderboard(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to load leaderboard: %w", err)
	}
	return players, nil
}

func (s *MatchServiceImpl) PendingMatches(ctx context.Context, playerID string) ([]models.Match, error) {
	matches, err := s.repo.ListPendingMatchesFor(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pending matches for %s: %w", playerID, err)
	}
	return matches, nil
}
