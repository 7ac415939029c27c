package application

import (
	"context"
	"errors"

	"elobot/internal/metrics"
	"elobot/internal/models"
	"elobot/internal/repository"

	"github.com/jonboulle/clockwork"
)

type Logger interface {
	Error(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Info(format string, v ...interface{})
	Debug(format string, v ...interface{})
}

// Rejections returned by the core operations. None of them mutate state.
var (
	ErrUnknownMatch           = errors.New("unknown match")
	ErrNotPending             = errors.New("match is not pending")
	ErrNotParticipant         = errors.New("player is not a participant of this match")
	ErrDuplicateReport        = errors.New("result already reported for this match")
	ErrAlreadyResolved        = errors.New("match has already been resolved")
	ErrInvalidReport          = errors.New("report must be win or loss")
	ErrInvalidOpponent        = errors.New("cannot challenge yourself or a bot")
	ErrNotChallengedPlayer    = errors.New("only the challenged player can answer")
	ErrChallengeNotActionable = errors.New("challenge is no longer actionable")
)

// ErrReconcileContended is returned when a match kept changing under every
// reconciliation attempt. The match stays pending for the next sweep.
var ErrReconcileContended = errors.New("match kept changing while reconciling")

// ErrMemberNotFound is returned by a Directory when the user left the community.
var ErrMemberNotFound = errors.New("member not found")

type Member struct {
	ID          string
	DisplayName string
	Mention     string
	IsBot       bool
}

// Directory resolves community members on the chat platform.
type Directory interface {
	Member(ctx context.Context, userID string) (*Member, error)
}

// Notifier renders core events back onto the chat platform. Every call is
// best-effort from the core's point of view.
type Notifier interface {
	ChallengeExpired(ctx context.Context, c *models.Challenge) error
	MatchResolved(ctx context.Context, m *models.Match, r *Resolution) error
	DisableReporting(ctx context.Context, ref models.AnnouncementRef) error
}

type MatchService interface {
	SubmitReport(ctx context.Context, matchID, playerID string, report models.Report) (*ReportAck, error)
	Reconcile(ctx context.Context, matchID string, trigger Trigger) (*Resolution, error)
	ForceResolve(ctx context.Context, matchID, winnerID, requesterID string) (*Resolution, error)
	GetMatch(ctx context.Context, matchID string) (*models.Match, error)
	PlayerStats(ctx context.Context, playerID string) (*models.Player, error)
	Leaderboard(ctx context.Context, limit int) ([]models.Player, error)
	PendingMatches(ctx context.Context, playerID string) ([]models.Match, error)
}

type ChallengeService interface {
	Issue(ctx context.Context, req IssueRequest) (*models.Challenge, error)
	Bind(challengeID string, ref models.AnnouncementRef) error
	Accept(ctx context.Context, challengeID, actorID string) (*models.Match, error)
	Decline(ctx context.Context, challengeID, actorID string) (*models.Challenge, error)
	Pending() int
	Close()
}

type ExportService interface {
	LeaderboardWorkbook(ctx context.Context) ([]byte, error)
	SyncLeaderboardSheet(ctx context.Context) (string, error)
}

type Options struct {
	Timing  Timing
	Venue   string
	Sheets  SheetsTarget
	Clock   clockwork.Clock
	Metrics *metrics.Metrics
}

type Service struct {
	MatchService     MatchService
	ChallengeService ChallengeService
	ExportService    ExportService
	Sweeper          *Sweeper
}

func NewService(store repository.Store, dir Directory, notifier Notifier, sheets SheetsClient, opts Options, logger Logger) *Service {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	matches := NewMatchServiceImpl(store, dir, notifier, opts.Clock, opts.Metrics, logger)
	return &Service{
		MatchService:     matches,
		ChallengeService: NewChallengeServiceImpl(store, notifier, opts.Timing.ChallengeTimeout, opts.Clock, opts.Metrics, logger),
		ExportService:    NewExportServiceImpl(store, sheets, opts.Sheets, logger),
		Sweeper:          NewSweeper(store, matches, opts.Venue, opts.Timing, opts.Clock, opts.Metrics, logger),
	}
}
