package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"elobot/internal/models"

	"github.com/lib/pq"
)

type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const matchColumns = `match_id, player1_id, player2_id, channel_id, message_id, created_at,
	player1_report, player2_report, status`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMatch(row rowScanner) (*models.Match, error) {
	var (
		m          models.Match
		p1, p2     sql.NullString
		ch, msg    sql.NullString
		statusText string
	)
	if err := row.Scan(&m.ID, &m.Player1ID, &m.Player2ID, &ch, &msg, &m.CreatedAt, &p1, &p2, &statusText); err != nil {
		return nil, err
	}
	m.Announcement = models.AnnouncementRef{ChannelID: ch.String, MessageID: msg.String}
	m.Player1Report = models.Report(p1.String)
	m.Player2Report = models.Report(p2.String)
	m.Status = models.MatchStatus(statusText)
	return &m, nil
}

func nullableReport(r models.Report) sql.NullString {
	return sql.NullString{String: string(r), Valid: r.IsSet()}
}

func statusArray(list []models.MatchStatus) any {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = string(s)
	}
	return pq.Array(out)
}

func (r *PostgresStore) GetPlayer(ctx context.Context, id string) (*models.Player, error) {
	var p models.Player
	err := r.db.QueryRowContext(ctx, `
		SELECT user_id, user_name, elo_rating, wins, losses, games_played
		FROM players WHERE user_id = $1`, id).
		Scan(&p.ID, &p.Name, &p.Rating, &p.Wins, &p.Losses, &p.GamesPlayed)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player %s: %w", id, err)
	}
	return &p, nil
}

func (r *PostgresStore) UpsertPlayerIfAbsent(ctx context.Context, id, name string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO players (user_id, user_name, elo_rating) VALUES ($1, $2, $3)
		ON CONFLICT (user_id) DO NOTHING`, id, name, models.DefaultRating)
	if err != nil {
		return fmt.Errorf("failed to ensure player exists: %w", err)
	}
	return nil
}

func (r *PostgresStore) UpdatePlayerRating(ctx context.Context, id string, newRating, wonDelta, lostDelta int) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE players
		SET elo_rating = $2, wins = wins + $3, losses = losses + $4,
		    games_played = games_played + $3 + $4, updated_at = NOW()
		WHERE user_id = $1`, id, newRating, wonDelta, lostDelta)
	if err != nil {
		return fmt.Errorf("failed to update player rating: %w", err)
	}
	return expectOneRow(res, id)
}

func (r *PostgresStore) ListTopPlayers(ctx context.Context, limit int) ([]models.Player, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT user_id, user_name, elo_rating, wins, losses, games_played
		FROM players ORDER BY elo_rating DESC, games_played DESC, user_id LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get leaderboard: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		var p models.Player
		if err := rows.Scan(&p.ID, &p.Name, &p.Rating, &p.Wins, &p.Losses, &p.GamesPlayed); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

func (r *PostgresStore) GetMatch(ctx context.Context, id string) (*models.Match, error) {
	m, err := scanMatch(r.db.QueryRowContext(ctx, "SELECT "+matchColumns+" FROM matches WHERE match_id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get match %s: %w", id, err)
	}
	return m, nil
}

func (r *PostgresStore) CreateMatch(ctx context.Context, m *models.Match) error {
	status := m.Status
	if status == "" {
		status = models.MatchPending
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO matches (match_id, player1_id, player2_id, channel_id, message_id, created_at,
		                     player1_report, player2_report, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		m.ID, m.Player1ID, m.Player2ID, m.Announcement.ChannelID, m.Announcement.MessageID, m.CreatedAt,
		nullableReport(m.Player1Report), nullableReport(m.Player2Report), string(status))
	if err != nil {
		return fmt.Errorf("failed to insert match: %w", err)
	}
	return nil
}

func (r *PostgresStore) SetReport(ctx context.Context, matchID, playerID string, report models.Report) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE matches SET
			player1_report = CASE WHEN player1_id = $2 THEN $3 ELSE player1_report END,
			player2_report = CASE WHEN player2_id = $2 THEN $3 ELSE player2_report END
		WHERE match_id = $1 AND status = 'pending'
		  AND ((player1_id = $2 AND player1_report IS NULL) OR (player2_id = $2 AND player2_report IS NULL))`,
		matchID, playerID, string(report))
	if err != nil {
		return false, fmt.Errorf("failed to set report: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 1 {
		return true, nil
	}

	// nothing written: find out why
	m, err := r.GetMatch(ctx, matchID)
	if err != nil {
		return false, err
	}
	switch {
	case m == nil:
		return false, ErrNotFound
	case !m.IsParticipant(playerID):
		return false, ErrNotParticipant
	case m.ReportOf(playerID).IsSet():
		return false, nil
	default:
		return false, ErrStatusConflict
	}
}

func (r *PostgresStore) SetStatus(ctx context.Context, matchID string, status models.MatchStatus) error {
	ok, err := r.CompareAndSetStatus(ctx, matchID, StatusGuard(models.MatchPending), status)
	if err != nil {
		return fmt.Errorf("failed to set match status: %w", err)
	}
	if ok {
		return nil
	}
	m, err := r.GetMatch(ctx, matchID)
	if err != nil {
		return err
	}
	if m == nil {
		return fmt.Errorf("%s: %w", matchID, ErrNotFound)
	}
	return ErrStatusConflict
}

// guardArgs returns the report guard parameters: a flag telling whether the
// slots are checked, then the expected player1 and player2 values.
func guardArgs(g Guard) (bool, sql.NullString, sql.NullString) {
	if g.Reports == nil {
		return false, sql.NullString{}, sql.NullString{}
	}
	return true, nullableReport(g.Reports.Player1), nullableReport(g.Reports.Player2)
}

func (r *PostgresStore) CompareAndSetStatus(ctx context.Context, matchID string, g Guard, next models.MatchStatus) (bool, error) {
	checkReports, want1, want2 := guardArgs(g)
	res, err := r.db.ExecContext(ctx, `
		UPDATE matches SET status = $2, resolved_at = NOW()
		WHERE match_id = $1 AND status = ANY($3)
		  AND (NOT $4 OR (player1_report IS NOT DISTINCT FROM $5 AND player2_report IS NOT DISTINCT FROM $6))`,
		matchID, string(next), statusArray(g.From), checkReports, want1, want2)
	if err != nil {
		return false, fmt.Errorf("failed to swap match status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return n == 1, nil
}

func (r *PostgresStore) ConfirmMatch(ctx context.Context, matchID string, g Guard, result Result) (ok bool, err error) {
	if err := validateResult(result); err != nil {
		return false, err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil || !ok {
			tx.Rollback()
		}
	}()

	checkReports, want1, want2 := guardArgs(g)
	res, err := tx.ExecContext(ctx, `
		UPDATE matches SET status = 'confirmed', resolved_at = NOW()
		WHERE match_id = $1 AND status = ANY($2)
		  AND $3 IN (player1_id, player2_id) AND $4 IN (player1_id, player2_id)
		  AND (NOT $5 OR (player1_report IS NOT DISTINCT FROM $6 AND player2_report IS NOT DISTINCT FROM $7))`,
		matchID, statusArray(g.From), result.WinnerID, result.LoserID, checkReports, want1, want2)
	if err != nil {
		return false, fmt.Errorf("failed to confirm match: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return false, nil
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE players SET elo_rating = $2, wins = wins + 1, games_played = games_played + 1, updated_at = NOW()
		WHERE user_id = $1`, result.WinnerID, result.WinnerRating)
	if err != nil {
		return false, fmt.Errorf("failed to update winner: %w", err)
	}
	if err = expectOneRow(res, result.WinnerID); err != nil {
		return false, err
	}

	res, err = tx.ExecContext(ctx, `
		UPDATE players SET elo_rating = $2, losses = losses + 1, games_played = games_played + 1, updated_at = NOW()
		WHERE user_id = $1`, result.LoserID, result.LoserRating)
	if err != nil {
		return false, fmt.Errorf("failed to update loser: %w", err)
	}
	if err = expectOneRow(res, result.LoserID); err != nil {
		return false, err
	}

	if err = tx.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return true, nil
}

func (r *PostgresStore) ListPendingMatchesFor(ctx context.Context, playerID string) ([]models.Match, error) {
	return r.queryMatches(ctx, "SELECT "+matchColumns+` FROM matches
		WHERE (player1_id = $1 OR player2_id = $1) AND status = 'pending'
		ORDER BY created_at DESC`, playerID)
}

func (r *PostgresStore) ListStaleMatches(ctx context.Context, cutoff time.Time) ([]models.Match, error) {
	return r.queryMatches(ctx, "SELECT "+matchColumns+` FROM matches
		WHERE status = 'pending' AND created_at < $1
		ORDER BY created_at`, cutoff)
}

func (r *PostgresStore) queryMatches(ctx context.Context, query string, args ...any) ([]models.Match, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches: %w", err)
	}
	defer rows.Close()

	var matches []models.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan match: %w", err)
		}
		matches = append(matches, *m)
	}
	return matches, rows.Err()
}

func (r *PostgresStore) Close() error {
	return r.db.Close()
}

func expectOneRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return nil
}
