package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"elobot/internal/models"
	"elobot/internal/repository"

	"github.com/xuri/excelize/v2"
)

var ErrSheetsDisabled = errors.New("google sheets sync is not configured")

// SheetsClient is the part of the spreadsheet API the leaderboard sync uses.
type SheetsClient interface {
	CreateSpreadsheet(ctx context.Context, title string) (spreadsheetID, url string, err error)
	AddPermission(ctx context.Context, spreadsheetID, email, role string) error
	ClearRange(ctx context.Context, spreadsheetID, rangeStr string) error
	UpdateValues(ctx context.Context, spreadsheetID, rangeStr string, values [][]interface{}) error
}

// SheetsTarget names the spreadsheet to publish into. An empty
// SpreadsheetID creates one on the first sync.
type SheetsTarget struct {
	SpreadsheetID string
	OwnerEmail    string
}

var leaderboardHeaders = []string{"Rank", "ID", "Player", "Rating", "Games", "Wins", "Losses", "WinRate %"}

type ExportServiceImpl struct {
	repo   repository.Store
	sheets SheetsClient
	logger Logger

	mu     sync.Mutex
	target SheetsTarget
}

func NewExportServiceImpl(repo repository.Store, sheets SheetsClient, target SheetsTarget, logger Logger) *ExportServiceImpl {
	return &ExportServiceImpl{
		repo:   repo,
		sheets: sheets,
		target: target,
		logger: logger,
	}
}

func (s *ExportServiceImpl) rows(ctx context.Context) ([][]interface{}, error) {
	players, err := s.repo.ListTopPlayers(ctx, exportLeaderboardSize)
	if err != nil {
		return nil, fmt.Errorf("failed to load players: %w", err)
	}
	rows := make([][]interface{}, 0, len(players)+1)
	header := make([]interface{}, len(leaderboardHeaders))
	for i, h := range leaderboardHeaders {
		header[i] = h
	}
	rows = append(rows, header)
	for i, p := range players {
		rows = append(rows, leaderboardRow(i+1, p))
	}
	return rows, nil
}

func leaderboardRow(rank int, p models.Player) []interface{} {
	return []interface{}{
		rank,
		p.ID,
		p.Name,
		p.Rating,
		p.GamesPlayed,
		p.Wins,
		p.Losses,
		fmt.Sprintf("%.1f%%", p.WinRate()),
	}
}

// LeaderboardWorkbook renders the full leaderboard as an xlsx file.
func (s *ExportServiceImpl) LeaderboardWorkbook(ctx context.Context) ([]byte, error) {
	rows, err := s.rows(ctx)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", excelSheetName); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	for r, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, r+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(excelSheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", r+1, err)
		}
	}

	_ = f.SetColWidth(excelSheetName, "A", "A", 8)
	_ = f.SetColWidth(excelSheetName, "B", "C", 22)
	_ = f.SetColWidth(excelSheetName, "D", "H", 12)
	_ = f.SetPanes(excelSheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"})

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to render workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// SyncLeaderboardSheet overwrites the spreadsheet with the current standings
// and returns its URL.
func (s *ExportServiceImpl) SyncLeaderboardSheet(ctx context.Context) (string, error) {
	if s.sheets == nil {
		return "", ErrSheetsDisabled
	}
	rows, err := s.rows(ctx)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureSpreadsheet(ctx); err != nil {
		return "", err
	}
	if err := s.sheets.ClearRange(ctx, s.target.SpreadsheetID, "A1:Z"); err != nil {
		s.logger.Warn("Failed to clear leaderboard sheet: %v", err)
	}
	if err := s.sheets.UpdateValues(ctx, s.target.SpreadsheetID, "A1", rows); err != nil {
		return "", fmt.Errorf("failed to update leaderboard sheet: %w", err)
	}
	s.logger.Info("Leaderboard synced to spreadsheet %s (%d players)", s.target.SpreadsheetID, len(rows)-1)
	return spreadsheetURL(s.target.SpreadsheetID), nil
}

func (s *ExportServiceImpl) ensureSpreadsheet(ctx context.Context) error {
	if s.target.SpreadsheetID != "" {
		return nil
	}
	id, _, err := s.sheets.CreateSpreadsheet(ctx, sheetTitle)
	if err != nil {
		return fmt.Errorf("failed to create spreadsheet: %w", err)
	}
	s.target.SpreadsheetID = id
	if s.target.OwnerEmail != "" {
		if err := s.sheets.AddPermission(ctx, id, s.target.OwnerEmail, "writer"); err != nil {
			s.logger.Warn("Failed to share spreadsheet %s with %s: %v", id, s.target.OwnerEmail, err)
		}
	}
	return nil
}

func spreadsheetURL(id string) string {
	return fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s", id)
}
