package application

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
)

type fakeSheets struct {
	created  int
	shared   []string
	cleared  int
	lastID   string
	lastRows [][]interface{}
}

func (f *fakeSheets) CreateSpreadsheet(_ context.Context, title string) (string, string, error) {
	f.created++
	return "sheet-1", "https://example.invalid/sheet-1", nil
}

func (f *fakeSheets) AddPermission(_ context.Context, _, email, _ string) error {
	f.shared = append(f.shared, email)
	return nil
}

func (f *fakeSheets) ClearRange(_ context.Context, _, _ string) error {
	f.cleared++
	return nil
}

func (f *fakeSheets) UpdateValues(_ context.Context, id, _ string, values [][]interface{}) error {
	f.lastID = id
	f.lastRows = values
	return nil
}

func TestLeaderboardWorkbook(t *testing.T) {
	store := newTestStore(t)
	seedMatch(t, store, "m1", time.Now(), 1200, 950)
	svc := NewExportServiceImpl(store, nil, SheetsTarget{}, testLogger{t})

	data, err := svc.LeaderboardWorkbook(context.Background())
	if err != nil {
		t.Fatalf("LeaderboardWorkbook: %v", err)
	}
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(excelSheetName)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 {
		t.Fatalf("rows = %v", rows)
	}
	if rows[0][3] != "Rating" || rows[1][1] != "p1" || rows[1][3] != "1200" || rows[2][1] != "p2" {
		t.Errorf("rows = %v", rows)
	}
}

func TestSyncLeaderboardSheet(t *testing.T) {
	store := newTestStore(t)
	seedMatch(t, store, "m1", time.Now(), 1000, 1000)
	ctx := context.Background()

	disabled := NewExportServiceImpl(store, nil, SheetsTarget{}, testLogger{t})
	if _, err := disabled.SyncLeaderboardSheet(ctx); !errors.Is(err, ErrSheetsDisabled) {
		t.Errorf("without client: err = %v", err)
	}

	sheets := &fakeSheets{}
	svc := NewExportServiceImpl(store, sheets, SheetsTarget{OwnerEmail: "owner@example.com"}, testLogger{t})
	for i := 0; i < 2; i++ {
		url, err := svc.SyncLeaderboardSheet(ctx)
		if err != nil {
			t.Fatalf("sync %d: %v", i, err)
		}
		if url != "https://docs.google.com/spreadsheets/d/sheet-1" {
			t.Errorf("url = %q", url)
		}
	}
	if sheets.created != 1 || len(sheets.shared) != 1 || sheets.cleared != 2 {
		t.Errorf("fake = %+v", sheets)
	}
	if sheets.lastID != "sheet-1" || len(sheets.lastRows) != 3 {
		t.Errorf("rows = %v", sheets.lastRows)
	}
}
