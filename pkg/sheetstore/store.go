// Package sheetstore provides row-level access to the shared tabular
// workbook that backs the referral program. The workbook is owned by an
// external process (the studio operator edits it by hand), so the store
// makes no transactional guarantees across rows: every operation opens
// the file fresh, and appends are serialized only within this process.
package sheetstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/xuri/excelize/v2"
)

// ErrStoreUnavailable is returned when the backing workbook cannot be
// reached or written. Callers treat it as a retryable dependency failure.
var ErrStoreUnavailable = errors.New("spreadsheet store unavailable")

// Store defines tabular access operations
type Store interface {
	Rows(ctx context.Context, sheet string) ([][]string, error)
	AppendRow(ctx context.Context, sheet string, row []string) error
}

// Sheet describes one tab of the workbook
type Sheet struct {
	Name   string
	Header []string
}

// Workbook is a Store backed by an .xlsx file on disk
type Workbook struct {
	path string
	mu   sync.Mutex
}

// Open opens the workbook at path, creating it with the given sheets and
// header rows if it does not exist yet.
func Open(path string, sheets ...Sheet) (*Workbook, error) {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := createWorkbook(path, sheets); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return &Workbook{path: path}, nil
}

// Rows returns all rows of the named sheet, header row included
func (w *Workbook) Rows(ctx context.Context, sheet string) ([][]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return rows, nil
}

// AppendRow appends a row to the named sheet and saves the workbook
func (w *Workbook) AppendRow(ctx context.Context, sheet string, row []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	f, err := excelize.OpenFile(w.path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	cell, err := excelize.CoordinatesToCellName(1, len(rows)+1)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	if err := f.Save(); err != nil {
		return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
	}

	return nil
}

func createWorkbook(path string, sheets []Sheet) error {
	f := excelize.NewFile()
	defer f.Close()

	for _, s := range sheets {
		if _, err := f.NewSheet(s.Name); err != nil {
			return err
		}
		if len(s.Header) > 0 {
			header := make([]interface{}, len(s.Header))
			for i, h := range s.Header {
				header[i] = h
			}
			if err := f.SetSheetRow(s.Name, "A1", &header); err != nil {
				return err
			}
		}
	}

	if len(sheets) > 0 {
		if err := f.DeleteSheet("Sheet1"); err != nil {
			return err
		}
	}

	return f.SaveAs(path)
}
