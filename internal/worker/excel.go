package worker

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"sharilka/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

const ledgerSheet = "Бронирования"

var ledgerHeaders = []string{
	"ID", "Вещь", "Арендатор", "Начало", "Конец", "Статус", "Обновлено",
}

// BookingLedger maintains a bookings.xlsx file in the exports directory with
// one row per booking. Rows are upserted by booking id, so status changes
// rewrite the existing row instead of appending a new one.
type BookingLedger struct {
	mu     sync.Mutex
	path   string
	logger *zerolog.Logger
}

func NewBookingLedger(exportsPath string, logger *zerolog.Logger) *BookingLedger {
	return &BookingLedger{
		path:   filepath.Join(exportsPath, "bookings.xlsx"),
		logger: logger,
	}
}

func (l *BookingLedger) Path() string {
	return l.path
}

// RecordBooking upserts the booking row and saves the file.
func (l *BookingLedger) RecordBooking(booking *models.Booking) error {
	if booking == nil || booking.ID == 0 {
		return fmt.Errorf("booking is required")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	f, err := l.open()
	if err != nil {
		return err
	}
	defer f.Close()

	row, err := l.findRow(f, booking.ID)
	if err != nil {
		return err
	}

	values := []any{
		booking.ID,
		booking.ItemName,
		booking.BookerName,
		booking.Start.Format("02.01.2006 15:04"),
		booking.End.Format("02.01.2006 15:04"),
		booking.Status,
		booking.UpdatedAt.Format("02.01.2006 15:04"),
	}
	for i, v := range values {
		cell, _ := excelize.CoordinatesToCellName(i+1, row)
		if err := f.SetCellValue(ledgerSheet, cell, v); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
	}

	if err := f.SaveAs(l.path); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}
	l.logger.Debug().Int64("booking_id", booking.ID).Int("row", row).Msg("ledger row written")
	return nil
}

func (l *BookingLedger) open() (*excelize.File, error) {
	if _, err := os.Stat(l.path); err == nil {
		f, err := excelize.OpenFile(l.path)
		if err != nil {
			return nil, fmt.Errorf("open ledger: %w", err)
		}
		return f, nil
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return nil, fmt.Errorf("create export directory: %w", err)
	}

	f := excelize.NewFile()
	index, err := f.NewSheet(ledgerSheet)
	if err != nil {
		return nil, fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	_ = f.DeleteSheet("Sheet1")

	style, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for i, header := range ledgerHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(ledgerSheet, cell, header)
		_ = f.SetCellStyle(ledgerSheet, cell, cell, style)
	}
	_ = f.SetColWidth(ledgerSheet, "A", "A", 8)
	_ = f.SetColWidth(ledgerSheet, "B", "C", 25)
	_ = f.SetColWidth(ledgerSheet, "D", "G", 18)

	return f, nil
}

// findRow returns the row holding the booking id, or the first free row.
func (l *BookingLedger) findRow(f *excelize.File, bookingID int64) (int, error) {
	rows, err := f.GetRows(ledgerSheet)
	if err != nil {
		return 0, fmt.Errorf("read ledger rows: %w", err)
	}

	want := strconv.FormatInt(bookingID, 10)
	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) > 0 && row[0] == want {
			return i + 1, nil
		}
	}
	return len(rows) + 1, nil
}
