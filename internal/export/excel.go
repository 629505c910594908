package export

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"glowup/internal/catalog"
	"glowup/internal/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Exporter writes the booking list to an Excel file for offline use.
type Exporter struct {
	path    string
	catalog *catalog.Catalog
	logger  *zerolog.Logger
}

func NewExporter(path string, cat *catalog.Catalog, logger *zerolog.Logger) *Exporter {
	return &Exporter{path: path, catalog: cat, logger: logger}
}

var columns = []string{"Customer", "Phone", "Service", "Artist", "Date", "Time", "Status", "Created", "Notes"}

// WriteBookings saves the given collection as an xlsx file and returns
// the file path.
func (e *Exporter) WriteBookings(bookings []models.Booking) (string, error) {
	if err := os.MkdirAll(e.path, 0o755); err != nil {
		return "", fmt.Errorf("create export directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Bookings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return "", fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font: &excelize.Font{Bold: true},
	})
	for col, title := range columns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheetName, cell, title)
		_ = f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for row, b := range bookings {
		values := []any{
			b.CustomerName,
			b.CustomerPhone,
			e.serviceName(b.ServiceID),
			e.artistName(b.ArtistID),
			b.Date,
			b.Time,
			b.Status,
			b.CreatedTime().Format("2006-01-02 15:04"),
			b.Notes,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "B", 22)
	_ = f.SetColWidth(sheetName, "C", "I", 18)
	_ = f.DeleteSheet("Sheet1")

	fileName := fmt.Sprintf("bookings_%s.xlsx", time.Now().Format("2006-01-02_150405"))
	filePath := filepath.Join(e.path, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("save export file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Int("bookings", len(bookings)).Msg("export file created")
	return filePath, nil
}

func (e *Exporter) serviceName(id string) string {
	if s, ok := e.catalog.ServiceByID(id); ok {
		return s.Name
	}
	return id
}

func (e *Exporter) artistName(id string) string {
	if a, ok := e.catalog.ArtistByID(id); ok {
		return a.Name
	}
	return id
}
