package export

import (
	"bytes"
	"fmt"
	"time"

	"github.com/Spok95/school-board-bot/internal/announcements"
	"github.com/Spok95/school-board-bot/internal/models"
	"github.com/xuri/excelize/v2"
)

const AnnouncementsSheet = "Announcements"

var announcementsHeader = []string{"ID", "Date", "Title", "Audience", "Author ID", "Content"}

// AnnouncementsXLSX собирает книгу с одним листом: объявление на строку.
func AnnouncementsXLSX(list []models.Announcement, courses []models.Course, loc *time.Location) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", AnnouncementsSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetSheetRow(AnnouncementsSheet, "A1", &announcementsHeader); err != nil {
		return nil, fmt.Errorf("header: %w", err)
	}

	for i, a := range list {
		row := []any{
			a.ID,
			announcements.FormatDate(a.CreatedAt, loc),
			a.Title,
			announcements.Label(a, courses),
			a.TeacherID,
			a.Content,
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(AnnouncementsSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
	}

	if err := ApplyDefaultExcelFormatting(f, AnnouncementsSheet); err != nil {
		return nil, fmt.Errorf("format: %w", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write xlsx: %w", err)
	}
	return buf.Bytes(), nil
}
