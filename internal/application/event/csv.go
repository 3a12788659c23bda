package event

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/eventease/portal/internal/domain"
)

var attendeeHeader = []string{"Name", "Email", "Registration Date", "Status", "Attended"}

// WriteAttendeesCSV writes one row per registration after a header row.
func WriteAttendeesCSV(w io.Writer, regs []domain.Registration) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(attendeeHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, r := range regs {
		date := ""
		if !r.RegistrationDate.IsZero() {
			date = r.RegistrationDate.Format("2006-01-02")
		}
		attended := "No"
		if r.Attended {
			attended = "Yes"
		}
		row := []string{cell(r.User.DisplayName()), cell(r.User.Email), date, cell(r.Status), attended}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row %d: %w", r.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// cell keeps spreadsheets from evaluating user-supplied text as a formula.
func cell(v string) string {
	if v != "" && strings.ContainsRune("=+-@\t\r", rune(v[0])) {
		return "'" + v
	}
	return v
}

// CSVFilename names the export after the event title.
func CSVFilename(ev *domain.Event) string {
	title := "event"
	if ev != nil && ev.Title != "" {
		title = ev.Title
	}
	return title + "-attendees.csv"
}
