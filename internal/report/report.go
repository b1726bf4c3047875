package report

import (
	"fmt"
	"strings"
	"time"

	"time-tracker-bot/internal/sheets"
)

const (
	header       = "📊 Отчёт за сегодня:"
	emptyMessage = "❗️ Сегодня активностей не найдено."
)

// Daily renders the report for the day of now. Rows are matched by the
// date prefix of their start-time cell; anything malformed simply never
// matches and is left out.
func Daily(rows []sheets.Row, now time.Time) string {
	today := now.Format("2006-01-02")
	var lines []string
	for _, r := range rows {
		if strings.HasPrefix(r.StartTime, today) {
			lines = append(lines, fmt.Sprintf("- %s (%s): %s", r.ActivityName, r.Category, r.Duration))
		}
	}
	if len(lines) == 0 {
		return emptyMessage
	}
	return header + "\n" + strings.Join(lines, "\n")
}
