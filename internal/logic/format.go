package logic

import (
	"fmt"
	"time"
)

// WeekdayTable holds 7 weekday abbreviations indexed 0=Sunday..6=Saturday.
type WeekdayTable [7]string

var (
	// WeekdaysCatalan is the default table.
	WeekdaysCatalan = WeekdayTable{"Dmg", "Dll", "Dma", "Dme", "Djo", "Dve", "Dsa"}
	WeekdaysEnglish = WeekdayTable{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}
)

// unknownWeekday is shown for an out-of-range index. Valid calendar input never reaches it.
const unknownWeekday = "---"

// WeekdaysFor returns the table for a locale code ("ca", "en").
// Unknown locales get the Catalan table.
func WeekdaysFor(locale string) WeekdayTable {
	switch locale {
	case "en":
		return WeekdaysEnglish
	default:
		return WeekdaysCatalan
	}
}

// Abbrev returns the abbreviation for a weekday index.
func (w WeekdayTable) Abbrev(day int) string {
	if day < 0 || day >= len(w) {
		return unknownWeekday
	}
	return w[day]
}

// FormatTime renders the 24h hour:minute clock text.
func FormatTime(t time.Time) string {
	return t.Format("15:04")
}

// FormatDate renders "<weekday><day-of-month> <month>", e.g. "Dll5 03".
func FormatDate(t time.Time, days WeekdayTable) string {
	return fmt.Sprintf("%s%d %02d", days.Abbrev(int(t.Weekday())), t.Day(), int(t.Month()))
}
