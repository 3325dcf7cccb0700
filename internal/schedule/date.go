package schedule

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/nontawat/roombot/internal/domain"
)

const dateLayout = "2006-01-02"

var (
	dmyPattern = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})/(\d{4})$`)
	isoPattern = regexp.MustCompile(`^(\d{4})-(\d{1,2})-(\d{1,2})$`)
)

// ParseDate turns user date text into the canonical YYYY-MM-DD form.
// Accepted inputs: today/tomorrow keywords (English and Thai, the bot's
// original locale), DD/MM/YYYY and YYYY-MM-DD. Impossible calendar values
// such as month 13 are rejected, not silently accepted.
func ParseDate(now time.Time, text string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(text)) {
	case "today", "วันนี้":
		return now.Format(dateLayout), nil
	case "tomorrow", "พรุ่งนี้":
		return now.AddDate(0, 0, 1).Format(dateLayout), nil
	}

	text = strings.TrimSpace(text)
	var year, month, day int
	if m := dmyPattern.FindStringSubmatch(text); m != nil {
		day, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		year, _ = strconv.Atoi(m[3])
	} else if m := isoPattern.FindStringSubmatch(text); m != nil {
		year, _ = strconv.Atoi(m[1])
		month, _ = strconv.Atoi(m[2])
		day, _ = strconv.Atoi(m[3])
	} else {
		return "", domain.ErrBadDate
	}

	// time.Date normalizes out-of-range components (month 13 becomes next
	// January), so round-trip and compare to catch impossible dates.
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if t.Year() != year || t.Month() != time.Month(month) || t.Day() != day {
		return "", domain.ErrBadDate
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day), nil
}

// Today returns the current date in canonical form.
func Today(now time.Time) string {
	return now.Format(dateLayout)
}
