// Package availability turns a provider's recurring weekly windows into the
// concrete bookable slots of a calendar date. Resolution is a pure
// computation: no storage, no clock, no hidden state.
package availability

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"medibook/pkg/model"
)

// ErrInvalidWindow marks a window whose times or duration the resolver
// cannot interpret. Windows are validated when the catalog writes them, so
// this is a defensive path for data that slipped past that check.
var ErrInvalidWindow = errors.New("invalid schedule window")

var clockRegex = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

// Resolve returns the ordered slot start times ("HH:MM", 24-hour) a
// provider offers on the given date. Windows are matched by weekday and
// processed in declaration order; slots from multiple windows on the same
// day are concatenated without de-duplication. A slot is emitted only when
// the full duration fits before the window's end, so a trailing remainder
// shorter than one duration is dropped. A day with no matching windows
// resolves to an empty list, and so does a window whose start is not
// before its end.
func Resolve(windows []model.ScheduleWindow, date time.Time) ([]string, error) {
	weekday := date.Weekday().String()

	slots := []string{}
	for i, w := range windows {
		if w.Day != weekday {
			continue
		}

		start, err := parseClock(w.StartTime)
		if err != nil {
			return nil, fmt.Errorf("window %d: start_time %q: %w", i, w.StartTime, ErrInvalidWindow)
		}
		end, err := parseClock(w.EndTime)
		if err != nil {
			return nil, fmt.Errorf("window %d: end_time %q: %w", i, w.EndTime, ErrInvalidWindow)
		}
		if w.SlotDurationMinutes <= 0 {
			return nil, fmt.Errorf("window %d: slot duration %d: %w", i, w.SlotDurationMinutes, ErrInvalidWindow)
		}

		for t := start; t+w.SlotDurationMinutes <= end; t += w.SlotDurationMinutes {
			slots = append(slots, formatClock(t))
		}
	}

	return slots, nil
}

// parseClock converts a zero-padded "HH:MM" value to minutes since
// midnight.
func parseClock(s string) (int, error) {
	if !clockRegex.MatchString(s) {
		return 0, fmt.Errorf("not a valid HH:MM time")
	}
	hours, _ := strconv.Atoi(s[:2])
	minutes, _ := strconv.Atoi(s[3:])
	return hours*60 + minutes, nil
}

func formatClock(minutesSinceMidnight int) string {
	return fmt.Sprintf("%02d:%02d", minutesSinceMidnight/60, minutesSinceMidnight%60)
}
