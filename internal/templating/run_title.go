package templating

import (
	"fmt"
	"strings"
	"time"
)

// DefaultRunTitle is used when no run name is configured.
const DefaultRunTitle = "Automated test run - {MMM} {DD}, {YYYY}, {hh}:{mm}:{ss} {AMPM}"

// RunTitle renders a run title template. Supported placeholders are `{env:NAME}` and the date & time placeholders
// `{YYYY}`, `{YY}`, `{MM}`, `{MMM}`, `{DD}`, `{HH}`, `{hh}`, `{mm}`, `{ss}` and `{AMPM}`.
func RunTitle(template string, now time.Time, lookupEnv func(string) (string, bool)) string {
	if template == "" {
		template = DefaultRunTitle
	}

	return CompileTemplate(template).Substitute(func(keyword string) (string, bool) {
		if name, ok := strings.CutPrefix(keyword, "env:"); ok {
			return lookupEnv(name)
		}

		return timePlaceholder(keyword, now)
	})
}

func timePlaceholder(keyword string, now time.Time) (string, bool) {
	switch keyword {
	case "YYYY":
		return fmt.Sprintf("%04d", now.Year()), true
	case "YY":
		return fmt.Sprintf("%02d", now.Year()%100), true
	case "MM":
		return fmt.Sprintf("%02d", int(now.Month())), true
	case "MMM":
		return now.Format("Jan"), true
	case "DD":
		return fmt.Sprintf("%02d", now.Day()), true
	case "HH":
		return fmt.Sprintf("%02d", now.Hour()), true
	case "hh":
		return now.Format("03"), true
	case "mm":
		return fmt.Sprintf("%02d", now.Minute()), true
	case "ss":
		return fmt.Sprintf("%02d", now.Second()), true
	case "AMPM":
		return now.Format("PM"), true
	default:
		return "", false
	}
}
