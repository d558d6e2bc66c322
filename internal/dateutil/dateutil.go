// Package dateutil turns the output.date_suffix setting into a file name
// suffix such as "20240315-142530".
package dateutil

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrInvalidDateFormat indicates an unusable date suffix setting.
var ErrInvalidDateFormat = errors.New("invalid date format")

// maxFormatLength bounds a custom format.
const maxFormatLength = 50

// defaultFormat is used by a bare "auto". It matches the timestamped names
// of earlier converter versions.
const defaultFormat = "YYYYMMDD-HHmmss"

// presets are named formats accepted after "auto:".
var presets = map[string]string{
	"iso":     "YYYY-MM-DD",
	"compact": "YYYYMMDD",
	"stamp":   defaultFormat,
	"month":   "YYYY-MM",
}

// tokens maps format tokens to Go layout fragments. Longer tokens come
// first so that "YYYY" wins over "YY".
var tokens = strings.NewReplacer(
	"YYYY", "2006",
	"MMMM", "January",
	"MMM", "Jan",
	"YY", "06",
	"MM", "01",
	"DD", "02",
	"HH", "15",
	"mm", "04",
	"ss", "05",
)

// layout converts a format such as "DD.MM.YYYY" to a Go time layout.
// Text in brackets is kept literally: "[week-]YYYY" gives "week-2006".
func layout(format string) (string, error) {
	if format == "" || len(format) > maxFormatLength {
		return "", fmt.Errorf("%w: format must be 1 to %d characters", ErrInvalidDateFormat, maxFormatLength)
	}

	var b strings.Builder
	rest := format
	for rest != "" {
		open := strings.IndexByte(rest, '[')
		if open < 0 {
			b.WriteString(tokens.Replace(rest))
			break
		}
		b.WriteString(tokens.Replace(rest[:open]))
		end := strings.IndexByte(rest[open:], ']')
		if end < 0 {
			return "", fmt.Errorf("%w: unclosed bracket in %q", ErrInvalidDateFormat, format)
		}
		b.WriteString(rest[open+1 : open+end])
		rest = rest[open+end+1:]
	}
	return b.String(), nil
}

// unsafeNameChars are replaced in a resolved suffix.
var unsafeNameChars = strings.NewReplacer("/", "-", "\\", "-", ":", "-", " ", "_", ",", "")

// FileSuffix resolves a date suffix setting at time t:
//   - "" gives no suffix
//   - "auto" gives t as YYYYMMDD-HHmmss
//   - "auto:FORMAT" gives t in FORMAT or in a named preset (iso, compact,
//     stamp, month)
//   - anything else is used as written
//
// Characters that are unsafe in file names are replaced in every case.
func FileSuffix(value string, t time.Time) (string, error) {
	value = strings.TrimSpace(value)
	lower := strings.ToLower(value)

	var resolved string
	switch {
	case value == "":
		return "", nil
	case lower == "auto":
		l, _ := layout(defaultFormat)
		resolved = t.Format(l)
	case strings.HasPrefix(lower, "auto:"):
		format := value[len("auto:"):]
		if p, ok := presets[strings.ToLower(format)]; ok {
			format = p
		}
		l, err := layout(format)
		if err != nil {
			return "", err
		}
		resolved = t.Format(l)
	case strings.HasPrefix(lower, "auto"):
		return "", fmt.Errorf("%w: %q (use \"auto\" or \"auto:FORMAT\")", ErrInvalidDateFormat, value)
	default:
		resolved = value
	}
	return unsafeNameChars.Replace(resolved), nil
}
