package course

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidDescriptor = errors.New("invalid course descriptor")
	ErrUnknownWeekday    = errors.New("unknown weekday")
)

// Weekday is an ISO weekday number (Lundi=1 .. Dimanche=7).
type Weekday int

const WeekdayUnknown Weekday = 0

var frenchWeekdays = map[string]Weekday{
	"lundi":    1,
	"mardi":    2,
	"mercredi": 3,
	"jeudi":    4,
	"vendredi": 5,
	"samedi":   6,
	"dimanche": 7,
}

func ParseWeekday(s string) (Weekday, error) {
	wd, ok := frenchWeekdays[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return WeekdayUnknown, ErrUnknownWeekday
	}
	return wd, nil
}

// ClockTime is a time of day without a date.
type ClockTime struct {
	Hour   int
	Minute int
}

func (t ClockTime) String() string {
	return padTwo(t.Hour) + ":" + padTwo(t.Minute)
}

// At combines the time of day with the date part of d.
func (t ClockTime) At(d time.Time) time.Time {
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour, t.Minute, 0, 0, d.Location())
}

func padTwo(n int) string {
	if n < 10 {
		return "0" + strconv.Itoa(n)
	}
	return strconv.Itoa(n)
}

// Descriptor is the structured form of a free-text course string such as
// "Jazz Enfant 1 | Lundi | 17:30 - 18:30 | 1h | avec Vanessa".
type Descriptor struct {
	Name       string
	Weekday    Weekday
	Start      *ClockTime
	End        *ClockTime
	Duration   string
	Instructor string
}

// 1-2 digit hours, 2-digit minutes, dash with optional surrounding spaces.
var timeRangeRe = regexp.MustCompile(`(\d{1,2}):(\d{2})\s*-\s*(\d{1,2}):(\d{2})`)

// ParseSchedule parses the booking-matcher dialect:
// name | weekday | "HH:MM - HH:MM" | duration | ["avec" instructor].
// An unrecognized weekday is surfaced as ErrUnknownWeekday instead of the
// historical silent Monday fallback.
func ParseSchedule(raw string) (*Descriptor, error) {
	segments, err := splitSegments(raw)
	if err != nil {
		return nil, err
	}

	wd, err := ParseWeekday(segments[1])
	if err != nil {
		return nil, err
	}

	d := parseCommon(segments, 2)
	d.Weekday = wd
	return d, nil
}

// Parse parses the shorter dialect without a weekday segment:
// name | "HH:MM - HH:MM" | duration | ["avec" instructor].
func Parse(raw string) (*Descriptor, error) {
	segments, err := splitSegments(raw)
	if err != nil {
		return nil, err
	}
	return parseCommon(segments, 1), nil
}

func splitSegments(raw string) ([]string, error) {
	parts := strings.Split(raw, "|")
	if len(parts) < 3 {
		return nil, ErrInvalidDescriptor
	}
	segments := make([]string, len(parts))
	for i, p := range parts {
		segments[i] = strings.TrimSpace(p)
	}
	return segments, nil
}

// parseCommon extracts name, time range, duration and instructor; rest points
// at the first segment after the name (and weekday, when present).
func parseCommon(segments []string, rest int) *Descriptor {
	d := &Descriptor{Name: segments[0]}

	for _, seg := range segments[rest:] {
		if d.Start == nil {
			if start, end, ok := parseTimeRange(seg); ok {
				d.Start, d.End = start, end
				continue
			}
		}
		if instructor, ok := parseInstructor(seg); ok {
			d.Instructor = instructor
			continue
		}
		if d.Duration == "" {
			d.Duration = seg
		}
	}

	return d
}

func parseTimeRange(seg string) (*ClockTime, *ClockTime, bool) {
	m := timeRangeRe.FindStringSubmatch(seg)
	if m == nil {
		return nil, nil, false
	}
	sh, _ := strconv.Atoi(m[1])
	sm, _ := strconv.Atoi(m[2])
	eh, _ := strconv.Atoi(m[3])
	em, _ := strconv.Atoi(m[4])
	return &ClockTime{Hour: sh, Minute: sm}, &ClockTime{Hour: eh, Minute: em}, true
}

func parseInstructor(seg string) (string, bool) {
	lower := strings.ToLower(seg)
	idx := strings.Index(lower, "avec")
	if idx < 0 {
		return "", false
	}
	name := strings.TrimSpace(seg[idx+len("avec"):])
	return name, true
}

// NextOccurrence returns the next calendar date strictly after now whose
// weekday matches wd. When today already matches, the date rolls forward a
// full week rather than reusing today.
func NextOccurrence(now time.Time, wd Weekday) time.Time {
	current := isoWeekday(now)
	days := (int(wd) - current + 7) % 7
	if days == 0 {
		days = 7
	}
	return now.AddDate(0, 0, days)
}

func isoWeekday(t time.Time) int {
	d := int(t.Weekday())
	if d == 0 {
		return 7
	}
	return d
}
