// Package schedule generates the bookable slot grid for a course and day.
// Everything here is pure: no I/O, no clock reads, deterministic output.
package schedule

import (
	"errors"
	"fmt"
	"time"

	"github.com/linksclub/teesheet-service/internal/models"
)

var (
	ErrInvalidInterval = errors.New("slot interval must be positive")
	ErrInvalidWindow   = errors.New("start time must be before end time")
	ErrMalformedTime   = errors.New("time of day must be HH:MM")
)

// Slot is one bookable (course, date, time) tuple.
type Slot struct {
	CourseID uint   `json:"course_id"`
	Date     string `json:"date"` // YYYY-MM-DD
	Time     string `json:"time"` // HH:MM
}

// ResolvedConfig is the schedule for one specific date, after day-type
// overrides have been applied. The generator only ever sees this form, so
// weekday/weekend variants can never be silently hardcoded inside it.
type ResolvedConfig struct {
	StartTime       string
	EndTime         string
	IntervalMinutes int

	MaxPlayersPerSlot  int
	AdvanceBookingDays int

	PeakStart string
	PeakEnd   string
}

// HolidayCalendar is the external holiday input.
type HolidayCalendar interface {
	IsHoliday(date time.Time) bool
}

// StaticHolidays is a fixed YYYY-MM-DD holiday list.
type StaticHolidays map[string]struct{}

func NewStaticHolidays(dates []string) StaticHolidays {
	h := make(StaticHolidays, len(dates))
	for _, d := range dates {
		h[d] = struct{}{}
	}
	return h
}

func (h StaticHolidays) IsHoliday(date time.Time) bool {
	_, ok := h[date.Format("2006-01-02")]
	return ok
}

// ClassifyDay maps a date to its day type using the holiday calendar.
// Holidays win over the weekday/weekend split.
func ClassifyDay(date time.Time, holidays HolidayCalendar) models.DayType {
	if holidays != nil && holidays.IsHoliday(date) {
		return models.DayHoliday
	}
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		return models.DayWeekend
	default:
		return models.DayWeekday
	}
}

// ClassifyTime maps a time of day to PEAK or OFF_PEAK against the resolved
// peak window. No window configured means everything is off-peak.
func ClassifyTime(tod string, cfg ResolvedConfig) (models.TimeType, error) {
	if cfg.PeakStart == "" || cfg.PeakEnd == "" {
		return models.TimeOffPeak, nil
	}
	m, err := ParseTimeOfDay(tod)
	if err != nil {
		return "", err
	}
	start, err := ParseTimeOfDay(cfg.PeakStart)
	if err != nil {
		return "", err
	}
	end, err := ParseTimeOfDay(cfg.PeakEnd)
	if err != nil {
		return "", err
	}
	if m >= start && m < end {
		return models.TimePeak, nil
	}
	return models.TimeOffPeak, nil
}

// ResolveConfig applies the day-type override (if any) for the given date
// over the course's base config.
func ResolveConfig(cfg *models.TeeSheetConfig, dayType models.DayType) ResolvedConfig {
	resolved := ResolvedConfig{
		StartTime:          cfg.StartTime,
		EndTime:            cfg.EndTime,
		IntervalMinutes:    cfg.IntervalMinutes,
		MaxPlayersPerSlot:  cfg.MaxPlayersPerSlot,
		AdvanceBookingDays: cfg.AdvanceBookingDays,
		PeakStart:          cfg.PeakStart,
		PeakEnd:            cfg.PeakEnd,
	}
	for _, o := range cfg.Overrides {
		if o.DayType == dayType {
			// Zero-valued fields inherit from the base config.
			if o.StartTime != "" {
				resolved.StartTime = o.StartTime
			}
			if o.EndTime != "" {
				resolved.EndTime = o.EndTime
			}
			if o.IntervalMinutes > 0 {
				resolved.IntervalMinutes = o.IntervalMinutes
			}
			break
		}
	}
	return resolved
}

// GenerateSlots produces the ordered, gapless slot grid for one date:
// inclusive of StartTime, stepped by the interval, nothing past EndTime.
func GenerateSlots(courseID uint, date string, cfg ResolvedConfig) ([]Slot, error) {
	if cfg.IntervalMinutes <= 0 {
		return nil, ErrInvalidInterval
	}
	start, err := ParseTimeOfDay(cfg.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := ParseTimeOfDay(cfg.EndTime)
	if err != nil {
		return nil, err
	}
	if start >= end {
		return nil, ErrInvalidWindow
	}

	slots := make([]Slot, 0, (end-start)/cfg.IntervalMinutes+1)
	for m := start; m <= end; m += cfg.IntervalMinutes {
		slots = append(slots, Slot{CourseID: courseID, Date: date, Time: FormatTimeOfDay(m)})
	}
	return slots, nil
}

// OnGrid reports whether a time of day is a valid slot for the config.
func OnGrid(tod string, cfg ResolvedConfig) bool {
	m, err := ParseTimeOfDay(tod)
	if err != nil {
		return false
	}
	start, err := ParseTimeOfDay(cfg.StartTime)
	if err != nil {
		return false
	}
	end, err := ParseTimeOfDay(cfg.EndTime)
	if err != nil {
		return false
	}
	return m >= start && m <= end && (m-start)%cfg.IntervalMinutes == 0
}

// ParseTimeOfDay converts "HH:MM" to minutes since midnight.
func ParseTimeOfDay(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%2d:%2d", &h, &m); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	if len(s) != 5 || s[2] != ':' || h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("%w: %q", ErrMalformedTime, s)
	}
	return h*60 + m, nil
}

func FormatTimeOfDay(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDate validates a YYYY-MM-DD date string.
func ParseDate(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}
