package models

import "time"

// DayType classifies a calendar date for schedule and rate lookup.
type DayType string

const (
	DayWeekday DayType = "WEEKDAY"
	DayWeekend DayType = "WEEKEND"
	DayHoliday DayType = "HOLIDAY"
	// DayAny is the catch-all used by rate rows that apply to every day type.
	DayAny DayType = "ANY"
)

// TimeType classifies a time of day against the course's peak window.
type TimeType string

const (
	TimePeak    TimeType = "PEAK"
	TimeOffPeak TimeType = "OFF_PEAK"
	TimeAllDay  TimeType = "ALL_DAY"
)

type TaxMode string

const (
	TaxAdd     TaxMode = "ADD"
	TaxInclude TaxMode = "INCLUDE"
	TaxNone    TaxMode = "NONE"
)

type GolfCourse struct {
	ID        uint   `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"not null" json:"name"`
	HoleCount int    `gorm:"not null;default:18" json:"hole_count"`
	Par       int    `gorm:"not null;default:72" json:"par"`

	// GuestFee is the flat per-guest surcharge added on top of the green fee.
	GuestFee   float64 `json:"guest_fee"`
	TaxMode    TaxMode `gorm:"type:varchar(10);not null;default:'NONE'" json:"tax_mode"`
	TaxRatePct float64 `json:"tax_rate_pct"`

	Config *TeeSheetConfig `gorm:"foreignKey:CourseID" json:"config,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TeeSheetConfig holds the base booking window for a course. Day-type
// specific start/end times live in Overrides; resolution happens in the
// schedule package, never inside the slot generator.
type TeeSheetConfig struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	CourseID uint `gorm:"not null;uniqueIndex" json:"course_id"`

	StartTime       string `gorm:"type:varchar(5);not null" json:"start_time"` // "06:00"
	EndTime         string `gorm:"type:varchar(5);not null" json:"end_time"`   // "18:00"
	IntervalMinutes int    `gorm:"not null" json:"interval_minutes"`

	MaxPlayersPerSlot  int `gorm:"not null;default:4" json:"max_players_per_slot"`
	AdvanceBookingDays int `gorm:"not null;default:14" json:"advance_booking_days"`

	// Optional peak window, empty = no peak pricing.
	PeakStart string `gorm:"type:varchar(5)" json:"peak_start,omitempty"`
	PeakEnd   string `gorm:"type:varchar(5)" json:"peak_end,omitempty"`

	Overrides []TeeSheetOverride `gorm:"foreignKey:ConfigID" json:"overrides,omitempty"`
}

// TeeSheetOverride replaces the base window for one day type
// (e.g. later weekend start).
type TeeSheetOverride struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	ConfigID uint    `gorm:"not null;uniqueIndex:idx_config_day_type" json:"config_id"`
	DayType  DayType `gorm:"type:varchar(10);not null;uniqueIndex:idx_config_day_type" json:"day_type"`

	StartTime       string `gorm:"type:varchar(5);not null" json:"start_time"`
	EndTime         string `gorm:"type:varchar(5);not null" json:"end_time"`
	IntervalMinutes int    `gorm:"not null" json:"interval_minutes"`
}
