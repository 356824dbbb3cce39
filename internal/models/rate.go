package models

import "time"

// GreenFeeRate is one row of the rate table. MembershipType nil is the
// guest/default rate; DayAny and TimeAllDay are catch-alls that lose to
// exact matches.
type GreenFeeRate struct {
	ID       uint `gorm:"primaryKey" json:"id"`
	CourseID uint `gorm:"not null;index" json:"course_id"`

	MembershipType *string  `gorm:"type:varchar(32)" json:"membership_type,omitempty"`
	DayType        DayType  `gorm:"type:varchar(10);not null;default:'ANY'" json:"day_type"`
	TimeType       TimeType `gorm:"type:varchar(10);not null;default:'ALL_DAY'" json:"time_type"`

	Rate float64 `gorm:"not null" json:"rate"`

	EffectiveFrom *time.Time `json:"effective_from,omitempty"`
	EffectiveTo   *time.Time `json:"effective_to,omitempty"`
	Active        bool       `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectiveOn reports whether the rate's date range covers the given date.
func (r *GreenFeeRate) EffectiveOn(date time.Time) bool {
	if !r.Active {
		return false
	}
	if r.EffectiveFrom != nil && date.Before(*r.EffectiveFrom) {
		return false
	}
	if r.EffectiveTo != nil && date.After(*r.EffectiveTo) {
		return false
	}
	return true
}
