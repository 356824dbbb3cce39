package models

import "time"

// Member is a denormalized local copy of the external member directory,
// kept in sync by the membership consumer. The directory owns the record;
// this table only stores what the tee sheet needs to display and price.
type Member struct {
	ID             string  `gorm:"primaryKey;type:varchar(64)" json:"id"`
	DisplayName    string  `gorm:"not null" json:"display_name"`
	MembershipType string  `gorm:"type:varchar(32);not null" json:"membership_type"`
	Contact        *string `json:"contact,omitempty"`
	Active         bool    `gorm:"not null;default:true" json:"active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
