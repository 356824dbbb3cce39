package models

import "time"

// Caddy and GolfCart are shared resource pools referenced by players.
// Their lifecycle is managed outside the tee-sheet core; the engine only
// consults active state and fees.

type Caddy struct {
	ID       uint    `gorm:"primaryKey" json:"id"`
	Name     string  `gorm:"not null" json:"name"`
	Active   bool    `gorm:"not null;default:true" json:"active"`
	RoundFee float64 `json:"round_fee"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type GolfCart struct {
	ID        uint    `gorm:"primaryKey" json:"id"`
	Number    string  `gorm:"not null" json:"number"`
	Active    bool    `gorm:"not null;default:true" json:"active"`
	RentalFee float64 `json:"rental_fee"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
