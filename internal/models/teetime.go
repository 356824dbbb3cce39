package models

import "time"

type TeeTimeStatus string

const (
	// StatusAvailable is virtual: an empty slot is never persisted.
	StatusAvailable TeeTimeStatus = "AVAILABLE"
	StatusBooked    TeeTimeStatus = "BOOKED"
	StatusCheckedIn TeeTimeStatus = "CHECKED_IN"
	StatusStarted   TeeTimeStatus = "STARTED"
	StatusCompleted TeeTimeStatus = "COMPLETED"
	StatusCancelled TeeTimeStatus = "CANCELLED"
	StatusNoShow    TeeTimeStatus = "NO_SHOW"
	StatusBlocked   TeeTimeStatus = "BLOCKED"
)

// Retired statuses keep their rows for reporting; they accept no transitions.
func (s TeeTimeStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusNoShow
}

type PlayerType string

const (
	PlayerMember PlayerType = "MEMBER"
	PlayerGuest  PlayerType = "GUEST"
)

type CartType string

const (
	CartSingle  CartType = "SINGLE"
	CartShared  CartType = "SHARED"
	CartWalking CartType = "WALKING"
)

// TeeTime is the booking aggregate for one (course, date, time) slot.
// It exclusively owns its players; cancelling cascades.
type TeeTime struct {
	// The slot tuple is only partially unique: cancelled and no-show rows
	// keep their tuple as retired history, so the unique index lives in
	// pkg/database as a raw partial index and the tags stay non-unique.
	ID       uint   `gorm:"primaryKey" json:"id"`
	CourseID uint   `gorm:"not null;index:idx_tee_time_slot" json:"course_id"`
	PlayDate string `gorm:"type:varchar(10);not null;index:idx_tee_time_slot" json:"play_date"` // YYYY-MM-DD
	TeeOff   string `gorm:"type:varchar(5);not null;index:idx_tee_time_slot" json:"tee_off"`    // HH:MM

	Status           TeeTimeStatus `gorm:"type:varchar(12);not null" json:"status"`
	BookedByMemberID *string       `gorm:"type:varchar(64)" json:"booked_by_member_id,omitempty"`

	GreenFeeTotal float64 `json:"green_fee_total"`
	CaddyFeeTotal float64 `json:"caddy_fee_total"`
	CartFeeTotal  float64 `json:"cart_fee_total"`
	GuestFeeTotal float64 `json:"guest_fee_total"`
	FeeTotal      float64 `json:"fee_total"`

	// InvoiceRef is a weak reference; billing owns the invoice.
	InvoiceRef *string `gorm:"type:varchar(64)" json:"invoice_ref,omitempty"`

	Players []TeeTimePlayer `gorm:"foreignKey:TeeTimeID;constraint:OnDelete:CASCADE" json:"players,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type TeeTimePlayer struct {
	ID        uint `gorm:"primaryKey" json:"id"`
	TeeTimeID uint `gorm:"not null;uniqueIndex:idx_player_position" json:"tee_time_id"`
	Position  int  `gorm:"not null;uniqueIndex:idx_player_position" json:"position"`

	PlayerType PlayerType `gorm:"type:varchar(10);not null" json:"player_type"`

	// Identity is exclusive: MemberID for MEMBER, GuestName/GuestContact for GUEST.
	MemberID     *string `gorm:"type:varchar(64)" json:"member_id,omitempty"`
	DisplayName  string  `json:"display_name"`
	GuestName    *string `json:"guest_name,omitempty"`
	GuestContact *string `json:"guest_contact,omitempty"`

	CartType CartType `gorm:"type:varchar(10);not null;default:'WALKING'" json:"cart_type"`
	CartID   *uint    `json:"cart_id,omitempty"`
	// SharedWithPosition points at the paired player's position in the same
	// flight; pairing must be symmetric.
	SharedWithPosition *int `json:"shared_with_position,omitempty"`

	CaddyID *uint `json:"caddy_id,omitempty"`

	GreenFee float64 `json:"green_fee"`
	CaddyFee float64 `json:"caddy_fee"`
	CartFee  float64 `json:"cart_fee"`
	GuestFee float64 `json:"guest_fee"`

	CheckedIn   bool       `json:"checked_in"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (p *TeeTimePlayer) TotalFee() float64 {
	return p.GreenFee + p.CaddyFee + p.CartFee + p.GuestFee
}

// PlayerAt returns the player occupying a position, or nil.
func (t *TeeTime) PlayerAt(position int) *TeeTimePlayer {
	for i := range t.Players {
		if t.Players[i].Position == position {
			return &t.Players[i]
		}
	}
	return nil
}

// RecomputeFeeTotals rebuilds the aggregate totals from the player rows.
// Totals are never patched incrementally so they cannot drift from the sum.
func (t *TeeTime) RecomputeFeeTotals() {
	t.GreenFeeTotal, t.CaddyFeeTotal, t.CartFeeTotal, t.GuestFeeTotal, t.FeeTotal = 0, 0, 0, 0, 0
	for i := range t.Players {
		p := &t.Players[i]
		t.GreenFeeTotal += p.GreenFee
		t.CaddyFeeTotal += p.CaddyFee
		t.CartFeeTotal += p.CartFee
		t.GuestFeeTotal += p.GuestFee
	}
	t.FeeTotal = t.GreenFeeTotal + t.CaddyFeeTotal + t.CartFeeTotal + t.GuestFeeTotal
}

// AllCheckedIn reports whether every player in the flight is checked in.
func (t *TeeTime) AllCheckedIn() bool {
	if len(t.Players) == 0 {
		return false
	}
	for i := range t.Players {
		if !t.Players[i].CheckedIn {
			return false
		}
	}
	return true
}

// BookerCheckedIn reports whether the member who created the booking is
// checked in (partial check-in policy).
func (t *TeeTime) BookerCheckedIn() bool {
	if t.BookedByMemberID == nil {
		return false
	}
	for i := range t.Players {
		p := &t.Players[i]
		if p.MemberID != nil && *p.MemberID == *t.BookedByMemberID && p.CheckedIn {
			return true
		}
	}
	return false
}

// ValidatePairingSymmetry detects broken shared-cart back-references.
// A broken pairing is data corruption, not a valid state.
func (t *TeeTime) ValidatePairingSymmetry() error {
	for i := range t.Players {
		p := &t.Players[i]
		if p.SharedWithPosition == nil {
			continue
		}
		peer := t.PlayerAt(*p.SharedWithPosition)
		if p.CartType != CartShared ||
			peer == nil ||
			peer.CartType != CartShared ||
			peer.SharedWithPosition == nil ||
			*peer.SharedWithPosition != p.Position {
			return &BrokenPairingError{TeeTimeID: t.ID, Position: p.Position}
		}
	}
	return nil
}
