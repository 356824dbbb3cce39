// Package events defines the domain event payloads emitted to the billing
// and notification collaborators.
package events

// Routing keys on the teesheet exchange.
const (
	BookingCreated   = "teesheet.booking.created"
	BookingCancelled = "teesheet.booking.cancelled"
	BookingCheckedIn = "teesheet.booking.checked_in"
	BookingNoShow    = "teesheet.booking.no_show"
	BookingCompleted = "teesheet.booking.completed"
	FeesUpdated      = "teesheet.billing.fees_updated"
)

// BookingEvent is consumed by the notification dispatcher.
type BookingEvent struct {
	Type      string  `json:"type"`
	TeeTimeID uint    `json:"tee_time_id"`
	CourseID  uint    `json:"course_id"`
	PlayDate  string  `json:"play_date"`
	TeeOff    string  `json:"tee_off"`
	MemberID  *string `json:"member_id,omitempty"`
}

// FeeTotalsEvent supplies computed totals to the invoicing collaborator.
// The tee sheet never creates invoices; InvoiceRef is the hook back.
type FeeTotalsEvent struct {
	TeeTimeID     uint    `json:"tee_time_id"`
	CourseID      uint    `json:"course_id"`
	PlayDate      string  `json:"play_date"`
	TeeOff        string  `json:"tee_off"`
	GreenFeeTotal float64 `json:"green_fee_total"`
	CaddyFeeTotal float64 `json:"caddy_fee_total"`
	CartFeeTotal  float64 `json:"cart_fee_total"`
	GuestFeeTotal float64 `json:"guest_fee_total"`
	FeeTotal      float64 `json:"fee_total"`
	InvoiceRef    *string `json:"invoice_ref,omitempty"`
}

// MemberSyncPayload is what the membership directory publishes on member.*
// routing keys; the consumer mirrors it into the local members table.
type MemberSyncPayload struct {
	ID             string  `json:"id"`
	DisplayName    string  `json:"display_name"`
	MembershipType string  `json:"membership_type"`
	Contact        *string `json:"contact,omitempty"`
	Active         bool    `json:"active"`
}
