package dto

import (
	"time"

	"github.com/linksclub/teesheet-service/internal/models"
	"github.com/linksclub/teesheet-service/internal/service"
)

type PlayerResponse struct {
	Position     int               `json:"position"`
	PlayerType   models.PlayerType `json:"player_type"`
	DisplayName  string            `json:"display_name"`
	MemberID     *string           `json:"member_id,omitempty"`
	GuestName    *string           `json:"guest_name,omitempty"`
	GuestContact *string           `json:"guest_contact,omitempty"`

	CartType           models.CartType `json:"cart_type"`
	CartID             *uint           `json:"cart_id,omitempty"`
	SharedWithPosition *int            `json:"shared_with_position,omitempty"`
	CaddyID            *uint           `json:"caddy_id,omitempty"`

	GreenFee float64 `json:"green_fee"`
	CaddyFee float64 `json:"caddy_fee"`
	CartFee  float64 `json:"cart_fee"`
	GuestFee float64 `json:"guest_fee"`
	TotalFee float64 `json:"total_fee"`

	CheckedIn   bool       `json:"checked_in"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
}

type TeeTimeResponse struct {
	ID       uint                 `json:"id"`
	CourseID uint                 `json:"course_id"`
	PlayDate string               `json:"play_date"`
	TeeOff   string               `json:"tee_off"`
	Status   models.TeeTimeStatus `json:"status"`

	BookedByMemberID *string `json:"booked_by_member_id,omitempty"`

	GreenFeeTotal float64 `json:"green_fee_total"`
	CaddyFeeTotal float64 `json:"caddy_fee_total"`
	CartFeeTotal  float64 `json:"cart_fee_total"`
	GuestFeeTotal float64 `json:"guest_fee_total"`
	FeeTotal      float64 `json:"fee_total"`
	InvoiceRef    *string `json:"invoice_ref,omitempty"`

	Players []PlayerResponse `json:"players"`

	CreatedAt time.Time `json:"created_at"`
}

type SheetEntryResponse struct {
	Time    string               `json:"time"`
	Status  models.TeeTimeStatus `json:"status"`
	OffGrid bool                 `json:"off_grid,omitempty"`
	TeeTime *TeeTimeResponse     `json:"tee_time,omitempty"`
}

type DaySheetResponse struct {
	CourseID uint                 `json:"course_id"`
	Date     string               `json:"date"`
	DayType  models.DayType       `json:"day_type"`
	Entries  []SheetEntryResponse `json:"entries"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToPlayerResponse(p *models.TeeTimePlayer) PlayerResponse {
	return PlayerResponse{
		Position:           p.Position,
		PlayerType:         p.PlayerType,
		DisplayName:        p.DisplayName,
		MemberID:           p.MemberID,
		GuestName:          p.GuestName,
		GuestContact:       p.GuestContact,
		CartType:           p.CartType,
		CartID:             p.CartID,
		SharedWithPosition: p.SharedWithPosition,
		CaddyID:            p.CaddyID,
		GreenFee:           p.GreenFee,
		CaddyFee:           p.CaddyFee,
		CartFee:            p.CartFee,
		GuestFee:           p.GuestFee,
		TotalFee:           p.TotalFee(),
		CheckedIn:          p.CheckedIn,
		CheckedInAt:        p.CheckedInAt,
	}
}

func ToTeeTimeResponse(t *models.TeeTime) TeeTimeResponse {
	players := make([]PlayerResponse, 0, len(t.Players))
	for i := range t.Players {
		players = append(players, ToPlayerResponse(&t.Players[i]))
	}
	return TeeTimeResponse{
		ID:               t.ID,
		CourseID:         t.CourseID,
		PlayDate:         t.PlayDate,
		TeeOff:           t.TeeOff,
		Status:           t.Status,
		BookedByMemberID: t.BookedByMemberID,
		GreenFeeTotal:    t.GreenFeeTotal,
		CaddyFeeTotal:    t.CaddyFeeTotal,
		CartFeeTotal:     t.CartFeeTotal,
		GuestFeeTotal:    t.GuestFeeTotal,
		FeeTotal:         t.FeeTotal,
		InvoiceRef:       t.InvoiceRef,
		Players:          players,
		CreatedAt:        t.CreatedAt,
	}
}

func ToDaySheetResponse(sheet *service.DaySheet) DaySheetResponse {
	entries := make([]SheetEntryResponse, 0, len(sheet.Entries))
	for _, e := range sheet.Entries {
		entry := SheetEntryResponse{
			Time:    e.Time,
			Status:  e.Status,
			OffGrid: e.OffGrid,
		}
		if e.TeeTime != nil {
			tt := ToTeeTimeResponse(e.TeeTime)
			entry.TeeTime = &tt
		}
		entries = append(entries, entry)
	}
	return DaySheetResponse{
		CourseID: sheet.CourseID,
		Date:     sheet.Date,
		DayType:  sheet.DayType,
		Entries:  entries,
	}
}
