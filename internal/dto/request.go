package dto

import "github.com/linksclub/teesheet-service/internal/models"

// PlayerRequest carries one player joining a flight. Position 0 lets the
// service pick the first free position.
type PlayerRequest struct {
	Position     int               `json:"position" validate:"min=0,max=8"`
	PlayerType   models.PlayerType `json:"player_type" validate:"required,oneof=MEMBER GUEST"`
	MemberID     *string           `json:"member_id,omitempty" validate:"required_if=PlayerType MEMBER"`
	GuestName    *string           `json:"guest_name,omitempty" validate:"required_if=PlayerType GUEST"`
	GuestContact *string           `json:"guest_contact,omitempty"`
}

type CreateTeeTimeRequest struct {
	CourseID         uint            `json:"course_id" validate:"required"`
	PlayDate         string          `json:"play_date" validate:"required,datetime=2006-01-02"`
	TeeOff           string          `json:"tee_off" validate:"required,datetime=15:04"`
	BookedByMemberID *string         `json:"booked_by_member_id,omitempty"`
	Players          []PlayerRequest `json:"players" validate:"required,min=1,dive"`
}

type AddPlayerRequest struct {
	PlayerRequest
}

type AssignCartRequest struct {
	Position   int             `json:"position" validate:"required,min=1"`
	CartType   models.CartType `json:"cart_type" validate:"required,oneof=SINGLE SHARED WALKING"`
	CartID     *uint           `json:"cart_id,omitempty"`
	SharedWith *int            `json:"shared_with,omitempty" validate:"required_if=CartType SHARED"`
}

type AssignCaddyRequest struct {
	Position int   `json:"position" validate:"required,min=1"`
	CaddyID  *uint `json:"caddy_id,omitempty"`
}

type BlockSlotRequest struct {
	CourseID uint   `json:"course_id" validate:"required"`
	PlayDate string `json:"play_date" validate:"required,datetime=2006-01-02"`
	TeeOff   string `json:"tee_off" validate:"required,datetime=15:04"`
}
