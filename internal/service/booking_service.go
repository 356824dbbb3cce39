package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/jonboulle/clockwork"
	"github.com/linksclub/teesheet-service/internal/events"
	"github.com/linksclub/teesheet-service/internal/models"
	"github.com/linksclub/teesheet-service/internal/rates"
	"github.com/linksclub/teesheet-service/internal/repository"
	"github.com/linksclub/teesheet-service/internal/schedule"
	"github.com/linksclub/teesheet-service/pkg/redislock"
	"gorm.io/gorm"
)

var (
	ErrCourseNotFound      = errors.New("course not found")
	ErrCourseNotConfigured = errors.New("course has no tee sheet configuration")
	ErrTeeTimeNotFound     = errors.New("tee time not found")
	ErrMemberNotFound      = errors.New("member not found")
	ErrMemberInactive      = errors.New("member is not active")
	ErrSlotOffGrid         = errors.New("time is not on the slot grid")
	ErrSlotAlreadyBooked   = errors.New("slot is already booked")
	ErrSlotBlocked         = errors.New("slot is blocked")
	ErrSlotNotBlocked      = errors.New("slot is not blocked")
	ErrSlotFull            = errors.New("slot has no free positions")
	ErrDateInPast          = errors.New("play date is in the past")
	ErrBeyondBookingWindow = errors.New("play date is beyond the advance booking window")
	ErrNotEditable         = errors.New("tee time can no longer be modified")
	ErrInvalidPosition     = errors.New("position is outside the flight")
	ErrPositionOccupied    = errors.New("position is already occupied")
	ErrPositionEmpty       = errors.New("no player at position")
	ErrIdentityRequired    = errors.New("player identity is required")
	ErrInvalidPairing      = errors.New("shared cart pairing is invalid")
	ErrCartAlreadyPaired   = errors.New("position is already paired with a shared cart")
	ErrCartNotFound        = errors.New("cart not found")
	ErrCartUnavailable     = errors.New("cart is not available")
	ErrCartConflict        = errors.New("cart is already assigned at this time")
	ErrCaddyNotFound       = errors.New("caddy not found")
	ErrCaddyUnavailable    = errors.New("caddy is not available")
	ErrCaddyConflict       = errors.New("caddy is already assigned at this time")
	ErrAlreadyCheckedIn    = errors.New("player is already checked in")
)

// SlotLocker serializes mutations on a lock key. Satisfied by
// redislock.Locker in production.
type SlotLocker interface {
	WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error
}

// Publisher emits domain events to the message broker.
type Publisher interface {
	Publish(routingKey string, payload any) error
}

// PlayerInput describes one player joining a flight. Position 0 means
// "first free position".
type PlayerInput struct {
	Position     int
	PlayerType   models.PlayerType
	MemberID     *string
	GuestName    *string
	GuestContact *string
}

type BookingService interface {
	CreateTeeTime(ctx context.Context, courseID uint, date, teeOff string, bookedBy *string, players []PlayerInput) (*models.TeeTime, error)
	GetTeeTime(ctx context.Context, teeTimeID uint) (*models.TeeTime, error)

	AddPlayer(ctx context.Context, teeTimeID uint, in PlayerInput) (*models.TeeTime, error)
	RemovePlayer(ctx context.Context, teeTimeID uint, position int) (*models.TeeTime, error)

	AssignCart(ctx context.Context, teeTimeID uint, position int, cartType models.CartType, cartID *uint, sharedWith *int) (*models.TeeTime, error)
	AssignCaddy(ctx context.Context, teeTimeID uint, position int, caddyID *uint) (*models.TeeTime, error)

	CheckInPlayer(ctx context.Context, teeTimeID uint, position int) (*models.TeeTime, error)
	CheckInFlight(ctx context.Context, teeTimeID uint) (*models.TeeTime, error)
	StartRound(ctx context.Context, teeTimeID uint) (*models.TeeTime, error)
	CompleteRound(ctx context.Context, teeTimeID uint) (*models.TeeTime, error)
	MarkNoShow(ctx context.Context, teeTimeID uint) (*models.TeeTime, error)
	Cancel(ctx context.Context, teeTimeID uint) (*models.TeeTime, error)

	BlockSlot(ctx context.Context, courseID uint, date, teeOff string) (*models.TeeTime, error)
	UnblockSlot(ctx context.Context, courseID uint, date, teeOff string) error
}

type bookingService struct {
	teeTimeRepo  repository.TeeTimeRepository
	courseRepo   repository.CourseRepository
	memberRepo   repository.MemberRepository
	resourceRepo repository.ResourceRepository
	resolver     *rates.Resolver
	holidays     schedule.HolidayCalendar
	locker       SlotLocker
	publisher    Publisher
	clock        clockwork.Clock

	// partialCheckIn lets the booking member's check-in move the whole
	// flight to CHECKED_IN; off means everyone must be in first.
	partialCheckIn bool
}

func NewBookingService(
	teeTimeRepo repository.TeeTimeRepository,
	courseRepo repository.CourseRepository,
	memberRepo repository.MemberRepository,
	resourceRepo repository.ResourceRepository,
	resolver *rates.Resolver,
	holidays schedule.HolidayCalendar,
	locker SlotLocker,
	publisher Publisher,
	clock clockwork.Clock,
	partialCheckIn bool,
) BookingService {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &bookingService{
		teeTimeRepo:    teeTimeRepo,
		courseRepo:     courseRepo,
		memberRepo:     memberRepo,
		resourceRepo:   resourceRepo,
		resolver:       resolver,
		holidays:       holidays,
		locker:         locker,
		publisher:      publisher,
		clock:          clock,
		partialCheckIn: partialCheckIn,
	}
}

// courseFor loads the course and resolves its schedule for one date.
func (s *bookingService) courseFor(ctx context.Context, courseID uint, date string) (*models.GolfCourse, schedule.ResolvedConfig, error) {
	course, err := s.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, schedule.ResolvedConfig{}, ErrCourseNotFound
		}
		return nil, schedule.ResolvedConfig{}, err
	}
	if course.Config == nil {
		return nil, schedule.ResolvedConfig{}, ErrCourseNotConfigured
	}
	day, err := schedule.ParseDate(date)
	if err != nil {
		return nil, schedule.ResolvedConfig{}, fmt.Errorf("parse date: %w", err)
	}
	cfg := schedule.ResolveConfig(course.Config, schedule.ClassifyDay(day, s.holidays))
	return course, cfg, nil
}

// checkBookingWindow enforces the per-course advance booking horizon.
func (s *bookingService) checkBookingWindow(date string, cfg schedule.ResolvedConfig) error {
	day, err := schedule.ParseDate(date)
	if err != nil {
		return fmt.Errorf("parse date: %w", err)
	}
	now := s.clock.Now().UTC()
	today, _ := schedule.ParseDate(now.Format("2006-01-02"))
	if day.Before(today) {
		return ErrDateInPast
	}
	if cfg.AdvanceBookingDays > 0 && day.After(today.AddDate(0, 0, cfg.AdvanceBookingDays)) {
		return ErrBeyondBookingWindow
	}
	return nil
}

func (s *bookingService) CreateTeeTime(ctx context.Context, courseID uint, date, teeOff string, bookedBy *string, players []PlayerInput) (*models.TeeTime, error) {
	course, cfg, err := s.courseFor(ctx, courseID, date)
	if err != nil {
		return nil, err
	}
	if !schedule.OnGrid(teeOff, cfg) {
		return nil, ErrSlotOffGrid
	}
	if err := s.checkBookingWindow(date, cfg); err != nil {
		return nil, err
	}
	if len(players) > cfg.MaxPlayersPerSlot {
		return nil, ErrSlotFull
	}

	var result *models.TeeTime
	err = s.locker.WithLock(ctx, redislock.SlotKey(courseID, date, teeOff), func(ctx context.Context) error {
		return s.teeTimeRepo.InTx(ctx, func(tx *gorm.DB) error {
			existing, err := s.teeTimeRepo.FindBySlot(ctx, tx, courseID, date, teeOff)
			if err == nil {
				if existing.Status == models.StatusBlocked {
					return ErrSlotBlocked
				}
				return ErrSlotAlreadyBooked
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			teeTime := &models.TeeTime{
				CourseID:         courseID,
				PlayDate:         date,
				TeeOff:           teeOff,
				Status:           models.StatusAvailable,
				BookedByMemberID: bookedBy,
			}
			for _, in := range players {
				player, err := s.buildPlayer(ctx, teeTime, course, cfg, in)
				if err != nil {
					return err
				}
				teeTime.Players = append(teeTime.Players, *player)
			}
			if err := teeTime.Transition(models.StatusBooked); err != nil {
				return err
			}
			teeTime.RecomputeFeeTotals()
			if err := s.teeTimeRepo.Create(ctx, tx, teeTime); err != nil {
				return err
			}
			result = teeTime
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.publishBooking(events.BookingCreated, result)
	s.publishFees(result)
	return result, nil
}

func (s *bookingService) GetTeeTime(ctx context.Context, teeTimeID uint) (*models.TeeTime, error) {
	teeTime, err := s.teeTimeRepo.FindByID(ctx, s.teeTimeRepo.GetDB(), teeTimeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeeTimeNotFound
		}
		return nil, err
	}
	if err := teeTime.ValidatePairingSymmetry(); err != nil {
		return nil, err
	}
	return teeTime, nil
}

// mutate runs fn on a freshly loaded aggregate under the slot lock and a
// transaction, then saves it. Every write path in this service goes
// through here.
func (s *bookingService) mutate(ctx context.Context, teeTimeID uint, fn func(ctx context.Context, tx *gorm.DB, teeTime *models.TeeTime, course *models.GolfCourse, cfg schedule.ResolvedConfig) error) (*models.TeeTime, error) {
	// Load once outside the lock just to learn the slot key.
	ref, err := s.teeTimeRepo.FindByID(ctx, s.teeTimeRepo.GetDB(), teeTimeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeeTimeNotFound
		}
		return nil, err
	}

	course, cfg, err := s.courseFor(ctx, ref.CourseID, ref.PlayDate)
	if err != nil {
		return nil, err
	}

	var result *models.TeeTime
	err = s.locker.WithLock(ctx, redislock.SlotKey(ref.CourseID, ref.PlayDate, ref.TeeOff), func(ctx context.Context) error {
		return s.teeTimeRepo.InTx(ctx, func(tx *gorm.DB) error {
			teeTime, err := s.teeTimeRepo.FindByID(ctx, tx, teeTimeID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrTeeTimeNotFound
				}
				return err
			}
			if err := fn(ctx, tx, teeTime, course, cfg); err != nil {
				return err
			}
			teeTime.RecomputeFeeTotals()
			if err := s.teeTimeRepo.Save(ctx, tx, teeTime); err != nil {
				return err
			}
			result = teeTime
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// editable gates flight-composition changes to pre-round statuses.
func editable(teeTime *models.TeeTime) error {
	switch teeTime.Status {
	case models.StatusBooked, models.StatusCheckedIn:
		return nil
	default:
		return fmt.Errorf("%w: status %s", ErrNotEditable, teeTime.Status)
	}
}

// buildPlayer validates identity, fills the display name and computes the
// player's green and guest fees.
func (s *bookingService) buildPlayer(ctx context.Context, teeTime *models.TeeTime, course *models.GolfCourse, cfg schedule.ResolvedConfig, in PlayerInput) (*models.TeeTimePlayer, error) {
	position := in.Position
	if position == 0 {
		position = firstFreePosition(teeTime, cfg.MaxPlayersPerSlot)
		if position == 0 {
			return nil, ErrSlotFull
		}
	}
	if position < 1 || position > cfg.MaxPlayersPerSlot {
		return nil, fmt.Errorf("%w: %d", ErrInvalidPosition, position)
	}
	if teeTime.PlayerAt(position) != nil {
		return nil, fmt.Errorf("%w: %d", ErrPositionOccupied, position)
	}

	player := &models.TeeTimePlayer{
		Position:   position,
		PlayerType: in.PlayerType,
		CartType:   models.CartWalking,
	}

	var membershipType *string
	switch in.PlayerType {
	case models.PlayerMember:
		if in.MemberID == nil || *in.MemberID == "" {
			return nil, fmt.Errorf("%w: member id", ErrIdentityRequired)
		}
		member, err := s.memberRepo.FindByID(ctx, *in.MemberID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: %s", ErrMemberNotFound, *in.MemberID)
			}
			return nil, err
		}
		if !member.Active {
			return nil, fmt.Errorf("%w: %s", ErrMemberInactive, member.ID)
		}
		player.MemberID = in.MemberID
		player.DisplayName = member.DisplayName
		membershipType = &member.MembershipType
	case models.PlayerGuest:
		if in.GuestName == nil || *in.GuestName == "" {
			return nil, fmt.Errorf("%w: guest name", ErrIdentityRequired)
		}
		player.GuestName = in.GuestName
		player.GuestContact = in.GuestContact
		player.DisplayName = *in.GuestName
		player.GuestFee = rates.RoundCents(course.GuestFee)
	default:
		return nil, fmt.Errorf("%w: player type %q", ErrIdentityRequired, in.PlayerType)
	}

	resolved, err := s.resolver.Resolve(ctx, cfg, course.ID, teeTime.PlayDate, teeTime.TeeOff, membershipType)
	if err != nil {
		return nil, err
	}
	player.GreenFee = rates.CalculateTax(resolved.Amount, course.TaxMode, course.TaxRatePct).Total
	return player, nil
}

func firstFreePosition(teeTime *models.TeeTime, maxPlayers int) int {
	for p := 1; p <= maxPlayers; p++ {
		if teeTime.PlayerAt(p) == nil {
			return p
		}
	}
	return 0
}

func (s *bookingService) AddPlayer(ctx context.Context, teeTimeID uint, in PlayerInput) (*models.TeeTime, error) {
	result, err := s.mutate(ctx, teeTimeID, func(ctx context.Context, tx *gorm.DB, teeTime *models.TeeTime, course *models.GolfCourse, cfg schedule.ResolvedConfig) error {
		if err := editable(teeTime); err != nil {
			return err
		}
		if len(teeTime.Players) >= cfg.MaxPlayersPerSlot {
			return ErrSlotFull
		}
		player, err := s.buildPlayer(ctx, teeTime, course, cfg, in)
		if err != nil {
			return err
		}
		teeTime.Players = append(teeTime.Players, *player)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishFees(result)
	return result, nil
}

func (s *bookingService) RemovePlayer(ctx context.Context, teeTimeID uint, position int) (*models.TeeTime, error) {
	cancelled := false
	result, err := s.mutate(ctx, teeTimeID, func(ctx context.Context, tx *gorm.DB, teeTime *models.TeeTime, course *models.GolfCourse, cfg schedule.ResolvedConfig) error {
		if err := editable(teeTime); err != nil {
			return err
		}
		player := teeTime.PlayerAt(position)
		if player == nil {
			return fmt.Errorf("%w: %d", ErrPositionEmpty, position)
		}

		// Leaving a shared pair puts the peer back on foot.
		if player.SharedWithPosition != nil {
			if peer := teeTime.PlayerAt(*player.SharedWithPosition); peer != nil {
				clearCart(peer)
			}
		}

		if err := s.teeTimeRepo.DeletePlayer(ctx, tx, player.ID); err != nil {
			return err
		}
		kept := teeTime.Players[:0]
		for i := range teeTime.Players {
			if teeTime.Players[i].Position != position {
				kept = append(kept, teeTime.Players[i])
			}
		}
		teeTime.Players = kept

		// An empty flight is not a booking anymore.
		if len(teeTime.Players) == 0 {
			if err := teeTime.Transition(models.StatusCancelled); err != nil {
				return err
			}
			cancelled = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if cancelled {
		s.publishBooking(events.BookingCancelled, result)
	}
	s.publishFees(result)
	return result, nil
}

func clearCart(p *models.TeeTimePlayer) {
	p.CartType = models.CartWalking
	p.CartID = nil
	p.SharedWithPosition = nil
	p.CartFee = 0
}

// checkCartFree verifies a physical cart is not held by another active
// flight at the same date+time. Runs under the cart's resource lock.
func (s *bookingService) checkCartFree(ctx context.Context, tx *gorm.DB, teeTime *models.TeeTime, cartID uint) error {
	count, err := s.teeTimeRepo.CountResourceAssignments(ctx, tx, teeTime.PlayDate, teeTime.TeeOff, &cartID, nil, teeTime.ID)
	if err != nil {
		return err
	}
	if count > 0 {
		return fmt.Errorf("%w: cart %d", ErrCartConflict, cartID)
	}
	return nil
}

func (s *bookingService) AssignCart(ctx context.Context, teeTimeID uint, position int, cartType models.CartType, cartID *uint, sharedWith *int) (*models.TeeTime, error) {
	result, err := s.mutate(ctx, teeTimeID, func(ctx context.Context, tx *gorm.DB, teeTime *models.TeeTime, course *models.GolfCourse, cfg schedule.ResolvedConfig) error {
		if err := editable(teeTime); err != nil {
			return err
		}
		player := teeTime.PlayerAt(position)
		if player == nil {
			return fmt.Errorf("%w: %d", ErrPositionEmpty, position)
		}

		// Pairing either side away from an existing partner is an explicit
		// two-step: drop to walking first, then pair. Validate before any
		// state is cleared so a rejected request leaves nothing stranded.
		if cartType == models.CartShared {
			if sharedWith == nil || *sharedWith == position {
				return ErrInvalidPairing
			}
			peer := teeTime.PlayerAt(*sharedWith)
			if peer == nil {
				return fmt.Errorf("%w: %d", ErrPositionEmpty, *sharedWith)
			}
			if player.SharedWithPosition != nil && *player.SharedWithPosition != *sharedWith {
				return fmt.Errorf("%w: position %d", ErrCartAlreadyPaired, position)
			}
			if peer.SharedWithPosition != nil && *peer.SharedWithPosition != position {
				return fmt.Errorf("%w: position %d", ErrCartAlreadyPaired, *sharedWith)
			}
		}

		// A walking or single assignment starts from a clean state; a
		// previous shared peer goes back on foot.
		if player.SharedWithPosition != nil {
			if peer := teeTime.PlayerAt(*player.SharedWithPosition); peer != nil {
				clearCart(peer)
			}
		}
		clearCart(player)

		switch cartType {
		case models.CartWalking:
			return nil

		case models.CartSingle:
			player.CartType = models.CartSingle
			if cartID == nil {
				return nil
			}
			cart, err := s.lookupCart(ctx, *cartID)
			if err != nil {
				return err
			}
			if err := s.reserveCart(ctx, tx, teeTime, *cartID); err != nil {
				return err
			}
			player.CartID = cartID
			player.CartFee = rates.RoundCents(cart.RentalFee)
			return nil

		case models.CartShared:
			peer := teeTime.PlayerAt(*sharedWith)
			clearCart(peer)

			player.CartType = models.CartShared
			peer.CartType = models.CartShared
			player.SharedWithPosition = sharedWith
			peerBack := position
			peer.SharedWithPosition = &peerBack

			if cartID != nil {
				cart, err := s.lookupCart(ctx, *cartID)
				if err != nil {
					return err
				}
				if err := s.reserveCart(ctx, tx, teeTime, *cartID); err != nil {
					return err
				}
				player.CartID = cartID
				peer.CartID = cartID
				half := rates.RoundCents(cart.RentalFee / 2)
				player.CartFee = half
				peer.CartFee = half
			}
			return nil

		default:
			return fmt.Errorf("%w: cart type %q", ErrInvalidPairing, cartType)
		}
	})
	if err != nil {
		return nil, err
	}
	s.publishFees(result)
	return result, nil
}

func (s *bookingService) lookupCart(ctx context.Context, cartID uint) (*models.GolfCart, error) {
	cart, err := s.resourceRepo.FindCart(ctx, cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", ErrCartNotFound, cartID)
		}
		return nil, err
	}
	if !cart.Active {
		return nil, fmt.Errorf("%w: %d", ErrCartUnavailable, cartID)
	}
	return cart, nil
}

// reserveCart holds the cart's own lock while checking it is free, so two
// different slots cannot grab it at once.
func (s *bookingService) reserveCart(ctx context.Context, tx *gorm.DB, teeTime *models.TeeTime, cartID uint) error {
	for i := range teeTime.Players {
		p := &teeTime.Players[i]
		if p.CartID != nil && *p.CartID == cartID {
			return fmt.Errorf("%w: cart %d", ErrCartConflict, cartID)
		}
	}
	return s.locker.WithLock(ctx, redislock.CartKey(cartID, teeTime.PlayDate, teeTime.TeeOff), func(ctx context.Context) error {
		return s.checkCartFree(ctx, tx, teeTime, cartID)
	})
}

func (s *bookingService) AssignCaddy(ctx context.Context, teeTimeID uint, position int, caddyID *uint) (*models.TeeTime, error) {
	result, err := s.mutate(ctx, teeTimeID, func(ctx context.Context, tx *gorm.DB, teeTime *models.TeeTime, course *models.GolfCourse, cfg schedule.ResolvedConfig) error {
		if err := editable(teeTime); err != nil {
			return err
		}
		player := teeTime.PlayerAt(position)
		if player == nil {
			return fmt.Errorf("%w: %d", ErrPositionEmpty, position)
		}

		if caddyID == nil {
			player.CaddyID = nil
			player.CaddyFee = 0
			return nil
		}

		caddy, err := s.resourceRepo.FindCaddy(ctx, *caddyID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("%w: %d", ErrCaddyNotFound, *caddyID)
			}
			return err
		}
		if !caddy.Active {
			return fmt.Errorf("%w: %d", ErrCaddyUnavailable, *caddyID)
		}

		// A caddy serves exactly one player per round.
		for i := range teeTime.Players {
			p := &teeTime.Players[i]
			if p.Position != position && p.CaddyID != nil && *p.CaddyID == *caddyID {
				return fmt.Errorf("%w: caddy %d", ErrCaddyConflict, *caddyID)
			}
		}
		err = s.locker.WithLock(ctx, redislock.CaddyKey(*caddyID, teeTime.PlayDate, teeTime.TeeOff), func(ctx context.Context) error {
			count, err := s.teeTimeRepo.CountResourceAssignments(ctx, tx, teeTime.PlayDate, teeTime.TeeOff, nil, caddyID, teeTime.ID)
			if err != nil {
				return err
			}
			if count > 0 {
				return fmt.Errorf("%w: caddy %d", ErrCaddyConflict, *caddyID)
			}
			return nil
		})
		if err != nil {
			return err
		}

		player.CaddyID = caddyID
		player.CaddyFee = rates.RoundCents(caddy.RoundFee)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.publishFees(result)
	return result, nil
}

func (s *bookingService) CheckInPlayer(ctx context.Context, teeTimeID uint, position int) (*models.TeeTime, error) {
	transitioned := false
	result, err := s.mutate(ctx, teeTimeID, func(ctx context.Context, tx *gorm.DB, teeTime *models.TeeTime, course *models.GolfCourse, cfg schedule.ResolvedConfig) error {
		if err := editable(teeTime); err != nil {
			return err
		}
		player := teeTime.PlayerAt(position)
		if player == nil {
			return fmt.Errorf("%w: %d", ErrPositionEmpty, position)
		}
		if player.CheckedIn {
			return fmt.Errorf("%w: position %d", ErrAlreadyCheckedIn, position)
		}
		now := s.clock.Now()
		player.CheckedIn = true
		player.CheckedInAt = &now

		if teeTime.Status == models.StatusBooked && s.checkInSatisfied(teeTime) {
			if err := teeTime.Transition(models.StatusCheckedIn); err != nil {
				return err
			}
			transitioned = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if transitioned {
		s.publishBooking(events.BookingCheckedIn, result)
	}
	return result, nil
}

// checkInSatisfied applies the flight check-in policy.
func (s *bookingService) checkInSatisfied(teeTime *models.TeeTime) bool {
	if s.partialCheckIn && teeTime.BookerCheckedIn() {
		return true
	}
	return teeTime.AllCheckedIn()
}

func (s *bookingService) CheckInFlight(ctx context.Context, teeTimeID uint) (*models.TeeTime, error) {
	result, err := s.mutate(ctx, teeTimeID, func(ctx context.Context, tx *gorm.DB, teeTime *models.TeeTime, course *models.GolfCourse, cfg schedule.ResolvedConfig) error {
		if teeTime.Status != models.StatusBooked {
			return &models.InvalidTransitionError{From: teeTime.Status, To: models.StatusCheckedIn}
		}
		now := s.clock.Now()
		for i := range teeTime.Players {
			p := &teeTime.Players[i]
			if !p.CheckedIn {
				p.CheckedIn = true
				p.CheckedInAt = &now
			}
		}
		return teeTime.Transition(models.StatusCheckedIn)
	})
	if err != nil {
		return nil, err
	}
	s.publishBooking(events.BookingCheckedIn, result)
	return result, nil
}

func (s *bookingService) StartRound(ctx context.Context, teeTimeID uint) (*models.TeeTime, error) {
	return s.transitionTo(ctx, teeTimeID, models.StatusStarted, "")
}

func (s *bookingService) CompleteRound(ctx context.Context, teeTimeID uint) (*models.TeeTime, error) {
	result, err := s.transitionTo(ctx, teeTimeID, models.StatusCompleted, events.BookingCompleted)
	if err != nil {
		return nil, err
	}
	// Completion is the billing trigger: final totals go out for invoicing.
	s.publishFees(result)
	return result, nil
}

func (s *bookingService) MarkNoShow(ctx context.Context, teeTimeID uint) (*models.TeeTime, error) {
	return s.transitionTo(ctx, teeTimeID, models.StatusNoShow, events.BookingNoShow)
}

func (s *bookingService) Cancel(ctx context.Context, teeTimeID uint) (*models.TeeTime, error) {
	return s.transitionTo(ctx, teeTimeID, models.StatusCancelled, events.BookingCancelled)
}

func (s *bookingService) transitionTo(ctx context.Context, teeTimeID uint, to models.TeeTimeStatus, eventType string) (*models.TeeTime, error) {
	result, err := s.mutate(ctx, teeTimeID, func(ctx context.Context, tx *gorm.DB, teeTime *models.TeeTime, course *models.GolfCourse, cfg schedule.ResolvedConfig) error {
		return teeTime.Transition(to)
	})
	if err != nil {
		return nil, err
	}
	if eventType != "" {
		s.publishBooking(eventType, result)
	}
	return result, nil
}

func (s *bookingService) BlockSlot(ctx context.Context, courseID uint, date, teeOff string) (*models.TeeTime, error) {
	_, cfg, err := s.courseFor(ctx, courseID, date)
	if err != nil {
		return nil, err
	}
	if !schedule.OnGrid(teeOff, cfg) {
		return nil, ErrSlotOffGrid
	}

	var result *models.TeeTime
	err = s.locker.WithLock(ctx, redislock.SlotKey(courseID, date, teeOff), func(ctx context.Context) error {
		return s.teeTimeRepo.InTx(ctx, func(tx *gorm.DB) error {
			existing, err := s.teeTimeRepo.FindBySlot(ctx, tx, courseID, date, teeOff)
			if err == nil {
				if existing.Status == models.StatusBlocked {
					return ErrSlotBlocked
				}
				return ErrSlotAlreadyBooked
			}
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}

			blocked := &models.TeeTime{
				CourseID: courseID,
				PlayDate: date,
				TeeOff:   teeOff,
				Status:   models.StatusAvailable,
			}
			if err := blocked.Transition(models.StatusBlocked); err != nil {
				return err
			}
			if err := s.teeTimeRepo.Create(ctx, tx, blocked); err != nil {
				return err
			}
			result = blocked
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// UnblockSlot removes a maintenance block. The row is deleted rather than
// kept, an unblocked slot is simply available again.
func (s *bookingService) UnblockSlot(ctx context.Context, courseID uint, date, teeOff string) error {
	return s.locker.WithLock(ctx, redislock.SlotKey(courseID, date, teeOff), func(ctx context.Context) error {
		return s.teeTimeRepo.InTx(ctx, func(tx *gorm.DB) error {
			existing, err := s.teeTimeRepo.FindBySlot(ctx, tx, courseID, date, teeOff)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrSlotNotBlocked
				}
				return err
			}
			if existing.Status != models.StatusBlocked {
				return ErrSlotNotBlocked
			}
			return s.teeTimeRepo.Delete(ctx, tx, existing.ID)
		})
	})
}

// publishBooking emits a lifecycle event. Publishing is best effort: the
// state change is already committed, a broker hiccup must not fail the
// request.
func (s *bookingService) publishBooking(eventType string, teeTime *models.TeeTime) {
	if s.publisher == nil || teeTime == nil {
		return
	}
	event := events.BookingEvent{
		Type:      eventType,
		TeeTimeID: teeTime.ID,
		CourseID:  teeTime.CourseID,
		PlayDate:  teeTime.PlayDate,
		TeeOff:    teeTime.TeeOff,
		MemberID:  teeTime.BookedByMemberID,
	}
	if err := s.publisher.Publish(eventType, event); err != nil {
		log.Printf("[BookingService] failed to publish %s for tee time %d: %v", eventType, teeTime.ID, err)
	}
}

func (s *bookingService) publishFees(teeTime *models.TeeTime) {
	if s.publisher == nil || teeTime == nil {
		return
	}
	event := events.FeeTotalsEvent{
		TeeTimeID:     teeTime.ID,
		CourseID:      teeTime.CourseID,
		PlayDate:      teeTime.PlayDate,
		TeeOff:        teeTime.TeeOff,
		GreenFeeTotal: teeTime.GreenFeeTotal,
		CaddyFeeTotal: teeTime.CaddyFeeTotal,
		CartFeeTotal:  teeTime.CartFeeTotal,
		GuestFeeTotal: teeTime.GuestFeeTotal,
		FeeTotal:      teeTime.FeeTotal,
		InvoiceRef:    teeTime.InvoiceRef,
	}
	if err := s.publisher.Publish(events.FeesUpdated, event); err != nil {
		log.Printf("[BookingService] failed to publish %s for tee time %d: %v", events.FeesUpdated, teeTime.ID, err)
	}
}
