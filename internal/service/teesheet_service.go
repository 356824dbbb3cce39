package service

import (
	"context"
	"errors"
	"sort"

	"github.com/linksclub/teesheet-service/internal/models"
	"github.com/linksclub/teesheet-service/internal/repository"
	"github.com/linksclub/teesheet-service/internal/schedule"
	"gorm.io/gorm"
)

// SheetEntry is one row of the day view: a grid slot, its occupying tee
// time if any, and whether the entry sits outside the current grid.
// Off-grid entries appear when the schedule config changed after booking;
// they are surfaced rather than hidden so staff can resolve them.
type SheetEntry struct {
	Time    string               `json:"time"`
	Status  models.TeeTimeStatus `json:"status"`
	TeeTime *models.TeeTime      `json:"tee_time,omitempty"`
	OffGrid bool                 `json:"off_grid,omitempty"`
}

// DaySheet is the full tee sheet for one course and date.
type DaySheet struct {
	CourseID uint           `json:"course_id"`
	Date     string         `json:"date"`
	DayType  models.DayType `json:"day_type"`
	Entries  []SheetEntry   `json:"entries"`
}

type TeeSheetService interface {
	GetDay(ctx context.Context, courseID uint, date string) (*DaySheet, error)
}

type teeSheetService struct {
	teeTimeRepo repository.TeeTimeRepository
	courseRepo  repository.CourseRepository
	holidays    schedule.HolidayCalendar
}

func NewTeeSheetService(teeTimeRepo repository.TeeTimeRepository, courseRepo repository.CourseRepository, holidays schedule.HolidayCalendar) TeeSheetService {
	return &teeSheetService{
		teeTimeRepo: teeTimeRepo,
		courseRepo:  courseRepo,
		holidays:    holidays,
	}
}

// GetDay joins the generated slot grid with the persisted tee times.
// Empty slots render as AVAILABLE; a day with no bookings at all is a full
// grid of available entries, never an error.
func (s *teeSheetService) GetDay(ctx context.Context, courseID uint, date string) (*DaySheet, error) {
	course, err := s.courseRepo.FindByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if course.Config == nil {
		return nil, ErrCourseNotConfigured
	}
	day, err := schedule.ParseDate(date)
	if err != nil {
		return nil, err
	}
	dayType := schedule.ClassifyDay(day, s.holidays)
	cfg := schedule.ResolveConfig(course.Config, dayType)

	slots, err := schedule.GenerateSlots(courseID, date, cfg)
	if err != nil {
		return nil, err
	}

	teeTimes, err := s.teeTimeRepo.FindByCourseAndDate(ctx, courseID, date)
	if err != nil {
		return nil, err
	}
	byTime := make(map[string]*models.TeeTime, len(teeTimes))
	for i := range teeTimes {
		tt := &teeTimes[i]
		if tt.Status.Terminal() {
			continue
		}
		byTime[tt.TeeOff] = tt
	}

	entries := make([]SheetEntry, 0, len(slots))
	for _, slot := range slots {
		entry := SheetEntry{Time: slot.Time, Status: models.StatusAvailable}
		if tt, ok := byTime[slot.Time]; ok {
			entry.Status = tt.Status
			entry.TeeTime = tt
			delete(byTime, slot.Time)
		}
		entries = append(entries, entry)
	}

	// Anything left over was booked under an older grid.
	for _, tt := range byTime {
		entries = append(entries, SheetEntry{
			Time:    tt.TeeOff,
			Status:  tt.Status,
			TeeTime: tt,
			OffGrid: true,
		})
	}
	// Times are zero-padded HH:MM, lexical order is chronological.
	sort.Slice(entries, func(i, j int) bool { return entries[i].Time < entries[j].Time })

	return &DaySheet{
		CourseID: courseID,
		Date:     date,
		DayType:  dayType,
		Entries:  entries,
	}, nil
}
