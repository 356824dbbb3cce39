package repository

import (
	"context"

	"github.com/linksclub/teesheet-service/internal/models"
	"gorm.io/gorm"
)

type TeeTimeRepository interface {
	InTx(ctx context.Context, fn func(tx *gorm.DB) error) error
	Create(ctx context.Context, tx *gorm.DB, teeTime *models.TeeTime) error
	Save(ctx context.Context, tx *gorm.DB, teeTime *models.TeeTime) error
	Delete(ctx context.Context, tx *gorm.DB, teeTimeID uint) error
	DeletePlayer(ctx context.Context, tx *gorm.DB, playerID uint) error
	FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.TeeTime, error)
	FindBySlot(ctx context.Context, tx *gorm.DB, courseID uint, date, teeOff string) (*models.TeeTime, error)
	FindByCourseAndDate(ctx context.Context, courseID uint, date string) ([]models.TeeTime, error)
	CountResourceAssignments(ctx context.Context, tx *gorm.DB, date, teeOff string, cartID, caddyID *uint, excludeTeeTimeID uint) (int64, error)
	GetDB() *gorm.DB
}

type teeTimeRepository struct {
	db *gorm.DB
}

func NewTeeTimeRepository(db *gorm.DB) TeeTimeRepository {
	return &teeTimeRepository{db: db}
}

func (r *teeTimeRepository) GetDB() *gorm.DB {
	return r.db
}

// InTx runs fn inside a database transaction.
func (r *teeTimeRepository) InTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func (r *teeTimeRepository) Create(ctx context.Context, tx *gorm.DB, teeTime *models.TeeTime) error {
	return tx.WithContext(ctx).Create(teeTime).Error
}

// Save writes the aggregate and its player rows in one go.
func (r *teeTimeRepository) Save(ctx context.Context, tx *gorm.DB, teeTime *models.TeeTime) error {
	return tx.WithContext(ctx).
		Session(&gorm.Session{FullSaveAssociations: true}).
		Save(teeTime).Error
}

func (r *teeTimeRepository) Delete(ctx context.Context, tx *gorm.DB, teeTimeID uint) error {
	if err := tx.WithContext(ctx).
		Where("tee_time_id = ?", teeTimeID).
		Delete(&models.TeeTimePlayer{}).Error; err != nil {
		return err
	}
	return tx.WithContext(ctx).Delete(&models.TeeTime{}, teeTimeID).Error
}

func (r *teeTimeRepository) DeletePlayer(ctx context.Context, tx *gorm.DB, playerID uint) error {
	return tx.WithContext(ctx).Delete(&models.TeeTimePlayer{}, playerID).Error
}

func (r *teeTimeRepository) FindByID(ctx context.Context, tx *gorm.DB, id uint) (*models.TeeTime, error) {
	var teeTime models.TeeTime
	err := tx.WithContext(ctx).
		Preload("Players", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		First(&teeTime, id).Error
	if err != nil {
		return nil, err
	}
	return &teeTime, nil
}

// FindBySlot returns the tee time occupying a slot. Retired rows
// (CANCELLED, NO_SHOW) free the slot and are skipped.
func (r *teeTimeRepository) FindBySlot(ctx context.Context, tx *gorm.DB, courseID uint, date, teeOff string) (*models.TeeTime, error) {
	var teeTime models.TeeTime
	err := tx.WithContext(ctx).
		Preload("Players", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("course_id = ? AND play_date = ? AND tee_off = ?", courseID, date, teeOff).
		Where("status NOT IN ?", []models.TeeTimeStatus{models.StatusCancelled, models.StatusNoShow}).
		First(&teeTime).Error
	if err != nil {
		return nil, err
	}
	return &teeTime, nil
}

func (r *teeTimeRepository) FindByCourseAndDate(ctx context.Context, courseID uint, date string) ([]models.TeeTime, error) {
	var teeTimes []models.TeeTime
	err := r.db.WithContext(ctx).
		Preload("Players", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Where("course_id = ? AND play_date = ?", courseID, date).
		Order("tee_off ASC").
		Find(&teeTimes).Error
	if err != nil {
		return nil, err
	}
	return teeTimes, nil
}

// CountResourceAssignments counts active tee times at the same date+time that
// already reference the cart or caddy. Callers run it while holding the
// resource lock, so the read is authoritative for the duration of the
// mutation.
func (r *teeTimeRepository) CountResourceAssignments(ctx context.Context, tx *gorm.DB, date, teeOff string, cartID, caddyID *uint, excludeTeeTimeID uint) (int64, error) {
	if cartID == nil && caddyID == nil {
		return 0, nil
	}
	q := tx.WithContext(ctx).
		Model(&models.TeeTimePlayer{}).
		Joins("JOIN tee_times ON tee_times.id = tee_time_players.tee_time_id").
		Where("tee_times.play_date = ? AND tee_times.tee_off = ?", date, teeOff).
		Where("tee_times.status NOT IN ?", []models.TeeTimeStatus{models.StatusCancelled, models.StatusNoShow}).
		Where("tee_times.id <> ?", excludeTeeTimeID)

	switch {
	case cartID != nil && caddyID != nil:
		q = q.Where("tee_time_players.cart_id = ? OR tee_time_players.caddy_id = ?", *cartID, *caddyID)
	case cartID != nil:
		q = q.Where("tee_time_players.cart_id = ?", *cartID)
	default:
		q = q.Where("tee_time_players.caddy_id = ?", *caddyID)
	}

	var count int64
	err := q.Count(&count).Error
	return count, err
}
