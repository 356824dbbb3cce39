package repository

import (
	"context"

	"github.com/linksclub/teesheet-service/internal/models"
	"gorm.io/gorm"
)

type RateRepository interface {
	FindActiveByCourse(ctx context.Context, courseID uint) ([]models.GreenFeeRate, error)
}

type rateRepository struct {
	db *gorm.DB
}

func NewRateRepository(db *gorm.DB) RateRepository {
	return &rateRepository{db: db}
}

// FindActiveByCourse loads the whole active rate table for a course;
// effective-date filtering and specificity ranking happen in the resolver.
func (r *rateRepository) FindActiveByCourse(ctx context.Context, courseID uint) ([]models.GreenFeeRate, error) {
	var rates []models.GreenFeeRate
	err := r.db.WithContext(ctx).
		Where("course_id = ? AND active = ?", courseID, true).
		Order("id ASC").
		Find(&rates).Error
	if err != nil {
		return nil, err
	}
	return rates, nil
}
