package repository

import (
	"context"

	"github.com/linksclub/teesheet-service/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MemberRepository interface {
	FindByID(ctx context.Context, id string) (*models.Member, error)
	Upsert(ctx context.Context, member *models.Member) error
}

type memberRepository struct {
	db *gorm.DB
}

func NewMemberRepository(db *gorm.DB) MemberRepository {
	return &memberRepository{db: db}
}

func (r *memberRepository) FindByID(ctx context.Context, id string) (*models.Member, error) {
	var member models.Member
	if err := r.db.WithContext(ctx).First(&member, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &member, nil
}

// Upsert inserts or refreshes the denormalized directory copy.
func (r *memberRepository) Upsert(ctx context.Context, member *models.Member) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"display_name", "membership_type", "contact", "active", "updated_at"}),
	}).Create(member).Error
}
