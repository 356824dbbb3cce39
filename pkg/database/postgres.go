package database

import (
	"log"

	"github.com/linksclub/teesheet-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.GolfCourse{},
		&models.TeeSheetConfig{},
		&models.TeeSheetOverride{},
		&models.GreenFeeRate{},
		&models.Caddy{},
		&models.GolfCart{},
		&models.Member{},
		&models.TeeTime{},
		&models.TeeTimePlayer{},
	); err != nil {
		log.Fatalf("failed to auto-migrate: %v", err)
	}

	// One live tee time per slot: cancelled/no-show rows are retired history
	// and must not block rebooking the slot.
	db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_tee_time_slot_active
		ON tee_times (course_id, play_date, tee_off)
		WHERE status NOT IN ('CANCELLED', 'NO_SHOW')
	`)

	// Cross-slot cart/caddy conflict checks join players to their parent
	// tee time by date+time; these keep that read cheap.
	db.Exec(`CREATE INDEX IF NOT EXISTS idx_player_cart ON tee_time_players (cart_id) WHERE cart_id IS NOT NULL`)
	db.Exec(`CREATE INDEX IF NOT EXISTS idx_player_caddy ON tee_time_players (caddy_id) WHERE caddy_id IS NOT NULL`)

	return db
}
