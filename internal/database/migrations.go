package database

import (
	"apartmentqueue/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

// Models lists every persisted model in dependency order.
var Models = []any{
	&models.Apartment{},
	&models.Application{},
	&models.ApartmentPriority{},
	&models.HitasQueueEntry{},
	&models.Reservation{},
	&models.CostIndex{},
	&models.ApartmentRevaluation{},
	&models.HistoryEvent{},
}

// indexes GORM tags cannot express.
var indexes = []string{
	"CREATE INDEX IF NOT EXISTS idx_priorities_active_apartment ON apartment_priorities(apartment_id) WHERE is_active",
	"CREATE INDEX IF NOT EXISTS idx_history_events_created_at ON history_events(created_at DESC)",
	"CREATE INDEX IF NOT EXISTS idx_revaluations_apartment_created ON apartment_revaluations(apartment_id, created_at DESC)",
	"CREATE UNIQUE INDEX IF NOT EXISTS idx_reservations_open_application ON reservations(application_id) WHERE state = 'reserved'",
}

// AutoMigrate creates tables first and adds foreign keys in a second phase so
// model order never matters.
func AutoMigrate(db *gorm.DB) error {
	log := logger.New("database").Function("AutoMigrate")
	log.Info("Starting database migration")

	db.Config.DisableForeignKeyConstraintWhenMigrating = true
	for _, model := range Models {
		if db.Migrator().HasTable(model) {
			continue
		}
		if err := db.Migrator().CreateTable(model); err != nil {
			return log.Err("failed to create table structure", err, "model", model)
		}
	}

	db.Config.DisableForeignKeyConstraintWhenMigrating = false
	if err := db.AutoMigrate(Models...); err != nil {
		return log.Err("failed to add constraints", err)
	}

	log.Info("Database migration completed successfully")
	return nil
}

func CreateIndexes(db *gorm.DB) error {
	log := logger.New("database").Function("CreateIndexes")

	for _, indexSQL := range indexes {
		if err := db.Exec(indexSQL).Error; err != nil {
			return log.Err("failed to create index", err, "sql", indexSQL)
		}
	}

	log.Info("Additional database indexes created", "count", len(indexes))
	return nil
}

func DropAll(db *gorm.DB) error {
	return db.Migrator().DropTable(Models...)
}
