package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"portfolio-assistant-go/internal/config"
	"portfolio-assistant-go/internal/models"
)

// NewDatabase creates a new database connection and performs auto-migration.
func NewDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Database.DSN), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

// AutoMigrate creates the schema and seeds the built-in symbol aliases.
// Trade records are never dropped: they are the immutable source feed.
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.TradeRecord{},
		&models.Conversation{},
		&models.Message{},
		&models.SymbolAlias{},
	)
	if err != nil {
		return fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	for alias, symbol := range seedAliases {
		row := models.SymbolAlias{Alias: alias, Symbol: symbol}
		if err := db.FirstOrCreate(&row, models.SymbolAlias{Alias: alias}).Error; err != nil {
			return fmt.Errorf("failed to seed alias %q: %w", alias, err)
		}
	}

	return nil
}

// seedAliases are spoken-name to ticker mappings beyond the normalizer's
// built-in set; voice transcription tends to produce these longer forms.
var seedAliases = map[string]string{
	"apple inc":              "AAPL",
	"microsoft corp":         "MSFT",
	"tesla motors":           "TSLA",
	"advanced micro devices": "AMD",
	"bank of america":        "BAC",
	"berkshire":              "BRK.B",
	"jp morgan":              "JPM",
	"johnson and johnson":    "JNJ",
	"coca cola":              "KO",
	"exxon":                  "XOM",
}
