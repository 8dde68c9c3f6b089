package models

import "gorm.io/gorm"

// SymbolAlias maps a spoken or written company name to its ticker symbol.
// A built-in set is seeded at migration time; rows added later extend it.
type SymbolAlias struct {
	gorm.Model
	Alias  string `gorm:"uniqueIndex"`
	Symbol string `gorm:"not null"`
}
