package store

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"portfolio-assistant-go/internal/cache"
	"portfolio-assistant-go/internal/models"
	"portfolio-assistant-go/internal/symbols"
)

// AliasStore resolves spoken company names to tickers using the
// database-backed alias table, extending the normalizer's built-in set.
// Lookups are cached in redis when available.
type AliasStore struct {
	db     *gorm.DB
	cache  *cache.Cache
	logger *zap.Logger
}

// NewAliasStore creates a new AliasStore. cache may be nil.
func NewAliasStore(db *gorm.DB, c *cache.Cache, logger *zap.Logger) *AliasStore {
	return &AliasStore{db: db, cache: c, logger: logger}
}

// Resolve looks up a single alias. The built-in set is consulted first so
// the common names never touch the database.
func (s *AliasStore) Resolve(ctx context.Context, raw string) (string, bool) {
	if sym, ok := symbols.Normalize(raw); ok {
		return sym, true
	}

	alias := strings.ToLower(strings.TrimSpace(raw))
	if alias == "" {
		return "", false
	}
	if sym, ok := s.cache.GetSymbol(ctx, alias); ok {
		return sym, true
	}

	var row models.SymbolAlias
	err := s.db.WithContext(ctx).Where("alias = ?", alias).First(&row).Error
	if err != nil {
		if err != gorm.ErrRecordNotFound {
			s.logger.Warn("Alias lookup failed", zap.String("alias", alias), zap.Error(err))
		}
		return "", false
	}
	s.cache.SetSymbol(ctx, alias, row.Symbol)
	return row.Symbol, true
}

// ResolveText scans free text for any stored alias. Aliases are matched
// on word boundaries in alphabetical order so a text naming several
// companies always resolves to the same one.
func (s *AliasStore) ResolveText(ctx context.Context, text string) (string, bool) {
	var rows []models.SymbolAlias
	if err := s.db.WithContext(ctx).Order("alias asc").Find(&rows).Error; err != nil {
		s.logger.Warn("Alias scan failed", zap.Error(err))
		return "", false
	}

	lower := strings.ToLower(text)
	for _, row := range rows {
		if symbols.ContainsWord(lower, row.Alias) {
			s.cache.SetSymbol(ctx, row.Alias, row.Symbol)
			return row.Symbol, true
		}
	}
	return "", false
}
