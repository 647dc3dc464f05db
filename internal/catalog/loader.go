package catalog

import (
	"context"
	"fmt"
	"os"

	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// SeedLoader loads a seed catalogue from a named location.
type SeedLoader interface {
	Load(ctx context.Context, path string) ([]model.Product, error)
}

// fileLoader implements SeedLoader for local JSON files, plain or gzipped.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based seed loader.
func NewFileLoader(logger zerolog.Logger) SeedLoader {
	return &fileLoader{
		logger: logger.With().Str("component", "seed-loader").Logger(),
	}
}

// Load reads a JSON array of products from filePath.
func (l *fileLoader) Load(ctx context.Context, filePath string) ([]model.Product, error) {
	l.logger.Info().Str("file", filePath).Msg("loading seed catalogue")

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open seed catalogue")
		return nil, fmt.Errorf("failed to open seed catalogue %s: %w", filePath, err)
	}
	defer file.Close()

	products, err := decodeProducts(file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to read seed catalogue")
		return nil, fmt.Errorf("failed to read seed catalogue %s: %w", filePath, err)
	}

	l.logger.Info().
		Str("file", filePath).
		Int("products_loaded", len(products)).
		Msg("seed catalogue loaded successfully")

	return products, nil
}

// LoadSeed resolves the seed catalogue. An empty path selects the built-in
// list; a failing loader is logged and also falls back to the built-in list.
func LoadSeed(ctx context.Context, loader SeedLoader, path string, logger zerolog.Logger) []model.Product {
	if path == "" || loader == nil {
		return BuiltinSeed()
	}

	products, err := loader.Load(ctx, path)
	if err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("using built-in seed catalogue")
		return BuiltinSeed()
	}
	return products
}
