package catalog

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog"
)

// fileLoader implements Loader for product files on the local file system.
type fileLoader struct {
	logger zerolog.Logger
}

// NewFileLoader creates a new file-based catalog loader.
func NewFileLoader(logger zerolog.Logger) Loader {
	return &fileLoader{
		logger: logger.With().Str("component", "catalog-loader").Logger(),
	}
}

// Load reads the product file at filePath.
func (l *fileLoader) Load(ctx context.Context, filePath string) (Catalog, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l.logger.Info().Str("file", filePath).Msg("loading product file")

	file, err := os.Open(filePath)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to open product file")
		return nil, fmt.Errorf("failed to open product file %s: %w", filePath, err)
	}
	defer file.Close()

	products, err := decodeProducts(file)
	if err != nil {
		l.logger.Error().Err(err).Str("file", filePath).Msg("failed to read product file")
		return nil, fmt.Errorf("failed to read product file %s: %w", filePath, err)
	}

	index := NewIndex(products)

	l.logger.Info().
		Str("file", filePath).
		Int("products_loaded", index.Size()).
		Msg("product file loaded successfully")

	return index, nil
}
