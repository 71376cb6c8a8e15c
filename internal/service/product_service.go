package service

import (
	"context"
	"fmt"
	"strings"

	"storefront/internal/catalog"
	"storefront/internal/localstore"
	"storefront/internal/model"

	"github.com/rs/zerolog"
)

// productService implements ProductService.
type productService struct {
	catalog catalog.Catalog
	local   localstore.Store
	logger  zerolog.Logger
}

// NewProductService creates a new product service.
func NewProductService(c catalog.Catalog, local localstore.Store, logger zerolog.Logger) ProductService {
	return &productService{
		catalog: c,
		local:   local,
		logger:  logger.With().Str("service", "product").Logger(),
	}
}

// List returns products in catalogue order.
func (s *productService) List(_ context.Context, category string) []model.Product {
	all := s.catalog.All()
	if category == "" {
		return all
	}

	filtered := make([]model.Product, 0, len(all))
	for _, p := range all {
		if strings.EqualFold(p.Category, category) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

// GetByID retrieves a single product by ID.
func (s *productService) GetByID(_ context.Context, id string) (*model.Product, error) {
	if id == "" {
		s.logger.Warn().Msg("product ID is empty")
		return nil, model.ErrProductNotFound
	}

	p, ok := s.catalog.Get(model.ItemID(id))
	if !ok {
		s.logger.Debug().Str("product_id", id).Msg("product not found")
		return nil, model.ErrProductNotFound
	}
	return &p, nil
}

// Selected returns the product last selected from the session's cart.
func (s *productService) Selected(ctx context.Context, sessionID string) (*model.Product, error) {
	id, err := s.local.SelectedProduct(ctx, sessionID)
	if err != nil {
		s.logger.Error().Err(err).Str("session_id", sessionID).Msg("failed to read selected product")
		return nil, fmt.Errorf("failed to read selected product: %w", err)
	}
	return s.GetByID(ctx, id.String())
}
