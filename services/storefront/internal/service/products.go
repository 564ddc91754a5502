package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	apperrors "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/errors"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/validator"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/catalogue"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/contentstore"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/domain"
)

const productsKey = "products"

// ProductService implements the admin catalogue operations. Every mutation
// rewrites the whole products segment through the content store.
type ProductService struct {
	store  *contentstore.Store
	logger *slog.Logger

	// Serialises read-modify-write of the products segment in this replica.
	mu sync.Mutex
}

// NewProductService creates a new admin product service.
func NewProductService(store *contentstore.Store, logger *slog.Logger) *ProductService {
	return &ProductService{store: store, logger: logger}
}

// List returns the admin product table.
func (s *ProductService) List(q catalogue.AdminQuery) ([]domain.Product, error) {
	if !catalogue.ValidSortKey(q.SortKey) {
		return nil, apperrors.InvalidFields(map[string]string{"sort": "unknown sort key " + q.SortKey})
	}
	return catalogue.AdminList(s.store.Products(), q), nil
}

// Create adds a product. The id is trimmed and upper-cased; gender defaults
// to Unisex and lead time to two weeks; the product is placed last.
func (s *ProductService) Create(ctx context.Context, p domain.Product, token string) (*domain.Product, contentstore.ReplaceResult, error) {
	p.ID = strings.ToUpper(strings.TrimSpace(p.ID))
	if err := validator.Validate(newProductRef{ID: p.ID}); err != nil {
		return nil, contentstore.ReplaceResult{}, fieldError(err)
	}
	if p.Gender == "" {
		p.Gender = domain.GenderUnisex
	}
	if p.LeadTimeWeeks == nil {
		weeks := domain.DefaultLeadTimeWeeks
		p.LeadTimeWeeks = &weeks
	}
	normalise(&p)
	if err := validateProduct(&p); err != nil {
		return nil, contentstore.ReplaceResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	products := s.store.Products()
	if _, exists := domain.FindProduct(products, p.ID); exists {
		return nil, contentstore.ReplaceResult{}, apperrors.AlreadyExists("product", "id", p.ID)
	}
	p.DisplayOrder = len(products)
	products = append(products, p)

	res, err := s.store.Replace(ctx, productsKey, products, token)
	if !res.Applied {
		return nil, res, err
	}
	s.logger.InfoContext(ctx, "product created", slog.String("product_id", p.ID), slog.Bool("persisted", res.Persisted))
	return &p, res, err
}

// Update replaces the product with id. The id and display order are kept.
func (s *ProductService) Update(ctx context.Context, id string, p domain.Product, token string) (*domain.Product, contentstore.ReplaceResult, error) {
	normalise(&p)

	s.mu.Lock()
	defer s.mu.Unlock()

	products := s.store.Products()
	existing, ok := domain.FindProduct(products, id)
	if !ok {
		return nil, contentstore.ReplaceResult{}, apperrors.NotFound("product", id)
	}
	p.ID = existing.ID
	p.DisplayOrder = existing.DisplayOrder
	if err := validateProduct(&p); err != nil {
		return nil, contentstore.ReplaceResult{}, err
	}
	*existing = p

	res, err := s.store.Replace(ctx, productsKey, products, token)
	if !res.Applied {
		return nil, res, err
	}
	s.logger.InfoContext(ctx, "product updated", slog.String("product_id", id), slog.Bool("persisted", res.Persisted))
	return &p, res, err
}

// Delete removes the product with id. Banners and hero slides referring to
// it are left dangling.
func (s *ProductService) Delete(ctx context.Context, id, token string) (contentstore.ReplaceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := s.store.Products()
	kept := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(products) {
		return contentstore.ReplaceResult{}, apperrors.NotFound("product", id)
	}

	res, err := s.store.Replace(ctx, productsKey, kept, token)
	if res.Applied {
		s.logger.InfoContext(ctx, "product deleted", slog.String("product_id", id), slog.Bool("persisted", res.Persisted))
	}
	return res, err
}

// Reorder sets displayOrder to each product's position in ids, which must
// name every product exactly once.
func (s *ProductService) Reorder(ctx context.Context, ids []string, token string) ([]domain.Product, contentstore.ReplaceResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	products := s.store.Products()
	if len(ids) != len(products) {
		return nil, contentstore.ReplaceResult{}, apperrors.InvalidInput(
			fmt.Sprintf("reorder must list all %d products, got %d", len(products), len(ids)))
	}

	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	ordered := make([]domain.Product, 0, len(ids))
	for i, id := range ids {
		p, ok := byID[id]
		if !ok {
			return nil, contentstore.ReplaceResult{}, apperrors.InvalidInput(fmt.Sprintf("unknown or repeated product %q", id))
		}
		delete(byID, id)
		p.DisplayOrder = i
		ordered = append(ordered, p)
	}

	res, err := s.store.Replace(ctx, productsKey, ordered, token)
	if !res.Applied {
		return nil, res, err
	}
	return ordered, res, err
}

// ReplaceContent writes a whole segment. Typed segments are validated
// entry by entry first.
func (s *ProductService) ReplaceContent(ctx context.Context, key string, value json.RawMessage, token string) (contentstore.ReplaceResult, error) {
	if !contentstore.IsKnownKey(key) {
		return contentstore.ReplaceResult{}, apperrors.NotFound("segment", key)
	}
	if err := validateSegment(key, value); err != nil {
		return contentstore.ReplaceResult{}, err
	}

	if key == productsKey {
		s.mu.Lock()
		defer s.mu.Unlock()
	}
	res, err := s.store.Replace(ctx, key, value, token)
	if res.Applied {
		s.logger.InfoContext(ctx, "segment replaced", slog.String("key", key), slog.Bool("persisted", res.Persisted))
	}
	return res, err
}

// Reload re-fetches every segment from the content service.
func (s *ProductService) Reload(ctx context.Context) contentstore.LoadReport {
	return s.store.Load(ctx)
}

// LoadReport returns the most recent load outcome.
func (s *ProductService) LoadReport() contentstore.LoadReport {
	return s.store.LastLoad()
}

// normalise gives every available colour an image list, so images can be
// added per colour later.
func normalise(p *domain.Product) {
	if p.ImageURLs == nil {
		p.ImageURLs = map[string][]string{}
	}
	for _, c := range p.AvailableColors {
		if _, ok := p.ImageURLs[c.Name]; !ok {
			p.ImageURLs[c.Name] = []string{}
		}
	}
}

// newProductRef is the identifier a new product must carry. Stored
// segments are not held to this format.
type newProductRef struct {
	ID string `json:"id" validate:"required,productid"`
}

func fieldError(err error) error {
	var valErr *validator.ValidationError
	if errors.As(err, &valErr) {
		return apperrors.InvalidFields(valErr.Fields())
	}
	return err
}

func validateProduct(p *domain.Product) error {
	if err := validator.Validate(p); err != nil {
		return fieldError(err)
	}
	if field, name, dup := p.DuplicateVariant(); dup {
		return apperrors.InvalidFields(map[string]string{field: fmt.Sprintf("duplicate name %q", name)})
	}
	return nil
}

func validateSegment(key string, value json.RawMessage) error {
	switch key {
	case productsKey:
		var products []domain.Product
		if err := json.Unmarshal(value, &products); err != nil {
			return apperrors.InvalidInput(fmt.Sprintf("segment %s: %v", key, err))
		}
		seen := make(map[string]struct{}, len(products))
		for i := range products {
			if err := validateEntry(i, &products[i]); err != nil {
				return err
			}
			if _, dup := seen[products[i].ID]; dup {
				return apperrors.AlreadyExists("product", "id", products[i].ID)
			}
			seen[products[i].ID] = struct{}{}
		}
	case "heroContents":
		var heroes []domain.HeroContent
		if err := json.Unmarshal(value, &heroes); err != nil {
			return apperrors.InvalidInput(fmt.Sprintf("segment %s: %v", key, err))
		}
		for i := range heroes {
			if err := validateEntry(i, &heroes[i]); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateEntry(i int, entry any) error {
	var err error
	if p, ok := entry.(*domain.Product); ok {
		err = validateProduct(p)
	} else {
		err = validator.Validate(entry)
	}
	if err == nil {
		return nil
	}

	var valErr *validator.ValidationError
	var appErr *apperrors.AppError
	fields := map[string]string{}
	switch {
	case errors.As(err, &valErr):
		for f, msg := range valErr.Fields() {
			fields[fmt.Sprintf("[%d].%s", i, f)] = msg
		}
	case errors.As(err, &appErr) && len(appErr.Fields) > 0:
		for f, msg := range appErr.Fields {
			fields[fmt.Sprintf("[%d].%s", i, f)] = msg
		}
	default:
		return err
	}
	return apperrors.InvalidFields(fields)
}
