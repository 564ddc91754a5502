package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	apperrors "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/errors"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/client"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/contentstore"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/domain"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/quote"
)

// Configurator actions.
const (
	ActionSelectColor = "select_color"
	ActionIncrement   = "increment"
	ActionDecrement   = "decrement"
)

// DraftRepository persists quote drafts per session.
type DraftRepository interface {
	Get(ctx context.Context, sessionID string) (*quote.Draft, error)
	Save(ctx context.Context, sessionID string, d *quote.Draft) error
	Delete(ctx context.Context, sessionID string) error
}

// Submitter hands a finished draft to the inquiry service.
type Submitter interface {
	Submit(ctx context.Context, sub quote.Submission) (*client.Receipt, error)
}

// ConfigureInput is one configurator step.
type ConfigureInput struct {
	ProductID string `json:"productId" validate:"required"`
	Action    string `json:"action" validate:"required,oneof=select_color increment decrement"`
	Value     string `json:"value" validate:"max=100"`
}

// AddItemInput adds a line item. Without sizeQuantities the session's
// configurator for the product is used.
type AddItemInput struct {
	ProductID      string         `json:"productId" validate:"required"`
	Color          string         `json:"color,omitempty"`
	SizeQuantities map[string]int `json:"sizeQuantities,omitempty"`
}

// SubmitInput completes a draft.
type SubmitInput struct {
	Kind    string        `json:"kind" validate:"required,oneof=order quote"`
	Contact quote.Contact `json:"contact"`
}

// DraftView is a draft plus derived figures. TotalUnits covers added items
// only; ConfiguringUnits is what the open configurator would add.
type DraftView struct {
	*quote.Draft
	State            quote.State `json:"state"`
	TotalUnits       int         `json:"totalUnits"`
	ConfiguringUnits int         `json:"configuringUnits"`
}

// QuoteService manages per-session quote drafts.
type QuoteService struct {
	drafts    DraftRepository
	store     *contentstore.Store
	submitter Submitter
	logger    *slog.Logger
	now       func() time.Time
}

// NewQuoteService creates a new quote service.
func NewQuoteService(drafts DraftRepository, store *contentstore.Store, submitter Submitter, logger *slog.Logger) *QuoteService {
	return &QuoteService{
		drafts:    drafts,
		store:     store,
		submitter: submitter,
		logger:    logger,
		now:       time.Now,
	}
}

// Get returns the session's draft, empty when none is stored.
func (s *QuoteService) Get(ctx context.Context, sessionID string) (*DraftView, error) {
	d, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return view(d), nil
}

// Configure applies one configurator step. Switching product starts a new
// configuration.
func (s *QuoteService) Configure(ctx context.Context, sessionID string, in ConfigureInput) (*DraftView, error) {
	p, err := s.product(in.ProductID)
	if err != nil {
		return nil, err
	}
	d, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if d.Configuring == nil || d.Configuring.ProductID != p.ID {
		d.Configuring = quote.NewConfigurator(p.ID)
	}
	cfg := d.Configuring

	switch in.Action {
	case ActionSelectColor:
		if in.Value != "" && len(p.AvailableColors) > 0 {
			if _, ok := p.Color(in.Value); !ok {
				return nil, apperrors.InvalidFields(map[string]string{"value": "color is not available for this product"})
			}
		}
		cfg.SelectColor(in.Value)
	case ActionIncrement, ActionDecrement:
		if in.Value == "" {
			return nil, apperrors.InvalidFields(map[string]string{"value": "size is required"})
		}
		if len(p.AvailableSizes) > 0 && !p.HasSize(in.Value) {
			return nil, apperrors.InvalidFields(map[string]string{"value": "size is not available for this product"})
		}
		if in.Action == ActionIncrement {
			cfg.IncrementSize(in.Value)
		} else {
			cfg.DecrementSize(in.Value)
		}
	default:
		return nil, apperrors.InvalidFields(map[string]string{"action": "must be one of: select_color increment decrement"})
	}

	if err := s.drafts.Save(ctx, sessionID, d); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	return view(d), nil
}

// AddItem appends a line item, either from explicit quantities or from the
// session's configurator.
func (s *QuoteService) AddItem(ctx context.Context, sessionID string, in AddItemInput) (*DraftView, error) {
	p, err := s.product(in.ProductID)
	if err != nil {
		return nil, err
	}
	d, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if in.SizeQuantities != nil {
		err = d.AddItem(*p, in.Color, in.SizeQuantities)
	} else {
		if d.Configuring == nil || d.Configuring.ProductID != p.ID {
			d.Configuring = quote.NewConfigurator(p.ID)
		}
		err = d.AddConfigured(*p, d.Configuring)
	}
	if err != nil {
		return nil, validationError(err)
	}

	if err := s.drafts.Save(ctx, sessionID, d); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	s.logger.DebugContext(ctx, "quote item added", slog.String("product_id", p.ID), slog.Int("items", len(d.Items)))
	return view(d), nil
}

// RemoveItem deletes the line item at index.
func (s *QuoteService) RemoveItem(ctx context.Context, sessionID string, index int) (*DraftView, error) {
	d, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := d.RemoveItem(index); err != nil {
		return nil, err
	}
	if err := s.drafts.Save(ctx, sessionID, d); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	return view(d), nil
}

// Clear discards the session's draft.
func (s *QuoteService) Clear(ctx context.Context, sessionID string) error {
	if err := s.drafts.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete draft: %w", err)
	}
	return nil
}

// Submit sends the draft to the inquiry service and clears it on success.
func (s *QuoteService) Submit(ctx context.Context, sessionID string, in SubmitInput) (*client.Receipt, error) {
	d, err := s.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	sub, err := d.Submission(in.Kind, in.Contact, s.now())
	if err != nil {
		return nil, validationError(err)
	}

	receipt, err := s.submitter.Submit(ctx, sub)
	if err != nil {
		return nil, fmt.Errorf("submit inquiry: %w", err)
	}

	if err := s.drafts.Delete(ctx, sessionID); err != nil {
		s.logger.WarnContext(ctx, "inquiry submitted but draft not cleared",
			slog.String("inquiry_id", receipt.ID),
			slog.String("error", err.Error()),
		)
	}
	s.logger.InfoContext(ctx, "inquiry submitted",
		slog.String("inquiry_id", receipt.ID),
		slog.String("kind", in.Kind),
		slog.Int("units", d.TotalUnits()),
	)
	return receipt, nil
}

func (s *QuoteService) load(ctx context.Context, sessionID string) (*quote.Draft, error) {
	if sessionID == "" {
		return nil, apperrors.InvalidInput("session id is required")
	}
	d, err := s.drafts.Get(ctx, sessionID)
	if apperrors.IsNotFound(err) {
		return &quote.Draft{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get draft: %w", err)
	}
	return d, nil
}

func (s *QuoteService) product(id string) (*domain.Product, error) {
	p, ok := domain.FindProduct(s.store.Products(), id)
	if !ok {
		return nil, apperrors.NotFound("product", id)
	}
	return p, nil
}

func view(d *quote.Draft) *DraftView {
	v := &DraftView{Draft: d, State: quote.StateUnconfigured, TotalUnits: d.TotalUnits()}
	if d.Configuring != nil {
		v.State = d.Configuring.State()
		v.ConfiguringUnits = d.Configuring.TotalUnits()
	}
	if d.Items == nil {
		d.Items = []quote.Item{}
	}
	return v
}

// validationError converts a draft validation failure into a field error.
func validationError(err error) error {
	var vErr *quote.ValidationError
	if errors.As(err, &vErr) {
		return apperrors.InvalidFields(vErr.Fields)
	}
	return err
}
