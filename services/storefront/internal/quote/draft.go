package quote

import (
	"maps"
	"strconv"
	"time"

	apperrors "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/errors"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/domain"
)

// Submission kinds understood by the inquiry service.
const (
	KindOrder = "order"
	KindQuote = "quote"
)

// ProductRef is the product snapshot carried by a line item.
type ProductRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Item is one line of the draft.
type Item struct {
	Product        ProductRef     `json:"product"`
	Color          string         `json:"color"`
	SizeQuantities map[string]int `json:"sizeQuantities"`
}

// Units sums the item's quantities.
func (i Item) Units() int {
	total := 0
	for _, n := range i.SizeQuantities {
		total += n
	}
	return total
}

// Contact is who the quote comes from.
type Contact struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" validate:"max=40"`
	Company string `json:"company,omitempty" validate:"max=200"`
	Message string `json:"message,omitempty" validate:"max=4000"`
}

// Submission is the payload handed to the inquiry service.
type Submission struct {
	Kind           string    `json:"kind"`
	Contact        Contact   `json:"contact"`
	Items          []Item    `json:"items"`
	SubmissionDate time.Time `json:"submissionDate"`
}

// Draft is a session's quote in progress.
type Draft struct {
	Items       []Item        `json:"items"`
	Configuring *Configurator `json:"configuring,omitempty"`
}

// AddItem appends a line item. Identical product and colour combinations are
// not merged. The colour and sizes must belong to the product when it lists
// any, and every quantity must be positive.
func (d *Draft) AddItem(p domain.Product, color string, sizeQuantities map[string]int) error {
	fields := map[string]string{}
	switch {
	case color == "":
		fields["color"] = "please select a color"
	case len(p.AvailableColors) > 0:
		if _, ok := p.Color(color); !ok {
			fields["color"] = "is not available for this product"
		}
	}

	if len(sizeQuantities) == 0 {
		fields["sizes"] = "please select at least one size"
	}
	for size, n := range sizeQuantities {
		if n < 1 {
			fields["sizes"] = "quantity for " + size + " must be at least 1"
			break
		}
		if len(p.AvailableSizes) > 0 && !p.HasSize(size) {
			fields["sizes"] = size + " is not available for this product"
			break
		}
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}

	d.Items = append(d.Items, Item{
		Product:        ProductRef{ID: p.ID, Name: p.Name},
		Color:          color,
		SizeQuantities: maps.Clone(sizeQuantities),
	})
	return nil
}

// AddConfigured validates cfg, appends it as an item and resets it.
func (d *Draft) AddConfigured(p domain.Product, cfg *Configurator) error {
	if err := cfg.ValidateBeforeSubmit(); err != nil {
		return err
	}
	if err := d.AddItem(p, cfg.Color, cfg.SizeQuantities); err != nil {
		return err
	}
	cfg.Reset()
	return nil
}

// RemoveItem deletes the item at index.
func (d *Draft) RemoveItem(index int) error {
	if index < 0 || index >= len(d.Items) {
		return apperrors.NotFound("quote item", strconv.Itoa(index))
	}
	d.Items = append(d.Items[:index], d.Items[index+1:]...)
	return nil
}

// Clear drops every item and the configurator.
func (d *Draft) Clear() {
	d.Items = nil
	d.Configuring = nil
}

// TotalUnits sums quantities across all items.
func (d *Draft) TotalUnits() int {
	total := 0
	for _, it := range d.Items {
		total += it.Units()
	}
	return total
}

// Submission builds the inquiry payload. An empty draft cannot be submitted.
func (d *Draft) Submission(kind string, contact Contact, now time.Time) (Submission, error) {
	if len(d.Items) == 0 {
		return Submission{}, &ValidationError{Fields: map[string]string{"items": "must contain at least 1 item"}}
	}
	items := make([]Item, len(d.Items))
	for i, it := range d.Items {
		it.SizeQuantities = maps.Clone(it.SizeQuantities)
		items[i] = it
	}
	return Submission{
		Kind:           kind,
		Contact:        contact,
		Items:          items,
		SubmissionDate: now.UTC(),
	}, nil
}
