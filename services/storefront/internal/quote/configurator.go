// Package quote holds the customer's quote draft: a configurator for the
// item being built and the list of line items already added.
package quote

import (
	"maps"
	"slices"
	"strings"

	apperrors "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/errors"
)

// State is the configurator's progress towards a line item.
type State string

const (
	StateUnconfigured  State = "unconfigured"
	StateColorSelected State = "color_selected"
	StateSizesSelected State = "sizes_selected"
	StateReady         State = "ready"
)

// ValidationError lists every field that blocks adding an item.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := slices.Sorted(maps.Keys(e.Fields))
	msgs := make([]string, len(keys))
	for i, k := range keys {
		msgs[i] = k + " " + e.Fields[k]
	}
	return "quote item invalid: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() error { return apperrors.ErrInvalidInput }

// Configurator tracks the colour and per-size quantities for one product.
// Quantities are always positive; a size at zero has no entry.
type Configurator struct {
	ProductID      string         `json:"productId"`
	Color          string         `json:"color,omitempty"`
	SizeQuantities map[string]int `json:"sizeQuantities"`
}

// NewConfigurator starts an empty configuration for productID.
func NewConfigurator(productID string) *Configurator {
	return &Configurator{ProductID: productID, SizeQuantities: map[string]int{}}
}

// SelectColor sets the colour. An empty name clears it.
func (c *Configurator) SelectColor(name string) {
	c.Color = name
}

// IncrementSize adds one unit of size.
func (c *Configurator) IncrementSize(size string) {
	if c.SizeQuantities == nil {
		c.SizeQuantities = map[string]int{}
	}
	c.SizeQuantities[size]++
}

// DecrementSize removes one unit of size. The entry is deleted when it
// reaches zero; an absent size is left alone.
func (c *Configurator) DecrementSize(size string) {
	n, ok := c.SizeQuantities[size]
	if !ok {
		return
	}
	if n <= 1 {
		delete(c.SizeQuantities, size)
		return
	}
	c.SizeQuantities[size] = n - 1
}

// State reports progress. Sizes may be chosen before a colour, which gives
// StateSizesSelected; only a colour plus at least one size is StateReady.
func (c *Configurator) State() State {
	hasColor := c.Color != ""
	hasSizes := len(c.SizeQuantities) > 0
	switch {
	case hasColor && hasSizes:
		return StateReady
	case hasSizes:
		return StateSizesSelected
	case hasColor:
		return StateColorSelected
	}
	return StateUnconfigured
}

// ValidateBeforeSubmit fails unless a colour and at least one size are set.
// Both problems are reported together.
func (c *Configurator) ValidateBeforeSubmit() error {
	fields := map[string]string{}
	if c.Color == "" {
		fields["color"] = "please select a color"
	}
	if len(c.SizeQuantities) == 0 {
		fields["sizes"] = "please select at least one size"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// TotalUnits sums the configured quantities.
func (c *Configurator) TotalUnits() int {
	total := 0
	for _, n := range c.SizeQuantities {
		total += n
	}
	return total
}

// Reset clears colour and sizes, keeping the product.
func (c *Configurator) Reset() {
	c.Color = ""
	c.SizeQuantities = map[string]int{}
}
