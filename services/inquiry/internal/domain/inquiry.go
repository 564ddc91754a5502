package domain

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Inquiry kinds. A store order comes from a fixed-product checkout, a quote
// from the custom-apparel request form; both share one lifecycle.
const (
	KindOrder = "order"
	KindQuote = "quote"
)

// ID prefixes, one per kind.
const (
	PrefixOrder = "ORD"
	PrefixQuote = "QT"
)

// Status vocabulary. Any status may follow any other.
const (
	StatusNew        = "New"
	StatusContacted  = "Contacted"
	StatusInProgress = "In Progress"
	StatusCompleted  = "Completed"
	StatusCancelled  = "Cancelled"
)

// ValidStatuses returns every status in display order.
func ValidStatuses() []string {
	return []string{StatusNew, StatusContacted, StatusInProgress, StatusCompleted, StatusCancelled}
}

// IsValidStatus reports whether status belongs to the vocabulary.
func IsValidStatus(status string) bool {
	return slices.Contains(ValidStatuses(), status)
}

// IsValidKind reports whether kind is order or quote.
func IsValidKind(kind string) bool {
	return kind == KindOrder || kind == KindQuote
}

// Contact is the customer's details as submitted.
type Contact struct {
	Name    string `json:"name" validate:"required,max=200"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" validate:"max=40"`
	Company string `json:"company,omitempty" validate:"max=200"`
	Message string `json:"message,omitempty" validate:"max=4000"`
}

// ProductRef names the product a line item was configured from.
type ProductRef struct {
	ID   string `json:"id" validate:"required"`
	Name string `json:"name" validate:"required"`
}

// Item is one submitted line item.
type Item struct {
	Product        ProductRef     `json:"product"`
	Color          string         `json:"color"`
	SizeQuantities map[string]int `json:"sizeQuantities" validate:"required,min=1,dive,gte=1"`
}

// Units is the sum of the item's size quantities.
func (i Item) Units() int {
	n := 0
	for _, q := range i.SizeQuantities {
		n += q
	}
	return n
}

// Inquiry is a submitted order or quote request.
type Inquiry struct {
	ID             string    `json:"id"`
	Kind           string    `json:"kind"`
	Status         string    `json:"status"`
	Contact        Contact   `json:"contact"`
	Items          []Item    `json:"items"`
	SubmissionDate time.Time `json:"submissionDate"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TotalUnits sums the units of every item.
func (q *Inquiry) TotalUnits() int {
	n := 0
	for _, it := range q.Items {
		n += it.Units()
	}
	return n
}

// NewID returns a fresh identifier such as "QT-3F9A12BC".
func NewID(kind string) string {
	prefix := PrefixQuote
	if kind == KindOrder {
		prefix = PrefixOrder
	}
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return prefix + "-" + strings.ToUpper(suffix)
}

// KindFromID derives the kind from an identifier's prefix.
func KindFromID(id string) (string, bool) {
	switch {
	case strings.HasPrefix(id, PrefixOrder+"-"):
		return KindOrder, true
	case strings.HasPrefix(id, PrefixQuote+"-"):
		return KindQuote, true
	default:
		return "", false
	}
}

// TrackView is what an anonymous customer sees when tracking an inquiry:
// status and product names, with contact details reduced to the name.
type TrackView struct {
	ID             string       `json:"id"`
	Kind           string       `json:"kind"`
	Status         string       `json:"status"`
	SubmissionDate time.Time    `json:"submissionDate"`
	Contact        TrackContact `json:"contact"`
	Items          []TrackItem  `json:"items"`
}

// TrackContact is the redacted contact.
type TrackContact struct {
	Name string `json:"name"`
}

// TrackItem is the redacted line item.
type TrackItem struct {
	Product TrackProduct `json:"product"`
}

// TrackProduct is the redacted product reference.
type TrackProduct struct {
	Name string `json:"name"`
}

// Track returns the redacted view.
func (q *Inquiry) Track() TrackView {
	items := make([]TrackItem, len(q.Items))
	for i, it := range q.Items {
		items[i] = TrackItem{Product: TrackProduct{Name: it.Product.Name}}
	}
	return TrackView{
		ID:             q.ID,
		Kind:           q.Kind,
		Status:         q.Status,
		SubmissionDate: q.SubmissionDate,
		Contact:        TrackContact{Name: q.Contact.Name},
		Items:          items,
	}
}

// Stats summarises the inquiry book for the admin dashboard.
type Stats struct {
	Total  int       `json:"total"`
	Orders int       `json:"orders"`
	Quotes int       `json:"quotes"`
	New    int       `json:"new"`
	Recent []Inquiry `json:"recent"`
}
