// Package contentstore holds the storefront's in-memory snapshot of content
// segments. The snapshot starts from the built-in defaults, is refreshed from
// the content service, and is replaced one whole segment at a time.
package contentstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/errors"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/pkg/seed"
	"github.com/LVL-STS-CSTM/STATSCUSTOMS/services/storefront/internal/domain"
)

// KnownKeys is the fixed set of segments fetched by Load.
var KnownKeys = slices.Clone(seed.Keys)

const defaultLoadConcurrency = 8

// Remote is the content service as seen by the store.
type Remote interface {
	// Fetch returns the stored value, an apperrors.NotFound error when the
	// key has never been written, or an apperrors.Unavailable error.
	Fetch(ctx context.Context, key string) (json.RawMessage, error)

	// Save replaces the stored value using the admin bearer token.
	Save(ctx context.Context, key string, value json.RawMessage, token string) error
}

// LoadReport summarises one Load. Each key appears in exactly one list.
type LoadReport struct {
	Loaded    []string  `json:"loaded"`
	Defaulted []string  `json:"defaulted"`
	Failed    []string  `json:"failed"`
	At        time.Time `json:"at"`
}

// ReplaceResult distinguishes "visible in this replica" from "durably saved".
type ReplaceResult struct {
	Applied   bool `json:"applied"`
	Persisted bool `json:"persisted"`
}

// Store is safe for concurrent use. Readers always see a complete segment.
type Store struct {
	remote      Remote
	logger      *slog.Logger
	concurrency int

	mu       sync.RWMutex
	segments map[string]json.RawMessage
	report   LoadReport
}

// Option configures a Store.
type Option func(*Store)

// WithLoadConcurrency bounds the number of concurrent fetches during Load.
func WithLoadConcurrency(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// New creates a store pre-seeded with the default value of every known key.
func New(remote Remote, logger *slog.Logger, opts ...Option) (*Store, error) {
	defaults, err := seed.Defaults()
	if err != nil {
		return nil, fmt.Errorf("load default segments: %w", err)
	}

	s := &Store{
		remote:      remote,
		logger:      logger,
		concurrency: defaultLoadConcurrency,
		segments:    defaults,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Load fetches every known key concurrently. A missing key keeps its held
// value; a transport failure is logged and also keeps the held value. Load
// never fails: the worst outcome is a snapshot of defaults.
func (s *Store) Load(ctx context.Context) LoadReport {
	var (
		mu     sync.Mutex
		report LoadReport
	)
	record := func(list *[]string, key string) {
		mu.Lock()
		*list = append(*list, key)
		mu.Unlock()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, key := range KnownKeys {
		g.Go(func() error {
			value, err := s.remote.Fetch(gctx, key)
			switch {
			case err == nil:
				if err := s.apply(key, value); err != nil {
					s.logger.WarnContext(ctx, "discarding malformed segment",
						slog.String("key", key),
						slog.String("error", err.Error()),
					)
					record(&report.Failed, key)
					return nil
				}
				record(&report.Loaded, key)
			case apperrors.IsNotFound(err):
				record(&report.Defaulted, key)
			default:
				s.logger.WarnContext(ctx, "segment fetch failed, keeping held value",
					slog.String("key", key),
					slog.String("error", err.Error()),
				)
				record(&report.Failed, key)
			}
			return nil
		})
	}
	_ = g.Wait()

	slices.Sort(report.Loaded)
	slices.Sort(report.Defaulted)
	slices.Sort(report.Failed)
	report.At = time.Now().UTC()

	s.mu.Lock()
	s.report = report
	s.mu.Unlock()

	s.logger.InfoContext(ctx, "content segments loaded",
		slog.Int("loaded", len(report.Loaded)),
		slog.Int("defaulted", len(report.Defaulted)),
		slog.Int("failed", len(report.Failed)),
	)
	return report
}

// Replace writes value as the whole new content of key. The value is applied
// to the snapshot even when the remote write fails; the returned error then
// explains why Persisted is false. An unknown key or a value that cannot be
// encoded is rejected without being applied.
func (s *Store) Replace(ctx context.Context, key string, value any, token string) (ReplaceResult, error) {
	if !IsKnownKey(key) {
		return ReplaceResult{}, apperrors.InvalidInput(fmt.Sprintf("unknown segment %q", key))
	}

	raw, err := encode(value)
	if err != nil {
		return ReplaceResult{}, apperrors.InvalidInput(fmt.Sprintf("segment %s: %v", key, err))
	}
	if err := checkShape(key, raw); err != nil {
		return ReplaceResult{}, apperrors.InvalidInput(fmt.Sprintf("segment %s: %v", key, err))
	}

	saveErr := s.remote.Save(ctx, key, raw, token)
	if err := s.apply(key, raw); err != nil {
		return ReplaceResult{}, err
	}

	if saveErr != nil {
		s.logger.WarnContext(ctx, "segment applied locally but not persisted",
			slog.String("key", key),
			slog.String("error", saveErr.Error()),
		)
		return ReplaceResult{Applied: true}, saveErr
	}
	return ReplaceResult{Applied: true, Persisted: true}, nil
}

// Refresh re-fetches a single key. A missing key keeps the held value.
func (s *Store) Refresh(ctx context.Context, key string) error {
	value, err := s.remote.Fetch(ctx, key)
	if apperrors.IsNotFound(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("refresh segment %s: %w", key, err)
	}
	return s.apply(key, value)
}

// Raw returns the held JSON of key.
func (s *Store) Raw(key string) (json.RawMessage, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.segments[key]
	return v, ok
}

// LastLoad returns the report of the most recent Load.
func (s *Store) LastLoad() LoadReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.report
}

// Products returns a fresh copy of the products segment.
func (s *Store) Products() []domain.Product {
	var out []domain.Product
	s.decode("products", &out)
	return out
}

// Collections returns a fresh copy of the collections segment.
func (s *Store) Collections() []domain.Collection {
	var out []domain.Collection
	s.decode("collections", &out)
	return out
}

// HeroContents returns a fresh copy of the heroContents segment.
func (s *Store) HeroContents() []domain.HeroContent {
	var out []domain.HeroContent
	s.decode("heroContents", &out)
	return out
}

// PageBanners returns a fresh copy of the pageBanners segment.
func (s *Store) PageBanners() []domain.PageBanner {
	var out []domain.PageBanner
	s.decode("pageBanners", &out)
	return out
}

// IsKnownKey reports whether key is one of KnownKeys.
func IsKnownKey(key string) bool {
	return slices.Contains(KnownKeys, key)
}

func (s *Store) apply(key string, raw json.RawMessage) error {
	if err := checkShape(key, raw); err != nil {
		return err
	}
	value := append(json.RawMessage(nil), raw...)

	s.mu.Lock()
	s.segments[key] = value
	s.mu.Unlock()
	return nil
}

// decode never fails: apply only admits values that decode.
func (s *Store) decode(key string, dst any) {
	raw, ok := s.Raw(key)
	if !ok {
		return
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		s.logger.Error("held segment does not decode", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func encode(value any) (json.RawMessage, error) {
	switch v := value.(type) {
	case json.RawMessage:
		if !json.Valid(v) {
			return nil, fmt.Errorf("value is not valid JSON")
		}
		return v, nil
	case []byte:
		if !json.Valid(v) {
			return nil, fmt.Errorf("value is not valid JSON")
		}
		return v, nil
	default:
		return json.Marshal(v)
	}
}

// checkShape rejects values of typed segments that the accessors could not
// decode.
func checkShape(key string, raw json.RawMessage) error {
	var dst any
	switch key {
	case "products":
		dst = &[]domain.Product{}
	case "collections":
		dst = &[]domain.Collection{}
	case "heroContents":
		dst = &[]domain.HeroContent{}
	case "pageBanners":
		dst = &[]domain.PageBanner{}
	default:
		if !json.Valid(raw) {
			return fmt.Errorf("value is not valid JSON")
		}
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}
