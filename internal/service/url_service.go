package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/thescaler/shortener/internal/model"
	"github.com/thescaler/shortener/internal/repository"
)

var ErrURLNotFound = errors.New("URL not found")

// codeOffset is added to the store-assigned id before encoding. It keeps
// the first several thousand codes away from one- and two-character
// strings so every emitted code has a minimum visual length. It lives
// here, at the call site, so the encoder itself stays a pure base
// conversion.
const codeOffset = 10000

// recentURLLimit caps the dashboard listing.
const recentURLLimit = 50

// URLStore is the repository surface the service depends on.
type URLStore interface {
	Create(ctx context.Context, originalURL string) (*model.URL, error)
	SetShortCode(ctx context.Context, id int64, code string) error
	GetByCode(ctx context.Context, code string) (*model.URL, error)
	GetByOriginalURL(ctx context.Context, originalURL string) (*model.URL, error)
	ListRecent(ctx context.Context, limit int) ([]model.URL, error)
	CountryStats(ctx context.Context) ([]model.CountryClicks, error)
}

// Cache is the fast-path lookup. Implementations absorb their own
// failures: Get reports any error as a miss and Set is fire-and-forget.
type Cache interface {
	Get(ctx context.Context, code string) (string, bool)
	Set(ctx context.Context, code, target string)
}

// ClickRecorder schedules asynchronous click recording.
type ClickRecorder interface {
	Record(code, country string)
}

// URLService orchestrates shortening and resolution
type URLService struct {
	store    URLStore
	cache    Cache
	recorder ClickRecorder
	logger   *slog.Logger
}

// URLServiceInterface defines the contract for URL shortening operations
type URLServiceInterface interface {
	Shorten(ctx context.Context, originalURL string) (*model.ShortenResult, error)
	Resolve(ctx context.Context, code, country string) (string, error)
	ListURLs(ctx context.Context) ([]model.URL, error)
	CountryStats(ctx context.Context) ([]model.CountryClicks, error)
}

// NewURLService creates a new URL service
func NewURLService(store URLStore, cache Cache, recorder ClickRecorder, logger *slog.Logger) *URLService {
	return &URLService{
		store:    store,
		cache:    cache,
		recorder: recorder,
		logger:   logger,
	}
}

// Shorten returns the short code for the given URL, creating a record
// when none exists. Duplicate detection is a check-then-insert with no
// transaction around it: concurrent identical submissions can race and
// both insert. That window is accepted; adding a unique constraint would
// change the observable existed flag under race.
func (s *URLService) Shorten(ctx context.Context, originalURL string) (*model.ShortenResult, error) {
	existing, err := s.store.GetByOriginalURL(ctx, originalURL)
	if err == nil {
		return &model.ShortenResult{
			ShortCode: existing.ShortCode,
			Original:  originalURL,
			Existed:   true,
		}, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	url, err := s.store.Create(ctx, originalURL)
	if err != nil {
		return nil, err
	}

	// The record exists without a code until this write lands.
	code := EncodeBase62(uint64(url.ID + codeOffset))
	if err := s.store.SetShortCode(ctx, url.ID, code); err != nil {
		return nil, err
	}

	s.cache.Set(ctx, code, originalURL)

	return &model.ShortenResult{
		ShortCode: code,
		Original:  originalURL,
		Existed:   false,
	}, nil
}

// Resolve returns the target URL for a code, consulting the cache first
// and repopulating it on a store hit. A resolved redirect always
// schedules a click recording, cache hit or not; the response does not
// wait for it.
func (s *URLService) Resolve(ctx context.Context, code, country string) (string, error) {
	target, ok := s.cache.Get(ctx, code)
	if !ok {
		url, err := s.store.GetByCode(ctx, code)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return "", ErrURLNotFound
			}
			return "", err
		}
		target = url.OriginalURL
		s.cache.Set(ctx, code, target)
	}

	s.recorder.Record(code, country)

	return target, nil
}

// ListURLs returns the most recently created records for the dashboard.
func (s *URLService) ListURLs(ctx context.Context) ([]model.URL, error) {
	return s.store.ListRecent(ctx, recentURLLimit)
}

// CountryStats returns click counts aggregated by country.
func (s *URLService) CountryStats(ctx context.Context) ([]model.CountryClicks, error) {
	return s.store.CountryStats(ctx)
}

// Ensure URLService implements URLServiceInterface at compile time
var _ URLServiceInterface = (*URLService)(nil)
