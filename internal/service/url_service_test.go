package service

import (
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/thescaler/shortener/internal/model"
	"github.com/thescaler/shortener/internal/repository"
)

// MockStore mocks the repository layer
type MockStore struct {
	mock.Mock
}

func (m *MockStore) Create(ctx context.Context, originalURL string) (*model.URL, error) {
	args := m.Called(ctx, originalURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.URL), args.Error(1)
}

func (m *MockStore) SetShortCode(ctx context.Context, id int64, code string) error {
	args := m.Called(ctx, id, code)
	return args.Error(0)
}

func (m *MockStore) GetByCode(ctx context.Context, code string) (*model.URL, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.URL), args.Error(1)
}

func (m *MockStore) GetByOriginalURL(ctx context.Context, originalURL string) (*model.URL, error) {
	args := m.Called(ctx, originalURL)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.URL), args.Error(1)
}

func (m *MockStore) ListRecent(ctx context.Context, limit int) ([]model.URL, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.URL), args.Error(1)
}

func (m *MockStore) CountryStats(ctx context.Context) ([]model.CountryClicks, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.CountryClicks), args.Error(1)
}

// MockCache mocks the fast-path cache
type MockCache struct {
	mock.Mock
}

func (m *MockCache) Get(ctx context.Context, code string) (string, bool) {
	args := m.Called(ctx, code)
	return args.String(0), args.Bool(1)
}

func (m *MockCache) Set(ctx context.Context, code, target string) {
	m.Called(ctx, code, target)
}

// MockRecorder mocks the analytics recorder
type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) Record(code, country string) {
	m.Called(code, country)
}

func newTestService(store *MockStore, cache *MockCache, recorder *MockRecorder) *URLService {
	return NewURLService(store, cache, recorder, slog.Default())
}

func TestURLService_Shorten(t *testing.T) {
	ctx := context.Background()

	t.Run("creates record and derives code from offset id", func(t *testing.T) {
		store := new(MockStore)
		cache := new(MockCache)
		recorder := new(MockRecorder)
		svc := newTestService(store, cache, recorder)

		store.On("GetByOriginalURL", mock.Anything, "https://example.com/a").Return(nil, repository.ErrNotFound)
		store.On("Create", mock.Anything, "https://example.com/a").Return(&model.URL{ID: 1, OriginalURL: "https://example.com/a"}, nil)
		// encode(1 + 10000) == "2bJ"
		store.On("SetShortCode", mock.Anything, int64(1), "2bJ").Return(nil)
		cache.On("Set", mock.Anything, "2bJ", "https://example.com/a").Return()

		result, err := svc.Shorten(ctx, "https://example.com/a")
		require.NoError(t, err)

		assert.Equal(t, "2bJ", result.ShortCode)
		assert.Equal(t, "https://example.com/a", result.Original)
		assert.False(t, result.Existed)

		store.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("returns existing code without creating or caching", func(t *testing.T) {
		store := new(MockStore)
		cache := new(MockCache)
		recorder := new(MockRecorder)
		svc := newTestService(store, cache, recorder)

		store.On("GetByOriginalURL", mock.Anything, "https://example.com/dup").Return(&model.URL{
			ID:          7,
			OriginalURL: "https://example.com/dup",
			ShortCode:   "2bQ",
		}, nil)

		result, err := svc.Shorten(ctx, "https://example.com/dup")
		require.NoError(t, err)

		assert.Equal(t, "2bQ", result.ShortCode)
		assert.True(t, result.Existed)

		store.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		store.AssertNotCalled(t, "SetShortCode", mock.Anything, mock.Anything, mock.Anything)
		cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("propagates store failure on duplicate check", func(t *testing.T) {
		store := new(MockStore)
		cache := new(MockCache)
		recorder := new(MockRecorder)
		svc := newTestService(store, cache, recorder)

		store.On("GetByOriginalURL", mock.Anything, mock.Anything).Return(nil, assert.AnError)

		_, err := svc.Shorten(ctx, "https://example.com/fail")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrURLNotFound)
	})

	t.Run("propagates failure persisting the code", func(t *testing.T) {
		store := new(MockStore)
		cache := new(MockCache)
		recorder := new(MockRecorder)
		svc := newTestService(store, cache, recorder)

		store.On("GetByOriginalURL", mock.Anything, mock.Anything).Return(nil, repository.ErrNotFound)
		store.On("Create", mock.Anything, mock.Anything).Return(&model.URL{ID: 3}, nil)
		store.On("SetShortCode", mock.Anything, int64(3), mock.Anything).Return(assert.AnError)

		_, err := svc.Shorten(ctx, "https://example.com/half")
		require.Error(t, err)
		cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestURLService_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit skips the store and still records the click", func(t *testing.T) {
		store := new(MockStore)
		cache := new(MockCache)
		recorder := new(MockRecorder)
		svc := newTestService(store, cache, recorder)

		cache.On("Get", mock.Anything, "2bJ").Return("https://example.com/a", true)
		recorder.On("Record", "2bJ", "PL").Return()

		target, err := svc.Resolve(ctx, "2bJ", "PL")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/a", target)

		store.AssertNotCalled(t, "GetByCode", mock.Anything, mock.Anything)
		recorder.AssertExpectations(t)
	})

	t.Run("cache miss falls back to store and repopulates cache", func(t *testing.T) {
		store := new(MockStore)
		cache := new(MockCache)
		recorder := new(MockRecorder)
		svc := newTestService(store, cache, recorder)

		cache.On("Get", mock.Anything, "2bJ").Return("", false)
		store.On("GetByCode", mock.Anything, "2bJ").Return(&model.URL{
			ID:          1,
			OriginalURL: "https://example.com/a",
			ShortCode:   "2bJ",
		}, nil)
		cache.On("Set", mock.Anything, "2bJ", "https://example.com/a").Return()
		recorder.On("Record", "2bJ", "Unknown").Return()

		target, err := svc.Resolve(ctx, "2bJ", "Unknown")
		require.NoError(t, err)
		assert.Equal(t, "https://example.com/a", target)

		store.AssertExpectations(t)
		cache.AssertExpectations(t)
		recorder.AssertExpectations(t)
	})

	t.Run("unknown code returns not found and records nothing", func(t *testing.T) {
		store := new(MockStore)
		cache := new(MockCache)
		recorder := new(MockRecorder)
		svc := newTestService(store, cache, recorder)

		cache.On("Get", mock.Anything, "nope").Return("", false)
		store.On("GetByCode", mock.Anything, "nope").Return(nil, repository.ErrNotFound)

		_, err := svc.Resolve(ctx, "nope", "Unknown")
		require.ErrorIs(t, err, ErrURLNotFound)

		recorder.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
		cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("store failure propagates", func(t *testing.T) {
		store := new(MockStore)
		cache := new(MockCache)
		recorder := new(MockRecorder)
		svc := newTestService(store, cache, recorder)

		cache.On("Get", mock.Anything, "2bJ").Return("", false)
		store.On("GetByCode", mock.Anything, "2bJ").Return(nil, assert.AnError)

		_, err := svc.Resolve(ctx, "2bJ", "Unknown")
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrURLNotFound)
		recorder.AssertNotCalled(t, "Record", mock.Anything, mock.Anything)
	})
}

func TestURLService_ListURLs(t *testing.T) {
	store := new(MockStore)
	cache := new(MockCache)
	recorder := new(MockRecorder)
	svc := newTestService(store, cache, recorder)

	urls := []model.URL{{ID: 2, ShortCode: "2bK"}, {ID: 1, ShortCode: "2bJ"}}
	store.On("ListRecent", mock.Anything, 50).Return(urls, nil)

	got, err := svc.ListURLs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, urls, got)
	store.AssertExpectations(t)
}

func TestURLService_CountryStats(t *testing.T) {
	store := new(MockStore)
	cache := new(MockCache)
	recorder := new(MockRecorder)
	svc := newTestService(store, cache, recorder)

	stats := []model.CountryClicks{{Name: "PL", Clicks: 3}, {Name: "Unknown", Clicks: 1}}
	store.On("CountryStats", mock.Anything).Return(stats, nil)

	got, err := svc.CountryStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, stats, got)
}
