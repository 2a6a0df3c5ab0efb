package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/thescaler/shortener/internal/model"
)

var ErrNotFound = errors.New("url not found")

var tracer = otel.Tracer("github.com/thescaler/shortener/internal/repository")

// URLRepository handles database operations for URLs and click analytics
type URLRepository struct {
	db *pgxpool.Pool
}

// NewURLRepository creates a new URL repository
func NewURLRepository(db *pgxpool.Pool) *URLRepository {
	return &URLRepository{db: db}
}

// Create inserts a new URL record without a short code and returns it
// with the store-assigned identifier. The code is persisted separately
// by SetShortCode once derived from the id.
func (r *URLRepository) Create(ctx context.Context, originalURL string) (*model.URL, error) {
	ctx, span := tracer.Start(ctx, "db.insert",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "INSERT"),
			attribute.String("db.sql.table", "urls"),
		),
	)
	defer span.End()

	query := `
		INSERT INTO urls (original_url)
		VALUES ($1)
		RETURNING id, created_at
	`
	url := &model.URL{OriginalURL: originalURL}
	err := r.db.QueryRow(ctx, query, originalURL).Scan(&url.ID, &url.CreatedAt)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	return url, nil
}

// SetShortCode persists the derived code onto an existing record.
func (r *URLRepository) SetShortCode(ctx context.Context, id int64, code string) error {
	ctx, span := tracer.Start(ctx, "db.update",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "UPDATE"),
			attribute.String("db.sql.table", "urls"),
			attribute.String("short_code", code),
		),
	)
	defer span.End()

	result, err := r.db.Exec(ctx, `UPDATE urls SET short_code = $2 WHERE id = $1`, id, code)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// GetByCode retrieves a URL by its short code
func (r *URLRepository) GetByCode(ctx context.Context, code string) (*model.URL, error) {
	ctx, span := tracer.Start(ctx, "db.select",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "SELECT"),
			attribute.String("db.sql.table", "urls"),
			attribute.String("short_code", code),
		),
	)
	defer span.End()

	query := `
		SELECT id, original_url, COALESCE(short_code, ''), click_count, created_at
		FROM urls
		WHERE short_code = $1
	`
	var url model.URL
	err := r.db.QueryRow(ctx, query, code).Scan(
		&url.ID,
		&url.OriginalURL,
		&url.ShortCode,
		&url.ClickCount,
		&url.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		return nil, err
	}
	return &url, nil
}

// GetByOriginalURL retrieves the earliest record whose original URL is a
// byte-exact match of the input. Used by the check-then-insert duplicate
// detection; comparison is case-sensitive by design.
func (r *URLRepository) GetByOriginalURL(ctx context.Context, originalURL string) (*model.URL, error) {
	ctx, span := tracer.Start(ctx, "db.select",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "SELECT"),
			attribute.String("db.sql.table", "urls"),
		),
	)
	defer span.End()

	query := `
		SELECT id, original_url, COALESCE(short_code, ''), click_count, created_at
		FROM urls
		WHERE original_url = $1
		ORDER BY id
		LIMIT 1
	`
	var url model.URL
	err := r.db.QueryRow(ctx, query, originalURL).Scan(
		&url.ID,
		&url.OriginalURL,
		&url.ShortCode,
		&url.ClickCount,
		&url.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		span.RecordError(err)
		return nil, err
	}
	return &url, nil
}

// ListRecent returns up to limit records, most recent id first.
func (r *URLRepository) ListRecent(ctx context.Context, limit int) ([]model.URL, error) {
	ctx, span := tracer.Start(ctx, "db.select",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "SELECT"),
			attribute.String("db.sql.table", "urls"),
		),
	)
	defer span.End()

	query := `
		SELECT id, original_url, COALESCE(short_code, ''), click_count, created_at
		FROM urls
		ORDER BY id DESC
		LIMIT $1
	`
	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer rows.Close()

	urls := make([]model.URL, 0, limit)
	for rows.Next() {
		var url model.URL
		if err := rows.Scan(&url.ID, &url.OriginalURL, &url.ShortCode, &url.ClickCount, &url.CreatedAt); err != nil {
			span.RecordError(err)
			return nil, err
		}
		urls = append(urls, url)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return urls, nil
}

// IncrementClicks adds one to the click counter of the record with the
// given code. Returns ErrNotFound when no record carries the code.
func (r *URLRepository) IncrementClicks(ctx context.Context, code string) error {
	ctx, span := tracer.Start(ctx, "db.update",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "UPDATE"),
			attribute.String("db.sql.table", "urls"),
			attribute.String("short_code", code),
		),
	)
	defer span.End()

	result, err := r.db.Exec(ctx, `UPDATE urls SET click_count = click_count + 1 WHERE short_code = $1`, code)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// InsertAnalytics appends one row to the click log. There is no foreign
// key to urls: a dangling entry is acceptable.
func (r *URLRepository) InsertAnalytics(ctx context.Context, code, country string) error {
	ctx, span := tracer.Start(ctx, "db.insert",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "INSERT"),
			attribute.String("db.sql.table", "analytics"),
			attribute.String("short_code", code),
		),
	)
	defer span.End()

	_, err := r.db.Exec(ctx, `INSERT INTO analytics (short_code, country) VALUES ($1, $2)`, code, country)
	if err != nil {
		span.RecordError(err)
		return err
	}
	return nil
}

// CountryStats aggregates the click log by country.
func (r *URLRepository) CountryStats(ctx context.Context) ([]model.CountryClicks, error) {
	ctx, span := tracer.Start(ctx, "db.select",
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation", "SELECT"),
			attribute.String("db.sql.table", "analytics"),
		),
	)
	defer span.End()

	query := `
		SELECT country, COUNT(*)
		FROM analytics
		GROUP BY country
		ORDER BY COUNT(*) DESC, country
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	defer rows.Close()

	stats := make([]model.CountryClicks, 0)
	for rows.Next() {
		var cc model.CountryClicks
		if err := rows.Scan(&cc.Name, &cc.Clicks); err != nil {
			span.RecordError(err)
			return nil, err
		}
		stats = append(stats, cc)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		return nil, err
	}
	return stats, nil
}
