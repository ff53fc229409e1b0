package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/gameskins-co/intake/pkg/logging"
)

// GalleryDesign is one pre-made design shown to customers for a console.
type GalleryDesign struct {
	ID       int64  `json:"id"`
	Console  string `json:"console"`
	Title    string `json:"title"`
	ImageURL string `json:"image_url"`
}

// GalleryRepository lists gallery designs for a console model.
type GalleryRepository interface {
	ListByConsole(ctx context.Context, console string) ([]GalleryDesign, error)
}

// PostgresGalleryRepository reads the gallery_designs table.
type PostgresGalleryRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresGalleryRepository initializes a repo backed by pgxpool.
func NewPostgresGalleryRepository(pool *pgxpool.Pool) *PostgresGalleryRepository {
	if pool == nil {
		panic("catalog: pgx pool required")
	}
	return &PostgresGalleryRepository{pool: pool}
}

// ListByConsole returns designs for an exact console-model match in
// insertion order. An unknown console yields an empty slice, not an error.
func (r *PostgresGalleryRepository) ListByConsole(ctx context.Context, console string) ([]GalleryDesign, error) {
	query := `
		SELECT id, console, title, image_url
		FROM gallery_designs
		WHERE console = $1
		ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query, console)
	if err != nil {
		return nil, fmt.Errorf("catalog: gallery select failed: %w", err)
	}
	defer rows.Close()

	designs := []GalleryDesign{}
	for rows.Next() {
		var d GalleryDesign
		if err := rows.Scan(&d.ID, &d.Console, &d.Title, &d.ImageURL); err != nil {
			return nil, fmt.Errorf("catalog: gallery scan failed: %w", err)
		}
		designs = append(designs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("catalog: gallery rows failed: %w", err)
	}
	return designs, nil
}

// CachedGalleryRepository is a read-through Redis cache in front of another
// repository. The gallery changes rarely, so a short TTL is enough.
type CachedGalleryRepository struct {
	inner  GalleryRepository
	client *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewCachedGalleryRepository wraps inner with a Redis cache.
func NewCachedGalleryRepository(inner GalleryRepository, client *redis.Client, ttl time.Duration, logger *logging.Logger) *CachedGalleryRepository {
	if logger == nil {
		logger = logging.Default()
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &CachedGalleryRepository{inner: inner, client: client, ttl: ttl, logger: logger}
}

func galleryCacheKey(console string) string {
	return "gallery:" + console
}

// ListByConsole serves from cache when possible. Cache errors fall back to
// the inner repository rather than failing the request.
func (r *CachedGalleryRepository) ListByConsole(ctx context.Context, console string) ([]GalleryDesign, error) {
	key := galleryCacheKey(console)

	if cached, err := r.client.Get(ctx, key).Result(); err == nil {
		var designs []GalleryDesign
		if err := json.Unmarshal([]byte(cached), &designs); err == nil {
			return designs, nil
		}
		r.logger.Warn("gallery cache entry corrupt, refetching", "key", key)
	}

	designs, err := r.inner.ListByConsole(ctx, console)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(designs); err == nil {
		if err := r.client.Set(ctx, key, data, r.ttl).Err(); err != nil {
			r.logger.Warn("gallery cache set failed", "error", err, "key", key)
		}
	}
	return designs, nil
}
