package leads

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PgxPool is the subset of pgxpool.Pool used by PostgresRepository.
// pgxmock satisfies it in tests.
type PgxPool interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresRepository stores leads in the relational database.
type PostgresRepository struct {
	pool PgxPool
}

// NewPostgresRepository initializes a repo backed by pgxpool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	if pool == nil {
		panic("leads: pgx pool required")
	}
	return &PostgresRepository{pool: pool}
}

// NewPostgresRepositoryWithPool wires an explicit PgxPool, used by tests.
func NewPostgresRepositoryWithPool(pool PgxPool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create inserts a new lead row and returns it with the generated id.
func (r *PostgresRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	id := uuid.New()
	query := `
		INSERT INTO leads (id, name, email, whatsapp, console, design_choice,
			has_design, whatsapp_prefill, price_summary,
			receiver_name, city, neighborhood, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING created_at
	`
	var createdAt time.Time
	if err := r.pool.QueryRow(ctx, query,
		id,
		req.Name,
		req.Email,
		req.Whatsapp,
		req.Console,
		req.DesignChoice,
		req.HasDesign,
		req.WhatsappPrefill,
		req.PriceSummary,
		req.ReceiverName,
		req.City,
		req.Neighborhood,
		req.Address,
	).Scan(&createdAt); err != nil {
		return nil, fmt.Errorf("leads: insert failed: %w", err)
	}

	return &Lead{
		ID:              id.String(),
		Name:            req.Name,
		Email:           req.Email,
		Whatsapp:        req.Whatsapp,
		Console:         req.Console,
		DesignChoice:    req.DesignChoice,
		HasDesign:       req.HasDesign,
		WhatsappPrefill: req.WhatsappPrefill,
		PriceSummary:    req.PriceSummary,
		ReceiverName:    req.ReceiverName,
		City:            req.City,
		Neighborhood:    req.Neighborhood,
		Address:         req.Address,
		CreatedAt:       createdAt,
	}, nil
}

// AttachImage inserts a lead_images row. Storage paths carry a unique
// constraint; a collision surfaces as ErrDuplicatePath.
func (r *PostgresRepository) AttachImage(ctx context.Context, img *LeadImage) error {
	query := `
		INSERT INTO lead_images (lead_id, storage_bucket, storage_path,
			public_url, original_filename, content_type, size_bytes, details)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`
	if err := r.pool.QueryRow(ctx, query,
		img.LeadID,
		img.StorageBucket,
		img.StoragePath,
		img.PublicURL,
		img.OriginalFilename,
		img.ContentType,
		img.SizeBytes,
		img.Details,
	).Scan(&img.ID, &img.CreatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("leads: %w: %s", ErrDuplicatePath, img.StoragePath)
		}
		return fmt.Errorf("leads: attach image failed: %w", err)
	}
	return nil
}

// GetByID fetches a lead.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	query := `
		SELECT id, name, email, whatsapp, console, design_choice, has_design,
			whatsapp_prefill, price_summary,
			receiver_name, city, neighborhood, address, created_at
		FROM leads
		WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	lead, err := scanLead(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrLeadNotFound
		}
		return nil, fmt.Errorf("leads: select failed: %w", err)
	}
	return lead, nil
}

// List returns leads ordered oldest first, optionally filtered by console.
func (r *PostgresRepository) List(ctx context.Context, filter ListLeadsFilter) ([]*Lead, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, name, email, whatsapp, console, design_choice, has_design,
			whatsapp_prefill, price_summary,
			receiver_name, city, neighborhood, address, created_at
		FROM leads
		WHERE ($1 = '' OR console = $1)
		ORDER BY created_at
		LIMIT $2 OFFSET $3
	`
	rows, err := r.pool.Query(ctx, query, filter.Console, limit, filter.Offset)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	out := []*Lead{}
	for rows.Next() {
		lead, err := scanLead(rows)
		if err != nil {
			return nil, fmt.Errorf("leads: list scan failed: %w", err)
		}
		out = append(out, lead)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: list rows failed: %w", err)
	}
	return out, nil
}

// ListImages returns the images attached to a lead, oldest first.
func (r *PostgresRepository) ListImages(ctx context.Context, leadID string) ([]*LeadImage, error) {
	query := `
		SELECT id, lead_id, storage_bucket, storage_path, public_url,
			original_filename, content_type, size_bytes, details, created_at
		FROM lead_images
		WHERE lead_id = $1
		ORDER BY id
	`
	rows, err := r.pool.Query(ctx, query, leadID)
	if err != nil {
		return nil, fmt.Errorf("leads: list images failed: %w", err)
	}
	defer rows.Close()

	out := []*LeadImage{}
	for rows.Next() {
		var img LeadImage
		if err := rows.Scan(
			&img.ID,
			&img.LeadID,
			&img.StorageBucket,
			&img.StoragePath,
			&img.PublicURL,
			&img.OriginalFilename,
			&img.ContentType,
			&img.SizeBytes,
			&img.Details,
			&img.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("leads: image scan failed: %w", err)
		}
		out = append(out, &img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("leads: image rows failed: %w", err)
	}
	return out, nil
}

func scanLead(row pgx.Row) (*Lead, error) {
	var lead Lead
	if err := row.Scan(
		&lead.ID,
		&lead.Name,
		&lead.Email,
		&lead.Whatsapp,
		&lead.Console,
		&lead.DesignChoice,
		&lead.HasDesign,
		&lead.WhatsappPrefill,
		&lead.PriceSummary,
		&lead.ReceiverName,
		&lead.City,
		&lead.Neighborhood,
		&lead.Address,
		&lead.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &lead, nil
}
