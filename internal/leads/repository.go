package leads

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Repository defines the interface for lead storage
type Repository interface {
	Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error)
	AttachImage(ctx context.Context, img *LeadImage) error
	GetByID(ctx context.Context, id string) (*Lead, error)
	List(ctx context.Context, filter ListLeadsFilter) ([]*Lead, error)
	ListImages(ctx context.Context, leadID string) ([]*LeadImage, error)
}

// InMemoryRepository is an in-memory Repository used in tests and local
// development without a database.
type InMemoryRepository struct {
	mu     sync.RWMutex
	leads  map[string]*Lead
	order  []string
	images map[string][]*LeadImage
	paths  map[string]struct{}
	nextID int64
}

// NewInMemoryRepository creates a new in-memory repository
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		leads:  make(map[string]*Lead),
		images: make(map[string][]*LeadImage),
		paths:  make(map[string]struct{}),
	}
}

// Create creates a new lead in memory
func (r *InMemoryRepository) Create(ctx context.Context, req *CreateLeadRequest) (*Lead, error) {
	lead := &Lead{
		ID:              uuid.New().String(),
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
		CreatedAt:       time.Now().UTC(),
	}

	r.mu.Lock()
	r.leads[lead.ID] = lead
	r.order = append(r.order, lead.ID)
	r.mu.Unlock()

	return lead, nil
}

// AttachImage records an image row for an existing lead.
func (r *InMemoryRepository) AttachImage(ctx context.Context, img *LeadImage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.leads[img.LeadID]; !ok {
		return ErrLeadNotFound
	}
	if _, ok := r.paths[img.StoragePath]; ok {
		return ErrDuplicatePath
	}

	r.nextID++
	stored := *img
	stored.ID = r.nextID
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = time.Now().UTC()
	}
	r.paths[stored.StoragePath] = struct{}{}
	r.images[img.LeadID] = append(r.images[img.LeadID], &stored)
	return nil
}

// GetByID retrieves a lead by ID
func (r *InMemoryRepository) GetByID(ctx context.Context, id string) (*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lead, ok := r.leads[id]
	if !ok {
		return nil, ErrLeadNotFound
	}
	return lead, nil
}

// List returns leads in insertion order, newest last.
func (r *InMemoryRepository) List(ctx context.Context, filter ListLeadsFilter) ([]*Lead, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := []*Lead{}
	skipped := 0
	for _, id := range r.order {
		lead := r.leads[id]
		if filter.Console != "" && lead.Console != filter.Console {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		out = append(out, lead)
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
	}
	return out, nil
}

// ListImages returns the images attached to a lead.
func (r *InMemoryRepository) ListImages(ctx context.Context, leadID string) ([]*LeadImage, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if _, ok := r.leads[leadID]; !ok {
		return nil, ErrLeadNotFound
	}
	return append([]*LeadImage{}, r.images[leadID]...), nil
}
