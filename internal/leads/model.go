package leads

import "time"

// Lead is one customer order request. It is created exactly once per
// successful submission and never updated or deleted by this service;
// only images may be attached after creation.
type Lead struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Email           string    `json:"email"`
	Whatsapp        string    `json:"whatsapp"`
	Console         string    `json:"console"`
	DesignChoice    string    `json:"design_choice"`
	HasDesign       bool      `json:"has_design"`
	WhatsappPrefill string    `json:"whatsapp_prefill,omitempty"`
	PriceSummary    string    `json:"price_summary,omitempty"`
	ReceiverName    string    `json:"receiver_name,omitempty"`
	City            string    `json:"city,omitempty"`
	Neighborhood    string    `json:"neighborhood,omitempty"`
	Address         string    `json:"address,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// LeadImage is one uploaded reference image tied to a lead. The storage
// path is unique across all leads.
type LeadImage struct {
	ID               int64     `json:"id"`
	LeadID           string    `json:"lead_id"`
	StorageBucket    string    `json:"storage_bucket"`
	StoragePath      string    `json:"storage_path"`
	PublicURL        string    `json:"public_url"`
	OriginalFilename string    `json:"original_filename"`
	ContentType      string    `json:"content_type"`
	SizeBytes        int64     `json:"size_bytes"`
	Details          string    `json:"details"`
	CreatedAt        time.Time `json:"created_at"`
}

// CreateLeadRequest carries the already-validated field set for a new lead.
// Field validation happens upstream in the intake service; the repository
// only persists.
type CreateLeadRequest struct {
	Name            string
	Email           string
	Whatsapp        string
	Console         string
	DesignChoice    string
	HasDesign       bool
	WhatsappPrefill string
	PriceSummary    string
	ReceiverName    string
	City            string
	Neighborhood    string
	Address         string
}

// ListLeadsFilter narrows admin lead listings.
type ListLeadsFilter struct {
	Console string
	Limit   int
	Offset  int
}
