package intake

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gameskins-co/intake/internal/catalog"
	"github.com/gameskins-co/intake/internal/leads"
	"github.com/gameskins-co/intake/internal/media"
	"github.com/gameskins-co/intake/internal/notify"
	"github.com/gameskins-co/intake/internal/observability/metrics"
	"github.com/gameskins-co/intake/pkg/logging"
)

// ImagePolicy decides what a failed image upload does to the submission.
type ImagePolicy int

const (
	// ImageStrict aborts the submission on the first failed upload. The
	// lead row, created before uploads start, stays persisted.
	ImageStrict ImagePolicy = iota
	// ImageLenient skips the failed image and continues with the rest.
	ImageLenient
)

// DetailPolicy decides how a mismatched image/note count is handled.
type DetailPolicy int

const (
	// DetailStrict requires exactly one non-empty note per image.
	DetailStrict DetailPolicy = iota
	// DetailPlaceholder fills missing or blank notes with a placeholder.
	DetailPlaceholder
)

// NotifyPolicy decides how the summary email is dispatched.
type NotifyPolicy int

const (
	// NotifyBestEffort sends asynchronously; failure is only logged.
	NotifyBestEffort NotifyPolicy = iota
	// NotifyStrict sends on the request path and reports a degraded
	// success when the email fails. It never rolls the lead back.
	NotifyStrict
)

// DetailPlaceholderText is stored when DetailPlaceholder fills a gap. An
// image row never carries a silently blank note.
const DetailPlaceholderText = "(sin detalles)"

// ParseImagePolicy maps the config token to a policy, defaulting to strict.
func ParseImagePolicy(s string) ImagePolicy {
	if strings.EqualFold(s, "lenient") {
		return ImageLenient
	}
	return ImageStrict
}

// ParseDetailPolicy maps the config token to a policy, defaulting to strict.
func ParseDetailPolicy(s string) DetailPolicy {
	if strings.EqualFold(s, "placeholder") {
		return DetailPlaceholder
	}
	return DetailStrict
}

// ParseNotifyPolicy maps the config token to a policy, defaulting to
// best-effort.
func ParseNotifyPolicy(s string) NotifyPolicy {
	if strings.EqualFold(s, "strict") {
		return NotifyStrict
	}
	return NotifyBestEffort
}

// Submission carries the raw field values of one POST /submit request.
type Submission struct {
	Name            string
	Email           string
	Whatsapp        string
	Console         string
	ComboID         string
	ExtraControl    bool
	DesignChoice    string
	HasDesign       string // raw form token, parsed against the truthy set
	WhatsappPrefill string
	ReceiverName    string
	City            string
	Neighborhood    string
	Address         string
	Images          []media.Upload
	Details         []string
}

// Result is the outcome of a successful submission.
type Result struct {
	LeadID        string `json:"lead_id"`
	Total         int    `json:"total"`
	Notified      bool   `json:"notified"`
	ImagesSaved   int    `json:"images_saved"`
	ImagesSkipped int    `json:"images_skipped,omitempty"`
}

// Service orchestrates one submission: validate, price, persist, ingest
// images, notify. Steps run sequentially; the lead id is needed before any
// storage path can be built.
type Service struct {
	repo     leads.Repository
	catalog  *catalog.Catalog
	ingestor *media.Ingestor
	notifier *notify.Service

	fields     FieldPolicy
	imageMode  ImagePolicy
	detailMode DetailPolicy
	notifyMode NotifyPolicy

	notifyTimeout time.Duration
	metrics       *metrics.IntakeMetrics
	logger        *logging.Logger
	wg            sync.WaitGroup
}

// Options bundles the policy knobs for NewService.
type Options struct {
	Fields        FieldPolicy
	Images        ImagePolicy
	Details       DetailPolicy
	Notify        NotifyPolicy
	NotifyTimeout time.Duration
	Metrics       *metrics.IntakeMetrics
}

// NewService wires the orchestrator.
func NewService(repo leads.Repository, cat *catalog.Catalog, ingestor *media.Ingestor, notifier *notify.Service, opts Options, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if opts.NotifyTimeout <= 0 {
		opts.NotifyTimeout = 30 * time.Second
	}
	return &Service{
		repo:          repo,
		catalog:       cat,
		ingestor:      ingestor,
		notifier:      notifier,
		fields:        opts.Fields,
		imageMode:     opts.Images,
		detailMode:    opts.Details,
		notifyMode:    opts.Notify,
		notifyTimeout: opts.NotifyTimeout,
		metrics:       opts.Metrics,
		logger:        logger,
	}
}

// Wait blocks until in-flight best-effort notifications finish. Called on
// shutdown so a lead email is not dropped by process exit.
func (s *Service) Wait() {
	s.wg.Wait()
}

// Submit runs the full intake pipeline for one order.
func (s *Service) Submit(ctx context.Context, sub Submission) (*Result, error) {
	res, err := s.submit(ctx, sub)
	switch {
	case err == nil:
		s.metrics.ObserveSubmission("accepted")
	case IsClientError(err):
		s.metrics.ObserveSubmission("rejected")
	default:
		s.metrics.ObserveSubmission("failed")
	}
	return res, err
}

func (s *Service) submit(ctx context.Context, sub Submission) (*Result, error) {
	req, total, err := s.validate(sub)
	if err != nil {
		return nil, err
	}

	hasDesign := Truthy(sub.HasDesign)
	details, err := s.pairDetails(sub, hasDesign)
	if err != nil {
		return nil, err
	}

	// Pre-validate every upload before any side effect, so a bad image
	// never leaves a lead behind.
	if hasDesign {
		for _, up := range sub.Images {
			if err := s.ingestor.Validate(up); err != nil {
				return nil, err
			}
		}
	}

	lead, err := s.repo.Create(ctx, req)
	if err != nil {
		s.logger.Error("lead create failed", "error", err)
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	s.logger.Info("lead created", "lead_id", lead.ID, "console", lead.Console, "has_design", hasDesign)

	saved := []*leads.LeadImage{}
	skipped := 0
	if hasDesign {
		for idx, up := range sub.Images {
			up.Details = details[idx]
			img, err := s.ingestor.Ingest(ctx, lead.ID, up)
			if err != nil {
				if s.imageMode == ImageLenient {
					s.logger.Warn("image skipped", "error", err, "lead_id", lead.ID, "index", idx)
					skipped++
					continue
				}
				// Strict: abort. The lead stays persisted without this
				// image; nothing is rolled back.
				s.logger.Error("image upload aborted submission", "error", err, "lead_id", lead.ID, "index", idx)
				return nil, err
			}
			s.metrics.ObserveImageBytes(img.SizeBytes)

			if err := s.repo.AttachImage(ctx, img); err != nil {
				// Best-effort per the persistence contract: the bytes are
				// uploaded, only the row is missing.
				s.logger.Error("attach image failed", "error", err, "lead_id", lead.ID, "path", img.StoragePath)
				skipped++
				continue
			}
			saved = append(saved, img)
		}
	}

	notified := s.dispatchNotification(ctx, lead, saved)

	return &Result{
		LeadID:        lead.ID,
		Total:         total,
		Notified:      notified,
		ImagesSaved:   len(saved),
		ImagesSkipped: skipped,
	}, nil
}

// validate normalizes the field set in fixed order, failing on the first
// violation, and resolves the order total.
func (s *Service) validate(sub Submission) (*leads.CreateLeadRequest, int, error) {
	name := strings.TrimSpace(sub.Name)
	if name == "" {
		return nil, 0, fmt.Errorf("%w: name", ErrMissingField)
	}

	email := strings.TrimSpace(sub.Email)
	if email == "" {
		if s.fields.RequireEmail {
			return nil, 0, fmt.Errorf("%w: email", ErrMissingField)
		}
	} else if !ValidEmail(email) {
		return nil, 0, fmt.Errorf("%w: %s", ErrInvalidEmail, email)
	}

	whatsapp := CleanPhone(sub.Whatsapp)
	if whatsapp == "" {
		return nil, 0, fmt.Errorf("%w: whatsapp", ErrMissingField)
	}

	console := strings.TrimSpace(sub.Console)
	if console == "" {
		return nil, 0, fmt.Errorf("%w: console", ErrMissingField)
	}

	if s.fields.RequireShipping {
		for _, f := range []struct{ name, value string }{
			{"receiver_name", sub.ReceiverName},
			{"city", sub.City},
			{"address", sub.Address},
		} {
			if strings.TrimSpace(f.value) == "" {
				return nil, 0, fmt.Errorf("%w: %s", ErrMissingField, f.name)
			}
		}
	}

	comboID := strings.TrimSpace(sub.ComboID)
	if comboID == "" {
		return nil, 0, fmt.Errorf("%w: combo", ErrMissingField)
	}
	total, err := s.catalog.Quote(console, comboID, sub.ExtraControl)
	if err != nil {
		return nil, 0, err
	}

	summary := comboID
	if combo, ok := s.catalog.Find(comboID); ok {
		summary = combo.Title
	}
	if sub.ExtraControl {
		summary += " + control extra"
	}
	summary = fmt.Sprintf("%s · %d COP", summary, total)

	return &leads.CreateLeadRequest{
		Name:            name,
		Email:           email,
		Whatsapp:        whatsapp,
		Console:         console,
		DesignChoice:    strings.TrimSpace(sub.DesignChoice),
		HasDesign:       Truthy(sub.HasDesign),
		WhatsappPrefill: strings.TrimSpace(sub.WhatsappPrefill),
		PriceSummary:    summary,
		ReceiverName:    strings.TrimSpace(sub.ReceiverName),
		City:            strings.TrimSpace(sub.City),
		Neighborhood:    strings.TrimSpace(sub.Neighborhood),
		Address:         strings.TrimSpace(sub.Address),
	}, total, nil
}

// pairDetails enforces the image/note pairing for custom designs and
// returns one note per image.
func (s *Service) pairDetails(sub Submission, hasDesign bool) ([]string, error) {
	if !hasDesign {
		return nil, nil
	}
	if len(sub.Images) == 0 {
		return nil, fmt.Errorf("%w: images", ErrMissingField)
	}

	details := make([]string, len(sub.Images))
	switch s.detailMode {
	case DetailStrict:
		if len(sub.Details) != len(sub.Images) {
			return nil, fmt.Errorf("%w: %d images, %d notes", ErrMismatchedDetails, len(sub.Images), len(sub.Details))
		}
		for i, d := range sub.Details {
			d = strings.TrimSpace(d)
			if d == "" {
				return nil, fmt.Errorf("%w: note %d is empty", ErrMismatchedDetails, i+1)
			}
			details[i] = d
		}
	case DetailPlaceholder:
		for i := range details {
			d := ""
			if i < len(sub.Details) {
				d = strings.TrimSpace(sub.Details[i])
			}
			if d == "" {
				d = DetailPlaceholderText
			}
			details[i] = d
		}
	}
	return details, nil
}

// dispatchNotification sends the summary email per the notify policy and
// reports whether it is known to have been delivered.
func (s *Service) dispatchNotification(ctx context.Context, lead *leads.Lead, images []*leads.LeadImage) bool {
	if s.notifier == nil || !s.notifier.Enabled() {
		return false
	}

	if s.notifyMode == NotifyStrict {
		if err := s.notifier.NotifyNewLead(ctx, lead, images); err != nil {
			s.metrics.ObserveNotification("failed")
			return false
		}
		s.metrics.ObserveNotification("sent")
		return true
	}

	// Best effort: off the request path, detached from the request context
	// so client disconnects do not cancel the send.
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		nctx, cancel := context.WithTimeout(context.Background(), s.notifyTimeout)
		defer cancel()
		if err := s.notifier.NotifyNewLead(nctx, lead, images); err != nil {
			s.metrics.ObserveNotification("failed")
			return
		}
		s.metrics.ObserveNotification("sent")
	}()
	return true
}

// IsClientError reports whether the error is the caller's fault (a 4xx
// class failure detected before any side effect).
func IsClientError(err error) bool {
	return errors.Is(err, ErrMissingField) ||
		errors.Is(err, ErrInvalidEmail) ||
		errors.Is(err, ErrMismatchedDetails) ||
		errors.Is(err, catalog.ErrUnknownCombo) ||
		errors.Is(err, catalog.ErrIneligibleCombo) ||
		errors.Is(err, media.ErrEmptyUpload) ||
		errors.Is(err, media.ErrTooLarge) ||
		errors.Is(err, media.ErrUnsupportedType)
}
