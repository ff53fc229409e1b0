package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/gameskins-co/intake/internal/leads"
	"github.com/gameskins-co/intake/pkg/logging"
)

// Service sends the new-lead summary to the business inbox.
type Service struct {
	sender EmailSender
	to     string
	logger *logging.Logger
}

// NewService creates a notification service. With an empty recipient the
// service is a no-op.
func NewService(sender EmailSender, to string, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{sender: sender, to: to, logger: logger}
}

// Enabled reports whether notifications are configured.
func (s *Service) Enabled() bool {
	return s != nil && s.sender != nil && s.to != ""
}

// NotifyNewLead emails a plain-text summary of the lead and its images.
// Never called on the request path directly in best-effort deployments;
// the orchestrator decides the dispatch mode.
func (s *Service) NotifyNewLead(ctx context.Context, lead *leads.Lead, images []*leads.LeadImage) error {
	if !s.Enabled() {
		s.logger.Debug("notifications disabled, skipping", "lead_id", lead.ID)
		return nil
	}

	subject, body := ComposeLeadEmail(lead, images)
	if err := s.sender.Send(ctx, EmailMessage{To: s.to, Subject: subject, Body: body}); err != nil {
		s.logger.Error("lead notification failed", "error", err, "lead_id", lead.ID)
		return fmt.Errorf("notify: lead %s: %w", lead.ID, err)
	}

	s.logger.Info("lead notification sent", "lead_id", lead.ID, "to", s.to, "images", len(images))
	return nil
}

// ComposeLeadEmail builds the business summary message.
func ComposeLeadEmail(lead *leads.Lead, images []*leads.LeadImage) (subject, body string) {
	subject = fmt.Sprintf("Nuevo lead skins: %s (%s)", lead.Name, lead.Console)

	lines := []string{
		"Nuevo lead recibido",
		"",
		fmt.Sprintf("Nombre: %s", lead.Name),
		fmt.Sprintf("Correo: %s", lead.Email),
		fmt.Sprintf("WhatsApp: %s", lead.Whatsapp),
		fmt.Sprintf("Consola: %s", lead.Console),
		fmt.Sprintf("Diseño elegido: %s", lead.DesignChoice),
		fmt.Sprintf("Trae diseño propio: %t", lead.HasDesign),
	}
	if lead.PriceSummary != "" {
		lines = append(lines, fmt.Sprintf("Cotización: %s", lead.PriceSummary))
	}
	if lead.WhatsappPrefill != "" {
		lines = append(lines, fmt.Sprintf("Mensaje WhatsApp (prefill): %s", lead.WhatsappPrefill))
	}
	if lead.ReceiverName != "" || lead.Address != "" {
		lines = append(lines,
			"",
			"Envío:",
			fmt.Sprintf("Recibe: %s", lead.ReceiverName),
			fmt.Sprintf("Ciudad: %s", lead.City),
			fmt.Sprintf("Barrio: %s", lead.Neighborhood),
			fmt.Sprintf("Dirección: %s", lead.Address),
		)
	}

	if len(images) > 0 {
		lines = append(lines, "", "Imágenes:")
		for i, img := range images {
			lines = append(lines,
				"",
				fmt.Sprintf("#%d", i+1),
				fmt.Sprintf("Link: %s", img.PublicURL),
				fmt.Sprintf("Detalles: %s", img.Details),
				fmt.Sprintf("Archivo: %s", img.OriginalFilename),
				fmt.Sprintf("Tipo: %s · Tamaño: %d bytes", img.ContentType, img.SizeBytes),
			)
		}
	} else {
		lines = append(lines, "", "(No adjuntó imágenes)")
	}

	return subject, strings.Join(lines, "\n")
}
