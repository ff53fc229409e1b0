package notify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/gameskins-co/intake/internal/leads"
	"github.com/gameskins-co/intake/pkg/logging"
)

// recordingSender captures sent messages.
type recordingSender struct {
	sent []EmailMessage
	err  error
}

func (r *recordingSender) Send(_ context.Context, msg EmailMessage) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, msg)
	return nil
}

func sampleLead() *leads.Lead {
	return &leads.Lead{
		ID:           "lead-1",
		Name:         "Ana Gómez",
		Email:        "ana@example.com",
		Whatsapp:     "3001234567",
		Console:      "PS5 Slim",
		DesignChoice: "custom",
		HasDesign:    true,
		PriceSummary: "c6 + control extra · 56000 COP",
	}
}

func TestNotifyNewLead(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(sender, "ventas@example.com", logging.Default())

	images := []*leads.LeadImage{{
		PublicURL:        "https://storage.example/lead-images/lead-1/a.png",
		Details:          "placa frontal",
		OriginalFilename: "front.png",
		ContentType:      "image/png",
		SizeBytes:        2048,
	}}

	if err := svc.NotifyNewLead(context.Background(), sampleLead(), images); err != nil {
		t.Fatalf("notify failed: %v", err)
	}

	if len(sender.sent) != 1 {
		t.Fatalf("expected one message, got %d", len(sender.sent))
	}
	msg := sender.sent[0]
	if msg.To != "ventas@example.com" {
		t.Fatalf("unexpected recipient %q", msg.To)
	}
	if msg.Subject != "Nuevo lead skins: Ana Gómez (PS5 Slim)" {
		t.Fatalf("unexpected subject %q", msg.Subject)
	}
	for _, want := range []string{
		"Nombre: Ana Gómez",
		"WhatsApp: 3001234567",
		"Link: https://storage.example/lead-images/lead-1/a.png",
		"Detalles: placa frontal",
		"Tipo: image/png · Tamaño: 2048 bytes",
		"Cotización: c6 + control extra · 56000 COP",
	} {
		if !strings.Contains(msg.Body, want) {
			t.Errorf("body missing %q\n%s", want, msg.Body)
		}
	}
}

func TestNotifyNewLeadNoImages(t *testing.T) {
	sender := &recordingSender{}
	svc := NewService(sender, "ventas@example.com", logging.Default())

	if err := svc.NotifyNewLead(context.Background(), sampleLead(), nil); err != nil {
		t.Fatalf("notify failed: %v", err)
	}
	if !strings.Contains(sender.sent[0].Body, "(No adjuntó imágenes)") {
		t.Fatal("expected no-images marker in body")
	}
}

func TestNotifyNewLeadSendFailure(t *testing.T) {
	sender := &recordingSender{err: errors.New("relay down")}
	svc := NewService(sender, "ventas@example.com", logging.Default())

	if err := svc.NotifyNewLead(context.Background(), sampleLead(), nil); err == nil {
		t.Fatal("expected error to propagate")
	}
}

func TestNotifyDisabled(t *testing.T) {
	svc := NewService(nil, "", logging.Default())
	if svc.Enabled() {
		t.Fatal("expected disabled service")
	}
	if err := svc.NotifyNewLead(context.Background(), sampleLead(), nil); err != nil {
		t.Fatalf("disabled service must be a no-op, got %v", err)
	}
}

func TestNewSMTPSenderRequiresConfig(t *testing.T) {
	if s := NewSMTPSender(SMTPConfig{}, logging.Default()); s != nil {
		t.Fatal("expected nil sender without relay config")
	}
	s := NewSMTPSender(SMTPConfig{
		Host:     "smtp.example.com",
		Username: "u",
		Password: "p",
		From:     "no-reply@example.com",
	}, logging.Default())
	if s == nil {
		t.Fatal("expected configured sender")
	}
	if s.cfg.Port != 587 {
		t.Fatalf("expected default port 587, got %d", s.cfg.Port)
	}
}

func TestFormatMessageCRLF(t *testing.T) {
	out := formatMessage("no-reply@example.com", EmailMessage{
		To:      "ventas@example.com",
		Subject: "Nuevo lead",
		Body:    "línea uno\nlínea dos",
	})
	if !strings.Contains(out, "Subject: Nuevo lead\r\n") {
		t.Fatal("missing subject header")
	}
	if !strings.Contains(out, "línea uno\r\nlínea dos") {
		t.Fatal("body newlines must be CRLF")
	}
}
