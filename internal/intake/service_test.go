package intake

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gameskins-co/intake/internal/catalog"
	"github.com/gameskins-co/intake/internal/leads"
	"github.com/gameskins-co/intake/internal/media"
	"github.com/gameskins-co/intake/internal/notify"
)

type fakeStore struct {
	mu    sync.Mutex
	puts  map[string][]byte
	failN int
	calls int
}

func (s *fakeStore) Put(_ context.Context, _, path, _ string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.calls <= s.failN {
		return errors.New("bucket unreachable")
	}
	if s.puts == nil {
		s.puts = map[string][]byte{}
	}
	s.puts[path] = data
	return nil
}

type captureSender struct {
	mu   sync.Mutex
	sent []notify.EmailMessage
	err  error
}

func (c *captureSender) Send(_ context.Context, msg notify.EmailMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

func (c *captureSender) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sent)
}

type testEnv struct {
	repo   *leads.InMemoryRepository
	store  *fakeStore
	sender *captureSender
	svc    *Service
}

func newTestEnv(t *testing.T, opts Options) *testEnv {
	t.Helper()
	env := &testEnv{
		repo:   leads.NewInMemoryRepository(),
		store:  &fakeStore{},
		sender: &captureSender{},
	}
	ingestor := media.NewIngestor(env.store, "lead-images", "https://cdn.example.com", 5<<20, nil)
	notifier := notify.NewService(env.sender, "pedidos@example.com", nil)
	if opts.NotifyTimeout == 0 {
		opts.NotifyTimeout = 2 * time.Second
	}
	env.svc = NewService(env.repo, catalog.Default(), ingestor, notifier, opts, nil)
	return env
}

func baseSubmission() Submission {
	return Submission{
		Name:     "Ana Gómez",
		Email:    "ana@example.com",
		Whatsapp: "+57 300 123 4567",
		Console:  "PS5 Slim",
		ComboID:  "c6",
	}
}

func jpegUpload(name string) media.Upload {
	return media.Upload{
		Filename:    name,
		ContentType: "image/jpeg",
		Data:        []byte("imagedata"),
	}
}

func TestSubmitWithoutDesign(t *testing.T) {
	env := newTestEnv(t, Options{Fields: FieldPolicy{RequireEmail: true}})

	res, err := env.svc.Submit(context.Background(), baseSubmission())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Total != 40000 {
		t.Errorf("Total = %d, want 40000", res.Total)
	}
	if res.ImagesSaved != 0 {
		t.Errorf("ImagesSaved = %d, want 0", res.ImagesSaved)
	}

	lead, err := env.repo.GetByID(context.Background(), res.LeadID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if lead.Whatsapp != "+57 300 123 4567" {
		t.Errorf("Whatsapp = %q", lead.Whatsapp)
	}
	if !strings.Contains(lead.PriceSummary, "40000 COP") {
		t.Errorf("PriceSummary = %q, want the total in it", lead.PriceSummary)
	}
	if lead.HasDesign {
		t.Error("HasDesign = true, want false")
	}
}

func TestSubmitExtraControlPricing(t *testing.T) {
	env := newTestEnv(t, Options{})

	sub := baseSubmission()
	sub.ComboID = "c1"
	sub.Console = "Xbox Series X"
	sub.ExtraControl = true

	res, err := env.svc.Submit(context.Background(), sub)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if want := 80000 + catalog.ExtraControlPrice; res.Total != want {
		t.Errorf("Total = %d, want %d", res.Total, want)
	}
}

func TestSubmitFieldValidation(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Submission)
		wantErr error
	}{
		{"missing name", func(s *Submission) { s.Name = "  " }, ErrMissingField},
		{"missing email", func(s *Submission) { s.Email = "" }, ErrMissingField},
		{"invalid email", func(s *Submission) { s.Email = "ana@nowhere" }, ErrInvalidEmail},
		{"missing whatsapp", func(s *Submission) { s.Whatsapp = "abc" }, ErrMissingField},
		{"missing console", func(s *Submission) { s.Console = "" }, ErrMissingField},
		{"missing combo", func(s *Submission) { s.ComboID = "" }, ErrMissingField},
		{"unknown combo", func(s *Submission) { s.ComboID = "c99" }, catalog.ErrUnknownCombo},
		{"ineligible combo", func(s *Submission) { s.Console = "Xbox Series X" }, catalog.ErrIneligibleCombo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, Options{Fields: FieldPolicy{RequireEmail: true}})
			sub := baseSubmission()
			tt.mutate(&sub)

			_, err := env.svc.Submit(context.Background(), sub)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}

			all, _ := env.repo.List(context.Background(), leads.ListLeadsFilter{})
			if len(all) != 0 {
				t.Errorf("lead persisted despite validation failure")
			}
		})
	}
}

func TestSubmitOptionalEmail(t *testing.T) {
	env := newTestEnv(t, Options{})

	sub := baseSubmission()
	sub.Email = ""
	if _, err := env.svc.Submit(context.Background(), sub); err != nil {
		t.Fatalf("Submit with empty optional email: %v", err)
	}

	sub.Email = "not-an-email"
	if _, err := env.svc.Submit(context.Background(), sub); !errors.Is(err, ErrInvalidEmail) {
		t.Fatalf("err = %v, want ErrInvalidEmail", err)
	}
}

func TestSubmitRequiredShipping(t *testing.T) {
	env := newTestEnv(t, Options{Fields: FieldPolicy{RequireShipping: true}})

	sub := baseSubmission()
	sub.ReceiverName = "Ana Gómez"
	sub.City = "Bogotá"

	_, err := env.svc.Submit(context.Background(), sub)
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("err = %v, want ErrMissingField for address", err)
	}

	sub.Address = "Cra 7 # 12-34"
	if _, err := env.svc.Submit(context.Background(), sub); err != nil {
		t.Fatalf("Submit with full shipping: %v", err)
	}
}

func TestSubmitCustomDesignRequiresImages(t *testing.T) {
	env := newTestEnv(t, Options{})

	sub := baseSubmission()
	sub.HasDesign = "sí"

	_, err := env.svc.Submit(context.Background(), sub)
	if !errors.Is(err, ErrMissingField) {
		t.Fatalf("err = %v, want ErrMissingField", err)
	}
}

func TestSubmitRejectsBadImageBeforePersisting(t *testing.T) {
	env := newTestEnv(t, Options{})

	sub := baseSubmission()
	sub.HasDesign = "true"
	sub.Images = []media.Upload{{Filename: "anim.gif", ContentType: "image/gif", Data: []byte("gif")}}
	sub.Details = []string{"logo en la tapa"}

	_, err := env.svc.Submit(context.Background(), sub)
	if !errors.Is(err, media.ErrUnsupportedType) {
		t.Fatalf("err = %v, want ErrUnsupportedType", err)
	}

	all, _ := env.repo.List(context.Background(), leads.ListLeadsFilter{})
	if len(all) != 0 {
		t.Error("lead persisted despite rejected image")
	}
	if env.store.calls != 0 {
		t.Error("blob store touched despite rejected image")
	}
}

func TestSubmitDetailStrictMismatch(t *testing.T) {
	env := newTestEnv(t, Options{Details: DetailStrict})

	sub := baseSubmission()
	sub.HasDesign = "1"
	sub.Images = []media.Upload{jpegUpload("a.jpg"), jpegUpload("b.jpg")}
	sub.Details = []string{"solo una nota"}

	_, err := env.svc.Submit(context.Background(), sub)
	if !errors.Is(err, ErrMismatchedDetails) {
		t.Fatalf("err = %v, want ErrMismatchedDetails", err)
	}

	sub.Details = []string{"nota uno", "   "}
	if _, err := env.svc.Submit(context.Background(), sub); !errors.Is(err, ErrMismatchedDetails) {
		t.Fatalf("err = %v, want ErrMismatchedDetails for blank note", err)
	}
}

func TestSubmitDetailPlaceholderPads(t *testing.T) {
	env := newTestEnv(t, Options{Details: DetailPlaceholder})

	sub := baseSubmission()
	sub.HasDesign = "1"
	sub.Images = []media.Upload{jpegUpload("a.jpg"), jpegUpload("b.jpg")}
	sub.Details = []string{"logo grande"}

	res, err := env.svc.Submit(context.Background(), sub)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.ImagesSaved != 2 {
		t.Fatalf("ImagesSaved = %d, want 2", res.ImagesSaved)
	}

	imgs, err := env.repo.ListImages(context.Background(), res.LeadID)
	if err != nil {
		t.Fatalf("ListImages: %v", err)
	}
	if imgs[0].Details != "logo grande" {
		t.Errorf("first note = %q", imgs[0].Details)
	}
	if imgs[1].Details != DetailPlaceholderText {
		t.Errorf("second note = %q, want placeholder", imgs[1].Details)
	}
}

func TestSubmitImageStrictAbortKeepsLead(t *testing.T) {
	env := newTestEnv(t, Options{Images: ImageStrict})
	env.store.failN = 1

	sub := baseSubmission()
	sub.HasDesign = "1"
	sub.Images = []media.Upload{jpegUpload("a.jpg")}
	sub.Details = []string{"nota"}

	_, err := env.svc.Submit(context.Background(), sub)
	if !errors.Is(err, media.ErrUploadFailed) {
		t.Fatalf("err = %v, want ErrUploadFailed", err)
	}

	all, _ := env.repo.List(context.Background(), leads.ListLeadsFilter{})
	if len(all) != 1 {
		t.Fatalf("leads persisted = %d, want 1 (abort never rolls back)", len(all))
	}
	imgs, _ := env.repo.ListImages(context.Background(), all[0].ID)
	if len(imgs) != 0 {
		t.Errorf("images attached = %d, want 0", len(imgs))
	}
}

func TestSubmitImageLenientSkips(t *testing.T) {
	env := newTestEnv(t, Options{Images: ImageLenient})
	env.store.failN = 1

	sub := baseSubmission()
	sub.HasDesign = "1"
	sub.Images = []media.Upload{jpegUpload("a.jpg"), jpegUpload("b.jpg")}
	sub.Details = []string{"nota a", "nota b"}

	res, err := env.svc.Submit(context.Background(), sub)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.ImagesSaved != 1 || res.ImagesSkipped != 1 {
		t.Errorf("saved = %d skipped = %d, want 1 and 1", res.ImagesSaved, res.ImagesSkipped)
	}
}

func TestSubmitPersistenceFailure(t *testing.T) {
	env := newTestEnv(t, Options{})
	failing := &failingRepo{Repository: env.repo}
	env.svc.repo = failing

	_, err := env.svc.Submit(context.Background(), baseSubmission())
	if !errors.Is(err, ErrPersistence) {
		t.Fatalf("err = %v, want ErrPersistence", err)
	}
}

type failingRepo struct {
	leads.Repository
}

func (r *failingRepo) Create(context.Context, *leads.CreateLeadRequest) (*leads.Lead, error) {
	return nil, errors.New("connection refused")
}

func TestSubmitNotifyBestEffort(t *testing.T) {
	env := newTestEnv(t, Options{Notify: NotifyBestEffort})

	res, err := env.svc.Submit(context.Background(), baseSubmission())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if !res.Notified {
		t.Error("Notified = false, want true")
	}

	env.svc.Wait()
	if env.sender.count() != 1 {
		t.Fatalf("emails sent = %d, want 1", env.sender.count())
	}
	msg := env.sender.sent[0]
	if !strings.Contains(msg.Subject, "Ana Gómez") {
		t.Errorf("Subject = %q, want the customer name in it", msg.Subject)
	}
}

func TestSubmitNotifyBestEffortSwallowsFailure(t *testing.T) {
	env := newTestEnv(t, Options{Notify: NotifyBestEffort})
	env.sender.err = errors.New("smtp down")

	if _, err := env.svc.Submit(context.Background(), baseSubmission()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	env.svc.Wait()

	all, _ := env.repo.List(context.Background(), leads.ListLeadsFilter{})
	if len(all) != 1 {
		t.Fatalf("leads persisted = %d, want 1", len(all))
	}
}

func TestSubmitNotifyStrictDegradedSuccess(t *testing.T) {
	env := newTestEnv(t, Options{Notify: NotifyStrict})
	env.sender.err = errors.New("smtp down")

	res, err := env.svc.Submit(context.Background(), baseSubmission())
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.Notified {
		t.Error("Notified = true, want false on send failure")
	}

	all, _ := env.repo.List(context.Background(), leads.ListLeadsFilter{})
	if len(all) != 1 {
		t.Fatalf("leads persisted = %d, want 1 (notification never rolls back)", len(all))
	}
}

func TestSubmitIgnoresImagesWithoutDesignFlag(t *testing.T) {
	env := newTestEnv(t, Options{})

	sub := baseSubmission()
	sub.HasDesign = "no"
	sub.Images = []media.Upload{jpegUpload("stray.jpg")}

	res, err := env.svc.Submit(context.Background(), sub)
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if res.ImagesSaved != 0 {
		t.Errorf("ImagesSaved = %d, want 0", res.ImagesSaved)
	}
	if env.store.calls != 0 {
		t.Error("blob store touched for ignored images")
	}
}
