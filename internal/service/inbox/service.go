package inbox

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lumina/partnerdesk/internal/domain"
	"github.com/lumina/partnerdesk/internal/templates"
)

// Service syncs the shared partnerships mailbox and sends templated
// outreach. Every synced inbound message is linked to an influencer by
// sender address; unknown senders get an import_pending influencer created
// for them.
type Service struct {
	repo     Repository
	mailer   Mailer // nil when Gmail is not configured
	linker   Linker
	renderer *templates.Engine
	now      func() time.Time
}

// NewService creates an inbox service. mailer may be nil.
func NewService(repo Repository, mailer Mailer, linker Linker, renderer *templates.Engine) *Service {
	return &Service{
		repo:     repo,
		mailer:   mailer,
		linker:   linker,
		renderer: renderer,
		now:      time.Now,
	}
}

// Sync pulls recent inbound messages from the mailbox and stores the ones
// not yet seen, linking each to an influencer by sender. Returns the count
// of newly stored messages. Re-running sync over the same window is safe.
func (s *Service) Sync(ctx context.Context, max int) (int, error) {
	if s.mailer == nil {
		return 0, ErrMailerUnavailable
	}
	if max <= 0 {
		max = 50
	}
	messages, err := s.mailer.ListInbound(ctx, max)
	if err != nil {
		return 0, fmt.Errorf("list inbound: %w", err)
	}

	imported := 0
	for _, msg := range messages {
		var influencerID *string
		inf, created, err := s.linker.FindOrCreateByEmail(ctx, msg.From, msg.FromName)
		if err != nil {
			log.Printf("[inbox.Service] could not link sender for message %s: %v", msg.GmailID, err)
		} else {
			influencerID = &inf.ID
			if created {
				log.Printf("[inbox.Service] auto-created influencer %s from sender", inf.ID)
			}
		}

		e := &domain.Email{
			ID:           uuid.New().String(),
			GmailID:      msg.GmailID,
			ThreadID:     msg.ThreadID,
			Direction:    domain.EmailInbound,
			InfluencerID: influencerID,
			FromAddress:  strings.ToLower(msg.From),
			ToAddress:    strings.ToLower(msg.To),
			Subject:      msg.Subject,
			Snippet:      msg.Snippet,
			ReceivedAt:   msg.ReceivedAt,
		}
		isNew, err := s.repo.UpsertEmail(ctx, e)
		if err != nil {
			return imported, fmt.Errorf("store message %s: %w", msg.GmailID, err)
		}
		if isNew {
			imported++
		}
	}
	if imported > 0 {
		log.Printf("[inbox.Service] synced %d new messages", imported)
	}
	return imported, nil
}

// Get returns a synced message.
func (s *Service) Get(ctx context.Context, id string) (*domain.Email, error) {
	return s.repo.GetEmail(ctx, id)
}

// List returns synced messages matching the filter.
func (s *Service) List(ctx context.Context, f ListFilter) ([]domain.Email, int, error) {
	if f.Limit <= 0 {
		f.Limit = 50
	}
	return s.repo.ListEmails(ctx, f)
}

// SendOutreachInput describes a templated outreach send.
type SendOutreachInput struct {
	To           string
	InfluencerID string
	TemplateID   string
	Vars         map[string]interface{}
	ThreadID     string // continue an existing thread when set
}

// SendOutreach renders the template and delivers it. A template variable
// with no value provided aborts the send: a half-filled pitch never leaves
// the building.
func (s *Service) SendOutreach(ctx context.Context, input SendOutreachInput) (*domain.Email, error) {
	if s.mailer == nil {
		return nil, ErrMailerUnavailable
	}
	if input.To == "" {
		return nil, fmt.Errorf("recipient is required")
	}
	tpl, err := s.repo.GetTemplate(ctx, input.TemplateID)
	if err != nil {
		return nil, err
	}

	if missing := s.renderer.MissingVariables(tpl.Body, input.Vars); len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingVariables, strings.Join(missing, ", "))
	}
	subject, err := s.renderer.Render("tpl-subject-"+tpl.ID, tpl.Subject, input.Vars)
	if err != nil {
		return nil, fmt.Errorf("render subject: %w", err)
	}
	body, err := s.renderer.Render("tpl-body-"+tpl.ID, tpl.Body, input.Vars)
	if err != nil {
		return nil, fmt.Errorf("render body: %w", err)
	}

	gmailID, threadID, err := s.mailer.Send(ctx, input.To, subject, body, input.ThreadID)
	if err != nil {
		return nil, fmt.Errorf("send: %w", err)
	}

	var influencerID *string
	if input.InfluencerID != "" {
		influencerID = &input.InfluencerID
	}
	e := &domain.Email{
		ID:           uuid.New().String(),
		GmailID:      gmailID,
		ThreadID:     threadID,
		Direction:    domain.EmailOutbound,
		InfluencerID: influencerID,
		ToAddress:    strings.ToLower(input.To),
		Subject:      subject,
		Snippet:      snippet(body),
		ReceivedAt:   s.now().UTC(),
	}
	if _, err := s.repo.UpsertEmail(ctx, e); err != nil {
		log.Printf("[inbox.Service] sent %s but failed to record it: %v", gmailID, err)
	}
	log.Printf("[inbox.Service] sent outreach using template %s", tpl.ID)
	return e, nil
}

// CreateTemplate validates and stores a new outreach template.
func (s *Service) CreateTemplate(ctx context.Context, name, subject, body string) (*domain.EmailTemplate, error) {
	if name == "" {
		return nil, fmt.Errorf("name is required")
	}
	if err := s.renderer.Parse(subject); err != nil {
		return nil, fmt.Errorf("invalid subject template: %w", err)
	}
	if err := s.renderer.Parse(body); err != nil {
		return nil, fmt.Errorf("invalid body template: %w", err)
	}
	now := s.now().UTC()
	t := &domain.EmailTemplate{
		ID:        uuid.New().String(),
		Name:      name,
		Subject:   subject,
		Body:      body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.CreateTemplate(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTemplate revalidates and stores edits to a template, dropping any
// cached compilation.
func (s *Service) UpdateTemplate(ctx context.Context, id, name, subject, body string) (*domain.EmailTemplate, error) {
	t, err := s.repo.GetTemplate(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.renderer.Parse(subject); err != nil {
		return nil, fmt.Errorf("invalid subject template: %w", err)
	}
	if err := s.renderer.Parse(body); err != nil {
		return nil, fmt.Errorf("invalid body template: %w", err)
	}
	t.Name = name
	t.Subject = subject
	t.Body = body
	t.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateTemplate(ctx, t); err != nil {
		return nil, err
	}
	s.renderer.InvalidateCache("tpl-subject-" + t.ID)
	s.renderer.InvalidateCache("tpl-body-" + t.ID)
	return t, nil
}

// ListTemplates returns all outreach templates.
func (s *Service) ListTemplates(ctx context.Context) ([]domain.EmailTemplate, error) {
	return s.repo.ListTemplates(ctx)
}

// DeleteTemplate removes a template.
func (s *Service) DeleteTemplate(ctx context.Context, id string) error {
	if err := s.repo.DeleteTemplate(ctx, id); err != nil {
		return err
	}
	s.renderer.InvalidateCache("tpl-subject-" + id)
	s.renderer.InvalidateCache("tpl-body-" + id)
	return nil
}

func snippet(body string) string {
	body = strings.Join(strings.Fields(body), " ")
	if len(body) > 180 {
		return body[:180]
	}
	return body
}
