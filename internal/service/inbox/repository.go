package inbox

import (
	"context"
	"time"

	"github.com/lumina/partnerdesk/internal/domain"
)

// ListFilter narrows email listings.
type ListFilter struct {
	InfluencerID string
	Direction    string
	Limit        int
	Offset       int
}

// Repository defines the data access contract for synced emails and
// outreach templates.
type Repository interface {
	// UpsertEmail inserts the message unless its gmail id is already
	// stored. Returns true when a new row was created.
	UpsertEmail(ctx context.Context, e *domain.Email) (bool, error)

	GetEmail(ctx context.Context, id string) (*domain.Email, error)
	ListEmails(ctx context.Context, f ListFilter) ([]domain.Email, int, error)

	GetTemplate(ctx context.Context, id string) (*domain.EmailTemplate, error)
	ListTemplates(ctx context.Context) ([]domain.EmailTemplate, error)
	CreateTemplate(ctx context.Context, t *domain.EmailTemplate) error
	UpdateTemplate(ctx context.Context, t *domain.EmailTemplate) error
	DeleteTemplate(ctx context.Context, id string) error
}

// InboundMessage is a message pulled from the mailbox provider.
type InboundMessage struct {
	GmailID    string
	ThreadID   string
	From       string
	FromName   string
	To         string
	Subject    string
	Snippet    string
	ReceivedAt time.Time
}

// Mailer is the slice of the Gmail API the inbox service needs.
type Mailer interface {
	// ListInbound returns recent inbox messages, newest first.
	ListInbound(ctx context.Context, max int) ([]InboundMessage, error)

	// Send delivers a message and returns the provider's message and
	// thread ids. A non-empty threadID continues an existing thread.
	Send(ctx context.Context, to, subject, body, threadID string) (gmailID, newThreadID string, err error)
}

// Linker resolves an inbound sender to an influencer, creating one when no
// match exists. Satisfied by the influencer service.
type Linker interface {
	FindOrCreateByEmail(ctx context.Context, email, name string) (*domain.Influencer, bool, error)
}
