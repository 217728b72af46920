package domain

import "time"

// EmailDirection distinguishes inbound from outbound messages.
type EmailDirection string

const (
	EmailInbound  EmailDirection = "inbound"
	EmailOutbound EmailDirection = "outbound"
)

// Email is a synced Gmail message, optionally linked to an influencer by
// sender address. Unmatched inbound senders auto-create an influencer in
// import_pending status.
type Email struct {
	ID           string         `json:"id" db:"id"`
	GmailID      string         `json:"gmail_id" db:"gmail_id"`
	ThreadID     string         `json:"thread_id" db:"thread_id"`
	Direction    EmailDirection `json:"direction" db:"direction"`
	InfluencerID *string        `json:"influencer_id" db:"influencer_id"`

	FromAddress string `json:"from_address" db:"from_address"`
	ToAddress   string `json:"to_address" db:"to_address"`
	Subject     string `json:"subject" db:"subject"`
	Snippet     string `json:"snippet" db:"snippet"`

	ReceivedAt time.Time `json:"received_at" db:"received_at"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// EmailTemplate is an operator-authored outreach template. Bodies use Liquid
// placeholders ({{ nome }}, {{ valor }}, ...) substituted at send time.
type EmailTemplate struct {
	ID        string    `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Subject   string    `json:"subject" db:"subject"`
	Body      string    `json:"body" db:"body"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
