package inbox

import "errors"

// Sentinel errors for the inbox service layer.
var (
	ErrNotFound          = errors.New("email not found")
	ErrTemplateNotFound  = errors.New("email template not found")
	ErrMailerUnavailable = errors.New("gmail integration is not configured")
	ErrMissingVariables  = errors.New("template variables missing")
)
