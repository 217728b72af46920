package partnership

import "errors"

// Sentinel errors for the partnership service layer.
var (
	ErrNotFound             = errors.New("workflow not found")
	ErrInfluencerNotFound   = errors.New("influencer not found")
	ErrActiveWorkflowExists = errors.New("influencer already has an active workflow")
	ErrWorkflowNotActive    = errors.New("workflow is not active")
	ErrAlreadyCancelled     = errors.New("workflow is already cancelled")
	ErrInvalidStep          = errors.New("invalid workflow step")
	ErrFieldNotAllowed      = errors.New("field is not writable at the current step")
	ErrInvalidPortalToken   = errors.New("invalid portal token")
)
