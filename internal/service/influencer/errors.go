package influencer

import "errors"

// Sentinel errors for the influencer service layer.
var (
	ErrNotFound        = errors.New("influencer not found")
	ErrDuplicateHandle = errors.New("an influencer with this handle already exists")
	ErrInvalidStatus   = errors.New("invalid influencer status")
)
