package gmailapi

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
)

// PushNotification is the payload Gmail's Pub/Sub push delivers, after
// decoding the base64 message data.
type PushNotification struct {
	EmailAddress string `json:"emailAddress"`
	HistoryID    uint64 `json:"historyId"`
}

type pushEnvelope struct {
	Message struct {
		Data string `json:"data"`
	} `json:"message"`
}

// ParsePushNotification decodes a Pub/Sub push envelope into the mailbox
// address and history id it carries.
func ParsePushNotification(body []byte) (*PushNotification, error) {
	var env pushEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, fmt.Errorf("failed to parse push envelope: %w", err)
	}
	if env.Message.Data == "" {
		return nil, fmt.Errorf("push envelope missing message data")
	}
	data, err := base64.StdEncoding.DecodeString(env.Message.Data)
	if err != nil {
		// Pub/Sub sometimes uses URL-safe encoding.
		data, err = base64.URLEncoding.DecodeString(env.Message.Data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode push data: %w", err)
		}
	}
	var n PushNotification
	if err := json.Unmarshal(data, &n); err != nil {
		return nil, fmt.Errorf("failed to parse push data: %w", err)
	}
	if n.EmailAddress == "" {
		return nil, fmt.Errorf("push data missing emailAddress")
	}
	return &n, nil
}
