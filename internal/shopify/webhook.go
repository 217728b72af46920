package shopify

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
)

// VerifyWebhookSignature checks the X-Shopify-Hmac-Sha256 header against the
// raw request body using the shared webhook secret.
func VerifyWebhookSignature(secret string, body []byte, headerSignature string) bool {
	if secret == "" || headerSignature == "" {
		return false
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(headerSignature))
}
