package shopify

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumina/partnerdesk/internal/config"
)

// roundTripFunc lets tests script responses without a listener.
type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     http.Header{"Content-Type": []string{"application/json"}},
	}
}

func newTestClient(fn roundTripFunc) *Client {
	c := NewClient(config.ShopifyConfig{
		ShopDomain:     "lumina-test.myshopify.com",
		AccessToken:    "shpat_test",
		APIVersion:     "2024-07",
		TimeoutSeconds: 5,
	})
	c.SetHTTPClient(fn)
	return c
}

func TestCreateDiscount(t *testing.T) {
	var calls []string
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		calls = append(calls, req.Method+" "+req.URL.Path)
		assert.Equal(t, "shpat_test", req.Header.Get("X-Shopify-Access-Token"))
		switch {
		case strings.HasSuffix(req.URL.Path, "/price_rules.json"):
			return jsonResponse(201, `{"price_rule":{"id":111}}`), nil
		case strings.Contains(req.URL.Path, "/discount_codes.json"):
			return jsonResponse(201, `{"discount_code":{"id":222}}`), nil
		}
		t.Fatalf("unexpected request %s", req.URL.Path)
		return nil, nil
	})

	ruleID, discountID, err := c.CreateDiscount(context.Background(), "MARIA15", 15)
	require.NoError(t, err)
	assert.Equal(t, "111", ruleID)
	assert.Equal(t, "222", discountID)
	require.Len(t, calls, 2)
	assert.Contains(t, calls[1], "/price_rules/111/discount_codes.json")
}

func TestDeleteDiscountNotFoundIsNotAnError(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(404, `{"errors":"Not Found"}`), nil
	})
	found, err := c.DeleteDiscount(context.Background(), "999")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestDeleteDiscountPropagatesOtherErrors(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(403, `{"errors":"forbidden"}`), nil
	})
	_, err := c.DeleteDiscount(context.Background(), "999")
	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, 403, apiErr.StatusCode)
}

func TestParseOrder(t *testing.T) {
	body := []byte(`{
		"id": 820982911946154508,
		"name": "#9999",
		"total_price": "319.90",
		"currency": "BRL",
		"discount_codes": [{"code": "MARIA15"}],
		"created_at": "2026-08-30T14:00:00-03:00"
	}`)
	o, err := ParseOrder(body)
	require.NoError(t, err)
	assert.Equal(t, float64(319.90), float64(o.TotalPrice))
	assert.Equal(t, "BRL", o.Currency)
	require.Len(t, o.DiscountCodes, 1)
	assert.Equal(t, "MARIA15", o.DiscountCodes[0].Code)

	_, err = ParseOrder([]byte(`{"name":"no id"}`))
	assert.Error(t, err)
}

func TestVerifyWebhookSignature(t *testing.T) {
	secret := "whsec"
	body := []byte(`{"id":1}`)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	sig := base64.StdEncoding.EncodeToString(mac.Sum(nil))

	assert.True(t, VerifyWebhookSignature(secret, body, sig))
	assert.False(t, VerifyWebhookSignature(secret, []byte(`{"id":2}`), sig))
	assert.False(t, VerifyWebhookSignature("", body, sig))
	assert.False(t, VerifyWebhookSignature(secret, body, ""))
}
