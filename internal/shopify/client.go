// Package shopify is a minimal Shopify Admin API client covering the
// discount and order surfaces the back office uses.
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lumina/partnerdesk/internal/config"
	"github.com/lumina/partnerdesk/internal/pkg/httpretry"
)

// Client is the Shopify Admin API client.
type Client struct {
	shopDomain  string
	accessToken string
	apiVersion  string
	httpClient  httpretry.HTTPDoer
}

// NewClient creates a Shopify client from config.
func NewClient(cfg config.ShopifyConfig) *Client {
	return &Client{
		shopDomain:  cfg.ShopDomain,
		accessToken: cfg.AccessToken,
		apiVersion:  cfg.APIVersion,
		httpClient: httpretry.NewRetryClient(&http.Client{
			Timeout: cfg.Timeout(),
		}, 3),
	}
}

// SetHTTPClient sets a custom HTTP client (useful for testing)
func (c *Client) SetHTTPClient(client httpretry.HTTPDoer) {
	c.httpClient = client
}

// APIError is a non-2xx Admin API response.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("shopify API error (status %d): %s", e.StatusCode, e.Body)
}

func (c *Client) baseURL() string {
	return fmt.Sprintf("https://%s/admin/api/%s", c.shopDomain, c.apiVersion)
}

// doRequest performs an authenticated request to the Admin API.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL()+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Shopify-Access-Token", c.accessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}
	return respBody, nil
}

// CreateDiscount creates a percentage price rule plus one discount code
// under it, returning both remote ids.
func (c *Client) CreateDiscount(ctx context.Context, code string, percentOff float64) (string, string, error) {
	ruleReq := priceRuleRequest{PriceRule: priceRulePayload{
		Title:            code,
		TargetType:       "line_item",
		TargetSelection:  "all",
		AllocationMethod: "across",
		ValueType:        "percentage",
		Value:            fmt.Sprintf("-%.1f", percentOff),
		CustomerSel:      "all",
		StartsAt:         time.Now().UTC().Format(time.RFC3339),
	}}
	respBody, err := c.doRequest(ctx, http.MethodPost, "/price_rules.json", ruleReq)
	if err != nil {
		return "", "", err
	}
	var ruleResp priceRuleResponse
	if err := json.Unmarshal(respBody, &ruleResp); err != nil {
		return "", "", fmt.Errorf("failed to parse price rule response: %w", err)
	}
	ruleID := fmt.Sprintf("%d", ruleResp.PriceRule.ID)

	codeReq := discountCodeRequest{DiscountCode: discountCodePayload{Code: code}}
	respBody, err = c.doRequest(ctx, http.MethodPost, "/price_rules/"+ruleID+"/discount_codes.json", codeReq)
	if err != nil {
		return "", "", err
	}
	var codeResp discountCodeResponse
	if err := json.Unmarshal(respBody, &codeResp); err != nil {
		return "", "", fmt.Errorf("failed to parse discount code response: %w", err)
	}
	return ruleID, fmt.Sprintf("%d", codeResp.DiscountCode.ID), nil
}

// DeleteDiscount removes a price rule and its codes. found=false means the
// storefront no longer knows the rule, which callers treat as already gone.
func (c *Client) DeleteDiscount(ctx context.Context, priceRuleID string) (bool, error) {
	_, err := c.doRequest(ctx, http.MethodDelete, "/price_rules/"+priceRuleID+".json", nil)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// GetOrder fetches a single order by id.
func (c *Client) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	respBody, err := c.doRequest(ctx, http.MethodGet, "/orders/"+orderID+".json", nil)
	if err != nil {
		return nil, err
	}
	var resp orderResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse order response: %w", err)
	}
	return &resp.Order, nil
}
