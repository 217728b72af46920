// Package gmailapi is a minimal Gmail API client for the shared
// partnerships mailbox, authenticated with a refresh-token-backed OAuth
// client.
package gmailapi

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"strconv"
	"time"

	"golang.org/x/oauth2"

	"github.com/lumina/partnerdesk/internal/config"
)

const apiBase = "https://gmail.googleapis.com/gmail/v1/users/me"

// googleTokenURL is Google's OAuth2 token endpoint.
const googleTokenURL = "https://oauth2.googleapis.com/token"

// HTTPDoer executes HTTP requests. The oauth2 transport satisfies it.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is the Gmail API client.
type Client struct {
	sender     string
	httpClient HTTPDoer
}

// NewClient creates a Gmail client whose transport refreshes access tokens
// from the stored refresh token.
func NewClient(cfg config.GmailConfig) *Client {
	oauthCfg := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     oauth2.Endpoint{TokenURL: googleTokenURL},
		Scopes: []string{
			"https://www.googleapis.com/auth/gmail.readonly",
			"https://www.googleapis.com/auth/gmail.send",
		},
	}
	token := &oauth2.Token{RefreshToken: cfg.RefreshToken}
	httpClient := oauth2.NewClient(context.Background(), oauthCfg.TokenSource(context.Background(), token))
	httpClient.Timeout = cfg.Timeout()
	return &Client{sender: cfg.SenderAddress, httpClient: httpClient}
}

// SetHTTPClient sets a custom HTTP client (useful for testing)
func (c *Client) SetHTTPClient(client HTTPDoer) {
	c.httpClient = client
}

// Message is a mailbox message with the headers the inbox sync needs.
type Message struct {
	ID         string
	ThreadID   string
	From       string
	FromName   string
	To         string
	Subject    string
	Snippet    string
	ReceivedAt time.Time
}

func (c *Client) doRequest(ctx context.Context, method, endpoint string, body interface{}) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}
	req, err := http.NewRequestWithContext(ctx, method, apiBase+endpoint, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
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
		return nil, fmt.Errorf("gmail API error (status %d): %s", resp.StatusCode, string(respBody))
	}
	return respBody, nil
}

type messageListResponse struct {
	Messages []struct {
		ID       string `json:"id"`
		ThreadID string `json:"threadId"`
	} `json:"messages"`
}

type messageResponse struct {
	ID           string `json:"id"`
	ThreadID     string `json:"threadId"`
	Snippet      string `json:"snippet"`
	InternalDate string `json:"internalDate"`
	Payload      struct {
		Headers []struct {
			Name  string `json:"name"`
			Value string `json:"value"`
		} `json:"headers"`
	} `json:"payload"`
}

// ListInbound returns recent inbox messages, newest first.
func (c *Client) ListInbound(ctx context.Context, max int) ([]Message, error) {
	if max <= 0 {
		max = 50
	}
	respBody, err := c.doRequest(ctx, http.MethodGet,
		fmt.Sprintf("/messages?maxResults=%d&q=in:inbox", max), nil)
	if err != nil {
		return nil, err
	}
	var list messageListResponse
	if err := json.Unmarshal(respBody, &list); err != nil {
		return nil, fmt.Errorf("failed to parse message list: %w", err)
	}

	out := make([]Message, 0, len(list.Messages))
	for _, ref := range list.Messages {
		msg, err := c.getMessage(ctx, ref.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, *msg)
	}
	return out, nil
}

func (c *Client) getMessage(ctx context.Context, id string) (*Message, error) {
	respBody, err := c.doRequest(ctx, http.MethodGet,
		"/messages/"+id+"?format=metadata&metadataHeaders=From&metadataHeaders=To&metadataHeaders=Subject", nil)
	if err != nil {
		return nil, err
	}
	var raw messageResponse
	if err := json.Unmarshal(respBody, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse message %s: %w", id, err)
	}

	msg := &Message{
		ID:       raw.ID,
		ThreadID: raw.ThreadID,
		Snippet:  raw.Snippet,
	}
	if ms, err := strconv.ParseInt(raw.InternalDate, 10, 64); err == nil {
		msg.ReceivedAt = time.UnixMilli(ms).UTC()
	}
	for _, h := range raw.Payload.Headers {
		switch h.Name {
		case "From":
			if addr, err := mail.ParseAddress(h.Value); err == nil {
				msg.From = addr.Address
				msg.FromName = addr.Name
			} else {
				msg.From = h.Value
			}
		case "To":
			if addr, err := mail.ParseAddress(h.Value); err == nil {
				msg.To = addr.Address
			} else {
				msg.To = h.Value
			}
		case "Subject":
			msg.Subject = h.Value
		}
	}
	return msg, nil
}

type sendRequest struct {
	Raw      string `json:"raw"`
	ThreadID string `json:"threadId,omitempty"`
}

type sendResponse struct {
	ID       string `json:"id"`
	ThreadID string `json:"threadId"`
}

// Send delivers a MIME message. A non-empty threadID continues the thread.
// Provider errors propagate unchanged to the caller.
func (c *Client) Send(ctx context.Context, to, subject, body, threadID string) (string, string, error) {
	var mime bytes.Buffer
	fmt.Fprintf(&mime, "From: %s\r\n", c.sender)
	fmt.Fprintf(&mime, "To: %s\r\n", to)
	fmt.Fprintf(&mime, "Subject: %s\r\n", subject)
	mime.WriteString("MIME-Version: 1.0\r\n")
	mime.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	mime.WriteString("\r\n")
	mime.WriteString(body)

	req := sendRequest{
		Raw:      base64.URLEncoding.EncodeToString(mime.Bytes()),
		ThreadID: threadID,
	}
	respBody, err := c.doRequest(ctx, http.MethodPost, "/messages/send", req)
	if err != nil {
		return "", "", err
	}
	var resp sendResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", "", fmt.Errorf("failed to parse send response: %w", err)
	}
	return resp.ID, resp.ThreadID, nil
}

type historyResponse struct {
	History []struct {
		MessagesAdded []struct {
			Message struct {
				ID string `json:"id"`
			} `json:"message"`
		} `json:"messagesAdded"`
	} `json:"history"`
	HistoryID string `json:"historyId"`
}

// HistorySince returns ids of messages added after the given history id,
// used by the push-notification follow-up sync.
func (c *Client) HistorySince(ctx context.Context, historyID uint64) ([]string, error) {
	respBody, err := c.doRequest(ctx, http.MethodGet,
		fmt.Sprintf("/history?startHistoryId=%d&historyTypes=messageAdded", historyID), nil)
	if err != nil {
		return nil, err
	}
	var resp historyResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse history response: %w", err)
	}
	var ids []string
	for _, h := range resp.History {
		for _, added := range h.MessagesAdded {
			ids = append(ids, added.Message.ID)
		}
	}
	return ids, nil
}
