package gmailapi

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripFunc func(req *http.Request) (*http.Response, error)

func (f roundTripFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func newTestClient(fn roundTripFunc) *Client {
	c := &Client{sender: "partnerships@lumina.com.br"}
	c.SetHTTPClient(fn)
	return c
}

func TestListInbound(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		switch {
		case strings.Contains(req.URL.String(), "/messages?"):
			return jsonResponse(200, `{"messages":[{"id":"m1","threadId":"t1"}]}`), nil
		case strings.Contains(req.URL.Path, "/messages/m1"):
			return jsonResponse(200, `{
				"id":"m1","threadId":"t1","snippet":"oi, adorei a proposta",
				"internalDate":"1756600000000",
				"payload":{"headers":[
					{"name":"From","value":"Maria Silva <maria@example.com>"},
					{"name":"To","value":"partnerships@lumina.com.br"},
					{"name":"Subject","value":"Re: Parceria"}
				]}
			}`), nil
		}
		t.Fatalf("unexpected request %s", req.URL.String())
		return nil, nil
	})

	msgs, err := c.ListInbound(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "maria@example.com", msgs[0].From)
	assert.Equal(t, "Maria Silva", msgs[0].FromName)
	assert.Equal(t, "Re: Parceria", msgs[0].Subject)
	assert.False(t, msgs[0].ReceivedAt.IsZero())
}

func TestSendBuildsMIMEAndThreads(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		require.Equal(t, http.MethodPost, req.Method)
		body, _ := io.ReadAll(req.Body)
		var payload struct {
			Raw      string `json:"raw"`
			ThreadID string `json:"threadId"`
		}
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, "t-77", payload.ThreadID)

		raw, err := base64.URLEncoding.DecodeString(payload.Raw)
		require.NoError(t, err)
		mime := string(raw)
		assert.Contains(t, mime, "From: partnerships@lumina.com.br")
		assert.Contains(t, mime, "To: maria@example.com")
		assert.Contains(t, mime, "Subject: Proposta")
		assert.Contains(t, mime, "Oi Maria")

		return jsonResponse(200, `{"id":"sent-1","threadId":"t-77"}`), nil
	})

	id, threadID, err := c.Send(context.Background(), "maria@example.com", "Proposta", "Oi Maria", "t-77")
	require.NoError(t, err)
	assert.Equal(t, "sent-1", id)
	assert.Equal(t, "t-77", threadID)
}

func TestSendPropagatesProviderError(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(429, `{"error":{"message":"rate limit"}}`), nil
	})
	_, _, err := c.Send(context.Background(), "x@example.com", "s", "b", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit")
}

func TestHistorySince(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		assert.Contains(t, req.URL.String(), "startHistoryId=42")
		return jsonResponse(200, `{"history":[
			{"messagesAdded":[{"message":{"id":"m9"}},{"message":{"id":"m10"}}]}
		],"historyId":"50"}`), nil
	})
	ids, err := c.HistorySince(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, []string{"m9", "m10"}, ids)
}

func TestParsePushNotification(t *testing.T) {
	data := base64.StdEncoding.EncodeToString([]byte(`{"emailAddress":"partnerships@lumina.com.br","historyId":4711}`))
	body := []byte(`{"message":{"data":"` + data + `"}}`)

	n, err := ParsePushNotification(body)
	require.NoError(t, err)
	assert.Equal(t, "partnerships@lumina.com.br", n.EmailAddress)
	assert.Equal(t, uint64(4711), n.HistoryID)

	_, err = ParsePushNotification([]byte(`{"message":{}}`))
	assert.Error(t, err)
	_, err = ParsePushNotification([]byte(`not json`))
	assert.Error(t, err)
}
