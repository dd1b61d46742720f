package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bryanwahyu/sentichain/internal/domain/sentiment"
)

// Client calls an external sentiment backend speaking the /api/analyze contract.
type Client struct {
	endpoint string
	http     *http.Client
}

func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{endpoint: endpoint, http: &http.Client{Timeout: timeout}}
}

// Analyze implements sentiment.RemoteAnalyzer. Every failure is a *sentiment.TransportError.
func (c *Client) Analyze(ctx context.Context, text string) (sentiment.RemoteResponse, error) {
	body, err := json.Marshal(sentiment.RemoteRequest{Text: text})
	if err != nil {
		return sentiment.RemoteResponse{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return sentiment.RemoteResponse{}, transport(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return sentiment.RemoteResponse{}, transport(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return sentiment.RemoteResponse{}, transport(err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return sentiment.RemoteResponse{}, transport(fmt.Errorf("status %d: %s", resp.StatusCode, msg))
	}

	var out sentiment.RemoteResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return sentiment.RemoteResponse{}, transport(fmt.Errorf("decode response: %w", err))
	}
	if out.Sentiment == "" {
		return sentiment.RemoteResponse{}, transport(errors.New("response has no sentiment"))
	}
	return out, nil
}

func transport(err error) error {
	return &sentiment.TransportError{Op: "remote analyze", Err: err}
}
