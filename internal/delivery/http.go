package delivery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/leandrodaf/beatcoach/sdk/contracts"
)

// HTTPPublisher POSTs each report as a JSON Envelope.
type HTTPPublisher struct {
	url    string
	client *http.Client
}

// NewHTTPPublisher returns a publisher posting to url. A nil client uses one
// with a 5 second timeout.
func NewHTTPPublisher(url string, client *http.Client) *HTTPPublisher {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &HTTPPublisher{url: url, client: client}
}

func (p *HTTPPublisher) Publish(ctx context.Context, r contracts.Report) error {
	body, err := Encode(r)
	if err != nil {
		return fmt.Errorf("encode %s: %w", r.Event(), err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("scoring service returned %s", resp.Status)
	}
	return nil
}

func (p *HTTPPublisher) Close() error {
	p.client.CloseIdleConnections()
	return nil
}
