// Package sync mirrors local mutations to a remote store on a
// best-effort basis. The local write has already happened by the time
// anything here runs; failures are logged and never surfaced or rolled
// back (last-writer-wins).
package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/nbryan/concierge/internal/store"
)

// Client posts entity writes to a remote endpoint. A nil *Client is
// valid and does nothing, which is how offline mode works.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a sync client for the given base URL. Returns nil when the
// URL is empty so callers can pass the result around unconditionally.
func New(baseURL string) *Client {
	if baseURL == "" {
		return nil
	}
	return &Client{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// Push mirrors one created or updated item. Fire-and-forget: the
// response body is ignored beyond its status code, and every failure
// path ends in a log line.
func (c *Client) Push(ctx context.Context, kind store.Kind, item store.Item) {
	if c == nil {
		return
	}
	payload, err := json.Marshal(struct {
		Kind store.Kind `json:"kind"`
		Item store.Item `json:"item"`
	}{kind, item})
	if err != nil {
		log.Printf("sync: encoding %s %s: %v", kind, item.ID, err)
		return
	}

	url := fmt.Sprintf("%s/items/%s", c.baseURL, kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		log.Printf("sync: building request for %s %s: %v", kind, item.ID, err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		log.Printf("sync: pushing %s %s: %v", kind, item.ID, err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		log.Printf("sync: pushing %s %s: status %d", kind, item.ID, resp.StatusCode)
	}
}
