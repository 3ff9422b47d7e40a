package alert

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Ntfy posts messages to an ntfy topic with HTTP basic authentication.
type Ntfy struct {
	url      string
	user     string
	password string
	client   *http.Client
}

// NewNtfy creates an ntfy notifier. A nil client selects http.DefaultClient.
func NewNtfy(url, user, password string, client *http.Client) *Ntfy {
	if client == nil {
		client = http.DefaultClient
	}
	return &Ntfy{
		url:      url,
		user:     user,
		password: password,
		client:   client,
	}
}

// Notify POSTs message as a text/plain body.
func (n *Ntfy) Notify(ctx context.Context, message string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, strings.NewReader(message))
	if err != nil {
		return fmt.Errorf("could not create ntfy request: %w", err)
	}
	req.SetBasicAuth(n.user, n.password)
	req.Header.Set("Content-Type", "text/plain")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("could not POST ntfy alert: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ntfy alert rejected: %s", resp.Status)
	}

	return nil
}
