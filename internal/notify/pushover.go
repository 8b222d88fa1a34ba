package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// pushoverAPIURL is the message submission endpoint; tests point it at httptest.
var pushoverAPIURL = "https://api.pushover.net:443/1/messages.json"

// Pushover sends messages through the Pushover API.
type Pushover struct{ UserKey, APIToken string }

func (p *Pushover) Name() string { return "Pushover" }

// Send posts a form-encoded message. The response body is not inspected;
// only a non-2xx status is reported.
func (p *Pushover) Send(ctx context.Context, title, message string) error {
	form := url.Values{}
	form.Set("token", p.APIToken)
	form.Set("user", p.UserKey)
	form.Set("title", title)
	form.Set("message", message)
	return postForm(ctx, pushoverAPIURL, form)
}

// postForm submits form with a fresh client per call.
func postForm(ctx context.Context, endpoint string, form url.Values) error {
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("pushover returned status %d", resp.StatusCode)
	}
	return nil
}
