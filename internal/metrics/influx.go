package metrics

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/weepush/weepush/internal/logging"
)

// StartInfluxPusher starts a background loop to push metrics to InfluxDB
func StartInfluxPusher(ctx context.Context, baseURL, token, org, bucket string, interval time.Duration) {
	if baseURL == "" || bucket == "" {
		return
	}
	if interval <= 0 {
		interval = time.Minute
	}
	logging.Get().Info().Str("url", baseURL).Dur("interval", interval).Msg("starting influxdb pusher")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	client := &http.Client{Timeout: 5 * time.Second}
	q := url.Values{}
	q.Set("org", org)
	q.Set("bucket", bucket)
	q.Set("precision", "s")
	writeURL := fmt.Sprintf("%s/api/v2/write?%s", strings.TrimRight(baseURL, "/"), q.Encode())

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pushToInflux(ctx, client, writeURL, token)
		}
	}
}

// lineProtocol renders s as a single InfluxDB line.
// Example: weepush events=10i,sent=2i,failed=0i,... 1678888888
func lineProtocol(s StatsSnapshot, now time.Time) string {
	connected := 0
	if s.RelayConnected {
		connected = 1
	}
	return fmt.Sprintf(
		"weepush events=%di,qualified_private=%di,qualified_hilight=%di,skipped_not_away=%di,skipped_no_credentials=%di,skipped_rate_limited=%di,sent=%di,failed=%di,relay_connected=%di %d",
		s.Events, s.QualifiedPrivate, s.QualifiedHilight, s.SkippedNotAway, s.SkippedNoCreds, s.SkippedRateLimited,
		s.Sent, s.Failed, connected, now.Unix(),
	)
}

func pushToInflux(ctx context.Context, client *http.Client, writeURL, token string) {
	req, err := http.NewRequestWithContext(ctx, "POST", writeURL, strings.NewReader(lineProtocol(GetSnapshot(), time.Now())))
	if err != nil {
		logging.Get().Error().Err(err).Msg("influxdb request creation failed")
		return
	}

	req.Header.Set("Authorization", "Token "+token)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")

	resp, err := client.Do(req)
	if err != nil {
		logging.Get().Error().Err(err).Msg("influxdb push failed")
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		logging.Get().Warn().Int("status", resp.StatusCode).Msg("influxdb rejected metrics")
	}
}
