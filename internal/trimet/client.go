package trimet

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/transit-times/transit-times/internal/logging"
)

// Client fetches raw arrivals documents, one stop per request. It does not
// retry; the poller's fixed period is the retry mechanism.
type Client struct {
	baseURL    string
	appID      string
	httpClient *http.Client
}

// NewClient returns a client for the arrivals endpoint at baseURL. Every
// request is bounded by timeout.
func NewClient(baseURL, appID string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		appID:      appID,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// StopURL builds the request URL for stopID.
func (c *Client) StopURL(stopID string) string {
	return c.baseURL + "/locIDs/" + url.PathEscape(stopID) + "/appID/" + url.PathEscape(c.appID)
}

// Fetch downloads the arrivals document for stopID. Failures are *FetchError.
func (c *Client) Fetch(ctx context.Context, stopID string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.StopURL(stopID), nil)
	if err != nil {
		return nil, &FetchError{StopID: stopID, Kind: FetchNetwork, Err: err}
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &FetchError{StopID: stopID, Kind: FetchNetwork, Err: redact(err)}
	}
	defer logging.SafeCloseWithLogging(resp.Body,
		logging.FromContext(ctx).With(slog.String("component", "trimet_client")),
		"http_response_body")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &FetchError{StopID: stopID, Kind: FetchStatus, StatusCode: resp.StatusCode}
	}

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{StopID: stopID, Kind: FetchNetwork, Err: err}
	}
	if len(b) == 0 {
		return nil, &FetchError{StopID: stopID, Kind: FetchEmpty}
	}

	return b, nil
}

// redact drops the request URL, which carries the credential, from transport errors.
func redact(err error) error {
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err
	}
	return err
}
