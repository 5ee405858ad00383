package adsbx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"skywatcher/internal/models"
)

// ErrUnexpectedStatus is returned when the endpoint answers with a non-2xx status
var ErrUnexpectedStatus = errors.New("unexpected HTTP status")

const (
	DefaultTimeout = 10 * time.Second
	// maxBodyBytes bounds how much of a response is read
	maxBodyBytes = 16 << 20
)

// aircraftList is the VirtualRadar AircraftList.json envelope
type aircraftList struct {
	AcList []models.AircraftRecord `json:"acList"`
}

// Client fetches nearby aircraft from the ADS-B Exchange VirtualRadar API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for baseURL with a fixed per-request timeout
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchNearby issues one GET for aircraft between 0 and radiusKm from (lat, lon).
// It does not retry; on any failure it returns nil records and the error.
func (c *Client) FetchNearby(ctx context.Context, lat, lon, radiusKm float64) ([]models.AircraftRecord, error) {
	reqURL, err := c.buildURL(lat, lon, radiusKm)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch aircraft list: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read aircraft list: %w", err)
	}

	var list aircraftList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("failed to decode aircraft list: %w", err)
	}

	if list.AcList == nil {
		return []models.AircraftRecord{}, nil
	}
	return list.AcList, nil
}

func (c *Client) buildURL(lat, lon, radiusKm float64) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid endpoint URL %q: %w", c.baseURL, err)
	}

	q := u.Query()
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lng", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("fDstL", "0")
	q.Set("fDstU", strconv.FormatFloat(radiusKm, 'f', -1, 64))
	u.RawQuery = q.Encode()

	return u.String(), nil
}
