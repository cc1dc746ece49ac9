package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-querystring/query"
	"go.uber.org/zap"

	"github.com/kailas-cloud/dinefind/internal/domain"
	"github.com/kailas-cloud/dinefind/internal/domain/restaurant"
	"github.com/kailas-cloud/dinefind/internal/domain/search/request"
	"github.com/kailas-cloud/dinefind/internal/domain/upload"
	"github.com/kailas-cloud/dinefind/internal/metrics"
)

// Endpoint labels used in metrics and errors.
const (
	EndpointListing = "listing"
	EndpointFilter  = "filter"
	EndpointImage   = "image"
	EndpointDetail  = "detail"
)

const (
	defaultTimeout = 15 * time.Second
	maxBodyBytes   = 8 << 20
	imageField     = "image"
)

// Client talks to the restaurant backend API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	logger  *zap.Logger
}

// Config holds the backend client settings.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// New creates a backend client.
func New(cfg *Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse backend url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("backend url %q: scheme must be http or https", cfg.BaseURL)
	}

	hc := cfg.HTTPClient
	if hc == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{baseURL: base, http: hc, logger: logger}, nil
}

// ListRestaurants fetches one page of the unfiltered catalog.
func (c *Client) ListRestaurants(ctx context.Context, page int) (restaurant.Page, error) {
	var p restaurant.Page
	u := c.endpoint("/api/getAllRestaurants/"+strconv.Itoa(page), nil)
	if err := c.getJSON(ctx, EndpointListing, u, &p); err != nil {
		return restaurant.Page{}, err
	}
	return p, nil
}

// SearchRestaurants runs a filtered search.
func (c *Client) SearchRestaurants(ctx context.Context, q request.Filtered) (restaurant.Page, error) {
	values, err := query.Values(q)
	if err != nil {
		return restaurant.Page{}, fmt.Errorf("encode filter query: %w", err)
	}
	var p restaurant.Page
	if err := c.getJSON(ctx, EndpointFilter, c.endpoint("/api/getRestaurantsByFilter", values), &p); err != nil {
		return restaurant.Page{}, err
	}
	return p, nil
}

// SearchByImage uploads img and returns the restaurants serving the
// cuisine recognized in it. The response carries no page header.
func (c *Client) SearchByImage(ctx context.Context, img upload.Image) (restaurant.Page, error) {
	body, contentType, err := multipartBody(img)
	if err != nil {
		return restaurant.Page{}, err
	}
	u := c.endpoint("/api/getCuisinesByImage", url.Values{"page": {"1"}})

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, body)
	if err != nil {
		return restaurant.Page{}, fmt.Errorf("build image request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	var p restaurant.Page
	if err := c.do(req, EndpointImage, &p); err != nil {
		return restaurant.Page{}, err
	}
	return p, nil
}

// Restaurant fetches the full record of one restaurant.
func (c *Client) Restaurant(ctx context.Context, id int64) (restaurant.Detail, error) {
	var d restaurant.Detail
	u := c.endpoint("/api/getRestaurantByID/"+strconv.FormatInt(id, 10), nil)
	err := c.getJSON(ctx, EndpointDetail, u, &d)
	var se *domain.StatusError
	if errors.As(err, &se) && se.Code == http.StatusNotFound {
		return restaurant.Detail{}, fmt.Errorf("restaurant %d: %w", id, domain.ErrRestaurantNotFound)
	}
	if err != nil {
		return restaurant.Detail{}, err
	}
	return d, nil
}

// HealthCheck verifies the backend answers the first catalog page.
func (c *Client) HealthCheck(ctx context.Context) error {
	if _, err := c.ListRestaurants(ctx, 1); err != nil {
		return fmt.Errorf("list restaurants: %w", err)
	}
	return nil
}

func (c *Client) endpoint(path string, values url.Values) string {
	u := *c.baseURL
	u.Path = c.baseURL.Path + path
	if values != nil {
		u.RawQuery = values.Encode()
	}
	return u.String()
}

func (c *Client) getJSON(ctx context.Context, endpoint, u string, dst any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return fmt.Errorf("build %s request: %w", endpoint, err)
	}
	return c.do(req, endpoint, dst)
}

// do sends req and decodes a JSON body into dst. Every outcome is counted
// under endpoint: ok, error (transport), status, malformed.
func (c *Client) do(req *http.Request, endpoint string, dst any) error {
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	metrics.BackendRequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(endpoint, "error").Inc()
		c.logger.Warn("Backend request failed",
			zap.String("endpoint", endpoint),
			zap.Error(err),
		)
		return fmt.Errorf("%s request: %w: %w", endpoint, domain.ErrBackendUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		metrics.BackendRequestsTotal.WithLabelValues(endpoint, "status").Inc()
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		c.logger.Warn("Backend returned non-success status",
			zap.String("endpoint", endpoint),
			zap.Int("status", resp.StatusCode),
		)
		return domain.NewStatusError(endpoint, resp.StatusCode)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(dst); err != nil {
		metrics.BackendRequestsTotal.WithLabelValues(endpoint, "malformed").Inc()
		return fmt.Errorf("decode %s response: %w: %w", endpoint, domain.ErrMalformedResponse, err)
	}

	metrics.BackendRequestsTotal.WithLabelValues(endpoint, "ok").Inc()
	return nil
}

func multipartBody(img upload.Image) (io.Reader, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", fmt.Sprintf(`form-data; name=%q; filename=%q`, imageField, img.Filename()))
	h.Set("Content-Type", img.ContentType())
	part, err := w.CreatePart(h)
	if err != nil {
		return nil, "", fmt.Errorf("create image part: %w", err)
	}
	if _, err = part.Write(img.Data()); err != nil {
		return nil, "", fmt.Errorf("write image part: %w", err)
	}
	if err = w.Close(); err != nil {
		return nil, "", fmt.Errorf("close multipart body: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}
