package catalog

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/Sternrassler/kindle-shelf/pkg/logging"
	"github.com/go-resty/resty/v2"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for listing calls.
var (
	catalogRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kindle_catalog_requests_total",
		Help: "Total catalog listing requests by HTTP status",
	}, []string{"status"})

	catalogRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kindle_catalog_request_duration_seconds",
		Help:    "Catalog listing request duration in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	})
)

const (
	// DefaultBaseURL is the parent dashboard host serving the listing endpoint.
	DefaultBaseURL = "https://parents.amazon.co.uk"

	// ListPath is the listing endpoint path.
	ListPath = "/ajax/get-catalog-items"
)

// Config holds the listing client configuration.
type Config struct {
	// BaseURL of the listing service.
	BaseURL string

	// Cookies is the browser session cookie header ("name=value; name2=value2")
	// of a logged-in parent dashboard session. REQUIRED.
	Cookies string

	// ContentTypes filters the listing by content type (e.g. "EBOOK").
	ContentTypes []string

	// DeviceFamilies filters the listing by device family (e.g. "E_READER").
	DeviceFamilies []string

	// SubscriptionPresent restricts the listing to subscription titles.
	SubscriptionPresent bool

	// Timeout per listing call. Zero means no timeout.
	Timeout time.Duration
}

// DefaultConfig returns the configuration that lists subscription e-reader books.
func DefaultConfig(cookies string) Config {
	return Config{
		BaseURL:             DefaultBaseURL,
		Cookies:             cookies,
		ContentTypes:        []string{"EBOOK"},
		DeviceFamilies:      []string{"E_READER"},
		SubscriptionPresent: true,
	}
}

// listRequest is the JSON body of a listing call. Null fields are sent
// explicitly, as the dashboard does.
type listRequest struct {
	ContentTypeFilterList  []string `json:"contentTypeFilterList"`
	DeviceFamilyFilterList []string `json:"deviceFamilyFilterList"`
	ChildDirectedIDFilter  *string  `json:"childDirectedIdFilter"`
	SubscriptionPresent    bool     `json:"subscriptionPresent"`
	SearchQuery            *string  `json:"searchQuery"`
	NextPageToken          *string  `json:"nextPageToken"`
}

// Client issues listing calls against the catalog service.
type Client struct {
	http   *resty.Client
	config Config
	logger zerolog.Logger
}

// New creates a listing client. Cookies are parsed once here so that a bad
// configuration is reported before any network activity.
func New(cfg Config) (*Client, error) {
	if cfg.Cookies == "" {
		return nil, ErrMissingCookies
	}
	cookies, err := http.ParseCookie(cfg.Cookies)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCookies, err)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}

	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetCookies(cookies).
		SetHeader("Accept", "application/json, text/plain, */*").
		SetHeader("Content-Type", "application/json;charset=UTF-8").
		SetJSONMarshaler(json.Marshal).
		SetJSONUnmarshaler(json.Unmarshal)
	if cfg.Timeout > 0 {
		httpClient.SetTimeout(cfg.Timeout)
	}

	return &Client{
		http:   httpClient,
		config: cfg,
		logger: logging.NewLogger(logging.ComponentCatalog),
	}, nil
}

// FetchPage requests one listing page. A nil token requests the first page.
func (c *Client) FetchPage(ctx context.Context, token *string) (*Page, error) {
	start := time.Now()
	defer func() {
		catalogRequestDuration.Observe(time.Since(start).Seconds())
	}()

	body := listRequest{
		ContentTypeFilterList:  c.config.ContentTypes,
		DeviceFamilyFilterList: c.config.DeviceFamilies,
		SubscriptionPresent:    c.config.SubscriptionPresent,
		NextPageToken:          token,
	}

	c.logger.Debug().
		Bool("has_token", token != nil).
		Msg("Requesting catalog page")

	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(body).
		Post(ListPath)
	if err != nil {
		catalogRequestsTotal.WithLabelValues("network_error").Inc()
		return nil, &Error{Message: "request failed", Err: err}
	}

	status := resp.StatusCode()
	catalogRequestsTotal.WithLabelValues(strconv.Itoa(status)).Inc()

	if status < 200 || status > 299 {
		c.logger.Warn().Int("status_code", status).Msg("Catalog listing rejected")
		return nil, &Error{StatusCode: status, Message: resp.Status()}
	}

	var page Page
	if err := json.Unmarshal(resp.Body(), &page); err != nil {
		return nil, &Error{StatusCode: status, Message: "decode listing response", Err: err}
	}

	return &page, nil
}
