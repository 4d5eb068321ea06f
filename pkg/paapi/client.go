// Package paapi provides the signed product-metadata lookup client.
//
// Every lookup is a single POST signed with AWS4-HMAC-SHA256. Signatures are
// time-bound, so each call signs afresh. The client never retries; callers
// decide how to treat a failed lookup.
package paapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Sternrassler/kindle-shelf/pkg/logging"
	"github.com/Sternrassler/kindle-shelf/pkg/signer"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

// Prometheus metrics for lookup operations.
var (
	paapiRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kindle_paapi_requests_total",
		Help: "Total product-metadata lookups by HTTP status",
	}, []string{"status"})

	paapiRequestDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "kindle_paapi_request_duration_seconds",
		Help:    "Product-metadata lookup duration in seconds",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10},
	})

	paapiErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "kindle_paapi_errors_total",
		Help: "Total product-metadata lookup errors by class",
	}, []string{"class"})
)

const (
	// Service is the signing service name.
	Service = "ProductAdvertisingAPI"

	// GetItemsPath is the item-lookup endpoint path.
	GetItemsPath = "/paapi5/getitems"

	// GetItemsTarget is the X-Amz-Target of the item-lookup operation.
	GetItemsTarget = "com.amazon.paapi5.v1.ProductAdvertisingAPIv1.GetItems"

	contentEncoding = "amz-1.0"
	contentType     = "application/json; charset=utf-8"
)

// DefaultResources are the informational resources requested per item.
var DefaultResources = []string{
	"ItemInfo.ContentInfo",
	"ItemInfo.Classifications",
	"ItemInfo.ContentRating",
}

// Config holds the lookup client configuration.
type Config struct {
	// Credentials (REQUIRED)
	AccessKey  string
	SecretKey  string
	PartnerTag string

	// Marketplace routing
	Host        string // e.g. "webservices.amazon.co.uk"
	Region      string // e.g. "eu-west-1"
	Marketplace string // e.g. "www.amazon.co.uk"

	// BaseURL overrides "https://" + Host as the request target. The signed
	// Host header is always Host.
	BaseURL string

	// Resources requested per lookup.
	Resources []string

	// Timeout bounds each lookup.
	Timeout time.Duration
}

// DefaultConfig returns the configuration for the UK marketplace.
func DefaultConfig(accessKey, secretKey, partnerTag string) Config {
	return Config{
		AccessKey:   accessKey,
		SecretKey:   secretKey,
		PartnerTag:  partnerTag,
		Host:        "webservices.amazon.co.uk",
		Region:      "eu-west-1",
		Marketplace: "www.amazon.co.uk",
		Resources:   DefaultResources,
		Timeout:     10 * time.Second,
	}
}

// Client performs signed item lookups.
type Client struct {
	httpClient *http.Client
	signer     *signer.Signer
	config     Config
	logger     zerolog.Logger
	now        func() time.Time
}

// New creates a lookup client. Missing credentials are rejected here, before
// any request is signed or sent.
func New(cfg Config) (*Client, error) {
	s, err := signer.New(
		signer.Credentials{AccessKey: cfg.AccessKey, SecretKey: cfg.SecretKey},
		signer.Scope{Region: cfg.Region, Service: Service},
	)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}

	if cfg.PartnerTag == "" {
		return nil, ErrMissingPartnerTag
	}

	if cfg.Host == "" {
		return nil, fmt.Errorf("host is required")
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://" + cfg.Host
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")

	if len(cfg.Resources) == 0 {
		cfg.Resources = DefaultResources
	}

	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		signer: s,
		config: cfg,
		logger: logging.NewLogger(logging.ComponentPAAPI),
		now:    time.Now,
	}, nil
}

// GetItem looks up one product code and returns its informational fields.
func (c *Client) GetItem(ctx context.Context, productCode string) (*Item, error) {
	if productCode == "" {
		return nil, ErrEmptyProductCode
	}

	payload, err := json.Marshal(getItemsRequest{
		ItemIDs:     []string{productCode},
		ItemIDType:  "ASIN",
		Resources:   c.config.Resources,
		PartnerTag:  c.config.PartnerTag,
		PartnerType: "Associates",
		Marketplace: c.config.Marketplace,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := c.newSignedRequest(ctx, payload)
	if err != nil {
		return nil, err
	}

	resp, err := c.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.fail(&APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassNetwork,
			Message:    "read response body",
			Err:        err,
		})
	}

	var decoded getItemsResponse
	decodeErr := json.Unmarshal(body, &decoded)

	if errClass := classifyStatus(resp.StatusCode); errClass != "" {
		msg := resp.Status
		if decodeErr == nil && len(decoded.Errors) > 0 {
			msg = decoded.Errors[0].String()
		}
		return nil, c.fail(&APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: errClass,
			Message:    msg,
		})
	}

	if decodeErr != nil {
		return nil, c.fail(&APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassDecode,
			Message:    "decode response",
			Err:        decodeErr,
		})
	}

	if decoded.ItemsResult == nil || len(decoded.ItemsResult.Items) == 0 {
		if len(decoded.Errors) > 0 {
			return nil, c.fail(&APIError{
				StatusCode: resp.StatusCode,
				ErrorClass: ErrorClassClient,
				Message:    decoded.Errors[0].String(),
			})
		}
		return nil, c.fail(&APIError{
			StatusCode: resp.StatusCode,
			ErrorClass: ErrorClassDecode,
			Message:    productCode,
			Err:        ErrItemNotFound,
		})
	}

	item := decoded.ItemsResult.Items[0]
	c.logger.Debug().
		Str("product_code", productCode).
		Str("pages", item.PageCount()).
		Str("language", item.Language()).
		Msg("Lookup succeeded")

	return &item, nil
}

// newSignedRequest builds the POST request and signs it at the current time.
func (c *Client) newSignedRequest(ctx context.Context, payload []byte) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+GetItemsPath, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	now := c.now()
	amzDate := now.UTC().Format(signer.AmzDateFormat)
	headers := map[string]string{
		"Content-Encoding": contentEncoding,
		"Content-Type":     contentType,
		"Host":             c.config.Host,
		"X-Amz-Date":       amzDate,
		"X-Amz-Target":     GetItemsTarget,
	}

	sig := c.signer.Sign(signer.Input{
		Method:  http.MethodPost,
		URI:     GetItemsPath,
		Headers: headers,
		Payload: payload,
	}, now)

	for name, value := range headers {
		if name == "Host" {
			req.Host = value
			continue
		}
		req.Header.Set(name, value)
	}
	req.Header.Set("Authorization", sig.Authorization)

	return req, nil
}

// Do executes a prepared request, recording duration and status metrics.
// Transport failures are returned as network-class APIErrors; HTTP error
// statuses are returned to the caller with the response.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	defer func() {
		paapiRequestDuration.Observe(time.Since(start).Seconds())
	}()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		paapiRequestsTotal.WithLabelValues("network_error").Inc()
		return nil, c.fail(&APIError{
			ErrorClass: c.classifyError(nil, err),
			Message:    "request failed",
			Err:        err,
		})
	}

	paapiRequestsTotal.WithLabelValues(strconv.Itoa(resp.StatusCode)).Inc()
	return resp, nil
}

// fail records and logs a classified error.
func (c *Client) fail(err *APIError) error {
	paapiErrorsTotal.WithLabelValues(string(err.ErrorClass)).Inc()
	c.logger.Debug().
		Int("status_code", err.StatusCode).
		Str("error_class", string(err.ErrorClass)).
		Msg(err.Message)
	return err
}

// classifyError categorizes a response or transport error.
func (c *Client) classifyError(resp *http.Response, err error) ErrorClass {
	if err != nil {
		return ErrorClassNetwork
	}
	return classifyStatus(resp.StatusCode)
}

func classifyStatus(status int) ErrorClass {
	switch {
	case status >= 400 && status < 500:
		return ErrorClassClient
	case status >= 500:
		return ErrorClassServer
	case status < 200 || status > 299:
		return ErrorClassDecode
	default:
		return ""
	}
}

// SetHTTPClient sets a custom HTTP client (for testing).
func (c *Client) SetHTTPClient(client *http.Client) {
	c.httpClient = client
}

// SetClock sets the time source used for signing (for testing).
func (c *Client) SetClock(now func() time.Time) {
	c.now = now
}
