// Package mercadopago is a thin HTTP client for the Mercado Pago payments
// API: preference creation, payment lookup and payment search.
package mercadopago

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/innovatex/planpay/internal/config"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Client is the gateway surface consumed by checkout and reconciliation.
type Client interface {
	CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error)
	GetPayment(ctx context.Context, id string) (*Payment, error)
	SearchPayments(ctx context.Context, opts SearchOptions) ([]Payment, error)
}

var Module = fx.Module("mercadopago.client",
	fx.Provide(NewClient),
)

type httpClient struct {
	baseURL     string
	accessToken string
	http        *http.Client
	log         *zap.Logger
}

type Params struct {
	fx.In

	Cfg config.Config
	Log *zap.Logger
}

func NewClient(p Params) Client {
	return &httpClient{
		baseURL:     p.Cfg.MPBaseURL,
		accessToken: p.Cfg.MPAccessToken,
		http:        &http.Client{Timeout: 10 * time.Second},
		log:         p.Log.Named("mercadopago"),
	}
}

func (c *httpClient) CreatePreference(ctx context.Context, req PreferenceRequest) (*Preference, error) {
	body, err := c.do(ctx, http.MethodPost, "/checkout/preferences", req)
	if err != nil {
		return nil, err
	}
	var pref Preference
	if err := json.Unmarshal(body, &pref); err != nil {
		return nil, fmt.Errorf("decode preference: %w", err)
	}
	return &pref, nil
}

// GetPayment returns the payment record for id, or (nil, nil) when the
// gateway has no usable record yet. Callers decide the retry policy.
func (c *httpClient) GetPayment(ctx context.Context, id string) (*Payment, error) {
	body, err := c.do(ctx, http.MethodGet, "/v1/payments/"+url.PathEscape(id), nil)
	if err != nil {
		return nil, err
	}
	payment, err := decodePayment(body)
	if err != nil {
		c.log.Warn("malformed payment response", zap.String("payment_id", id), zap.Error(err))
		return nil, nil
	}
	if payment.Empty() {
		return nil, nil
	}
	return payment, nil
}

func (c *httpClient) SearchPayments(ctx context.Context, opts SearchOptions) ([]Payment, error) {
	query := url.Values{}
	query.Set("sort", "date_created")
	query.Set("criteria", "desc")
	if opts.Status != "" {
		query.Set("status", opts.Status)
	}
	if opts.Limit > 0 {
		query.Set("limit", strconv.Itoa(opts.Limit))
	}

	body, err := c.do(ctx, http.MethodGet, "/v1/payments/search?"+query.Encode(), nil)
	if err != nil {
		return nil, err
	}

	var page struct {
		Results []Payment `json:"results"`
	}
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, fmt.Errorf("decode search results: %w", err)
	}
	return page.Results, nil
}

func (c *httpClient) do(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrRequestFailed, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode == http.StatusNotFound:
		return []byte("{}"), nil
	case resp.StatusCode >= 400:
		c.log.Warn("gateway error response",
			zap.Int("status", resp.StatusCode),
			zap.String("path", path),
		)
		return nil, fmt.Errorf("%w: status %d", ErrRequestFailed, resp.StatusCode)
	}

	return body, nil
}
