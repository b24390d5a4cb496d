// internal/services/licensing_gateway.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/javajoker/license-server/internal/config"
	"github.com/javajoker/license-server/internal/metrics"
)

// UnpackedToken is the decoded content of an activation token. User and
// Pass are only present in tokens meant for automatic activation.
type UnpackedToken struct {
	Swid string `json:"swid"`
	Hwid string `json:"hwid"`
	User string `json:"user,omitempty"`
	Pass string `json:"pass,omitempty"`
}

// TokenGateway is the external licensing service. Every failure it returns
// wraps ErrLicensingServiceUnavailable.
type TokenGateway interface {
	UnpackToken(ctx context.Context, token string) (*UnpackedToken, error)
	MintLicenseCode(ctx context.Context, token, expireDate string) (string, error)
}

type envelope[T any] struct {
	Success bool `json:"success"`
	Data    T    `json:"data"`
}

// HTTPTokenGateway talks to the licensing service over HTTP. Calls are
// bounded by the configured timeout and never retried.
type HTTPTokenGateway struct {
	baseURL string
	client  *http.Client
	metrics metrics.Recorder
}

var _ TokenGateway = (*HTTPTokenGateway)(nil)

func NewHTTPTokenGateway(cfg config.LicensingConfig, recorder metrics.Recorder) *HTTPTokenGateway {
	return &HTTPTokenGateway{
		baseURL: cfg.BaseURL,
		client:  &http.Client{Timeout: cfg.Timeout},
		metrics: recorder,
	}
}

func (g *HTTPTokenGateway) UnpackToken(ctx context.Context, token string) (*UnpackedToken, error) {
	var resp envelope[UnpackedToken]
	if err := g.get(ctx, "unpack", url.Values{"token": {token}}, &resp); err != nil {
		return nil, err
	}
	if !resp.Success || resp.Data.Swid == "" || resp.Data.Hwid == "" {
		return nil, fmt.Errorf("%w: token was not unpacked", ErrLicensingServiceUnavailable)
	}
	return &resp.Data, nil
}

func (g *HTTPTokenGateway) MintLicenseCode(ctx context.Context, token, expireDate string) (string, error) {
	var resp envelope[string]
	if err := g.get(ctx, "license", url.Values{"token": {token}, "expires": {expireDate}}, &resp); err != nil {
		return "", err
	}
	if !resp.Success || resp.Data == "" {
		return "", fmt.Errorf("%w: no license code issued", ErrLicensingServiceUnavailable)
	}
	return resp.Data, nil
}

func (g *HTTPTokenGateway) get(ctx context.Context, operation string, query url.Values, out interface{}) (err error) {
	start := time.Now()
	requestID := uuid.New().String()
	defer func() {
		g.metrics.RecordGatewayCall(operation, err == nil, time.Since(start))
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"operation":  operation,
				"request_id": requestID,
			}).WithError(err).Error("Licensing service call failed")
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL+"/"+operation+"?"+query.Encode(), nil)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLicensingServiceUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := g.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLicensingServiceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: unexpected status %d", ErrLicensingServiceUnavailable, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: %v", ErrLicensingServiceUnavailable, err)
	}
	return nil
}
