package router

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/javajoker/license-server/internal/config"
	"github.com/javajoker/license-server/internal/i18n"
	"github.com/javajoker/license-server/internal/metrics"
	"github.com/javajoker/license-server/internal/services"
	"github.com/javajoker/license-server/internal/testutil"
)

const (
	adminHash   = "$wp$2y$10$adminadminadminadmin"
	managerHash = "$wp$2y$10$managermanagermanage"
	// phpass hash of "hashcat"
	customerHash = "$P$984478476IagS59wHZvyQMArzfx58u."
)

type stubGateway struct {
	tokens map[string]services.UnpackedToken
}

func (g *stubGateway) UnpackToken(_ context.Context, token string) (*services.UnpackedToken, error) {
	unpacked, ok := g.tokens[token]
	if !ok {
		return nil, fmt.Errorf("%w: unknown token", services.ErrLicensingServiceUnavailable)
	}
	return &unpacked, nil
}

func (g *stubGateway) MintLicenseCode(_ context.Context, token, expireDate string) (string, error) {
	return token + "|" + expireDate, nil
}

type stubCatalog []services.Product

func (c stubCatalog) ListProducts(context.Context) ([]services.Product, error) {
	return c, nil
}

type RouterTestSuite struct {
	suite.Suite
	router *gin.Engine
	cancel context.CancelFunc
}

func (s *RouterTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.Require().NoError(i18n.Initialize("en"))

	directory := testutil.NewDirectoryDB(s.T(), "wp_")
	testutil.AddDirectoryUser(s.T(), directory, "wp_", 1, "root", adminHash, "administrator")
	testutil.AddDirectoryUser(s.T(), directory, "wp_", 2, "shop", managerHash, "shop_manager")
	testutil.AddDirectoryUser(s.T(), directory, "wp_", 12, "alice", customerHash, "customer")

	cfg := &config.Config{
		Server:    config.ServerConfig{AllowedOrigins: []string{"*"}},
		Directory: config.DirectoryConfig{TablePrefix: "wp_"},
		JWT:       config.JWTConfig{SecretKey: "router-secret", AccessTokenTTL: 1},
		Licensing: config.LicensingConfig{PrivilegedBypass: true, BindAttempts: 3},
		RateLimit: config.RateLimitConfig{ActivationsPerMinute: 0},
		I18n:      config.I18nConfig{DefaultLocale: "en"},
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.router = Initialize(ctx, testutil.NewDB(s.T()), directory, cfg, Options{
		Gateway: &stubGateway{tokens: map[string]services.UnpackedToken{
			"manual": {Swid: "SW-A", Hwid: "HW-1"},
			"auto":   {Swid: "SW-A", Hwid: "HW-2", User: "alice", Pass: "hashcat"},
			"nope":   {Swid: "SW-B", Hwid: "HW-1"},
		}},
		Catalog: stubCatalog{{SWID: "SW-A", Name: "Plugin A"}, {SWID: "SW-B", Name: "Plugin B"}},
		Metrics: metrics.NewNoopMetrics(),
		Clock:   services.FixedClock(time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC)),
	})
}

func (s *RouterTestSuite) TearDownTest() {
	s.cancel()
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code string `json:"code"`
	} `json:"error"`
}

func (s *RouterTestSuite) call(method, target, session string, body interface{}) (int, envelope) {
	var buf bytes.Buffer
	if body != nil {
		s.Require().NoError(json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	if session != "" {
		req.Header.Set("Authorization", "Bearer "+session)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp envelope
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w.Code, resp
}

func (s *RouterTestSuite) login(username, passHash string) string {
	status, resp := s.call(http.MethodPost, "/v1/auth/login", "", map[string]string{
		"username": username,
		"passHash": passHash,
	})
	s.Require().Equal(http.StatusOK, status)

	var data struct {
		AccessToken string `json:"access_token"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &data))
	return data.AccessToken
}

func (s *RouterTestSuite) TestHealth() {
	status, _ := s.call(http.MethodGet, "/health", "", nil)
	s.Equal(http.StatusOK, status)
}

func (s *RouterTestSuite) TestLicenseLifecycle() {
	manager := s.login("shop", managerHash)

	status, _ := s.call(http.MethodPost, "/v1/licenses", manager, map[string]interface{}{"userId": 12, "swid": "SW-A", "amount": 2})
	s.Require().Equal(http.StatusCreated, status)

	// alice logs in with her stored hash for manual activation
	alice := s.login("alice", customerHash)

	status, resp := s.call(http.MethodGet, "/v1/licenses/manual-activation?token=manual", alice, nil)
	s.Require().Equal(http.StatusOK, status)
	s.JSONEq(`"manual|2027-05-10"`, string(resp.Data))

	status, resp = s.call(http.MethodGet, "/v1/licenses/automatic-activation?token=auto", "", nil)
	s.Require().Equal(http.StatusOK, status)
	s.JSONEq(`"auto|2027-05-10"`, string(resp.Data))

	status, resp = s.call(http.MethodGet, "/v1/licenses/12", alice, nil)
	s.Require().Equal(http.StatusOK, status)
	s.JSONEq(`[{"productKey":"SW-A","name":"Plugin A","total":2,"unused":0}]`, string(resp.Data))

	status, resp = s.call(http.MethodGet, "/v1/licenses/manual-activation?token=nope", alice, nil)
	s.Equal(http.StatusNotFound, status)

	status, resp = s.call(http.MethodDelete, "/v1/licenses", manager, map[string]interface{}{"userId": 12, "swid": "SW-A", "amount": 1})
	s.Equal(http.StatusBadRequest, status)
	s.Equal("INSUFFICIENT_LICENSES", resp.Error.Code)
}

func (s *RouterTestSuite) TestIssuanceRequiresManagerRole() {
	alice := s.login("alice", customerHash)

	status, _ := s.call(http.MethodPost, "/v1/licenses", alice, map[string]interface{}{"userId": 12, "swid": "SW-A", "amount": 1})
	s.Equal(http.StatusForbidden, status)

	status, _ = s.call(http.MethodPost, "/v1/licenses", "", map[string]interface{}{"userId": 12, "swid": "SW-A", "amount": 1})
	s.Equal(http.StatusUnauthorized, status)
}

func (s *RouterTestSuite) TestAdministratorBypassesPool() {
	admin := s.login("root", adminHash)

	status, resp := s.call(http.MethodGet, "/v1/licenses/manual-activation?token=nope", admin, nil)
	s.Require().Equal(http.StatusOK, status)
	s.JSONEq(`"nope|2027-05-10"`, string(resp.Data))

	status, resp = s.call(http.MethodGet, "/v1/licenses/1", admin, nil)
	s.Require().Equal(http.StatusOK, status)
	s.JSONEq(`[]`, string(resp.Data))
}

func (s *RouterTestSuite) TestAutomaticActivationWrongPassword() {
	status, resp := s.call(http.MethodGet, "/v1/licenses/automatic-activation?token=manual", "", nil)
	s.Equal(http.StatusBadRequest, status)
	s.Equal("INVALID_CREDENTIALS", resp.Error.Code)
}

func TestRouterSuite(t *testing.T) {
	suite.Run(t, new(RouterTestSuite))
}
