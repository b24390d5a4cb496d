package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"

	"github.com/javajoker/license-server/internal/config"
	"github.com/javajoker/license-server/internal/i18n"
	"github.com/javajoker/license-server/internal/models"
	"github.com/javajoker/license-server/internal/services"
	"github.com/javajoker/license-server/internal/testutil"
	"github.com/javajoker/license-server/internal/utils"
)

const storedHash = "$wp$2y$10$abcdefghijklmnopqrstuv"

type AuthHandlerTestSuite struct {
	suite.Suite
	router *gin.Engine
}

func (s *AuthHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	s.Require().NoError(i18n.Initialize("en"))
	utils.SetJWTSecret("test-secret")

	db := testutil.NewDirectoryDB(s.T(), "wp_")
	testutil.AddDirectoryUser(s.T(), db, "wp_", 12, "alice", storedHash, "shop_manager")

	cfg := &config.Config{JWT: config.JWTConfig{SecretKey: "test-secret", AccessTokenTTL: 2}}
	authService := services.NewAuthService(services.NewDirectoryService(db, "wp_"), cfg)
	h := NewAuthHandler(authService)

	s.router = gin.New()
	s.router.POST("/auth/login", h.Login)
	s.router.GET("/auth/me", func(c *gin.Context) {
		identity, err := authService.Resolve(c.Query("session"))
		if err == nil {
			asCaller(identity)(c)
			return
		}
		c.Next()
	}, h.GetProfile)
}

func (s *AuthHandlerTestSuite) login(body map[string]string) (*httptest.ResponseRecorder, apiResponse) {
	data, err := json.Marshal(body)
	s.Require().NoError(err)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)

	var resp apiResponse
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func (s *AuthHandlerTestSuite) TestLoginSuccess() {
	w, resp := s.login(map[string]string{"username": "alice", "passHash": storedHash})

	s.Equal(http.StatusOK, w.Code)
	s.True(resp.Success)

	var data struct {
		User        models.Identity `json:"user"`
		AccessToken string          `json:"access_token"`
		TokenType   string          `json:"token_type"`
		ExpiresIn   int             `json:"expires_in"`
	}
	s.Require().NoError(json.Unmarshal(resp.Data, &data))
	s.Equal(models.Identity{ID: 12, Username: "alice", Role: models.RoleManager}, data.User)
	s.Equal("Bearer", data.TokenType)
	s.Equal(7200, data.ExpiresIn)
	s.NotEmpty(data.AccessToken)

	req := httptest.NewRequest(http.MethodGet, "/auth/me?session="+data.AccessToken, nil)
	me := httptest.NewRecorder()
	s.router.ServeHTTP(me, req)
	s.Equal(http.StatusOK, me.Code)
	s.Contains(me.Body.String(), `"role":"manager"`)
}

func (s *AuthHandlerTestSuite) TestLoginWrongHash() {
	w, resp := s.login(map[string]string{"username": "alice", "passHash": "$wp$2y$10$other"})

	s.Equal(http.StatusUnauthorized, w.Code)
	s.Equal("Incorrect username or password", resp.Error.Message)
}

func (s *AuthHandlerTestSuite) TestLoginUnknownUser() {
	w, _ := s.login(map[string]string{"username": "mallory", "passHash": storedHash})
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *AuthHandlerTestSuite) TestLoginValidation() {
	w, resp := s.login(map[string]string{"username": "alice"})
	s.Equal(http.StatusBadRequest, w.Code)
	s.Equal("VALIDATION_ERROR", resp.Error.Code)
}

func (s *AuthHandlerTestSuite) TestProfileWithoutSession() {
	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	s.Equal(http.StatusUnauthorized, w.Code)
}

func TestAuthHandlerSuite(t *testing.T) {
	suite.Run(t, new(AuthHandlerTestSuite))
}
