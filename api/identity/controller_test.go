package identity

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	dmn "github.com/beka-birhanu/vinom-nav/domain"
	"github.com/beka-birhanu/vinom-nav/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	registerErr error
	signInErr   error
}

func (a stubAuth) Register(username, _ string) (*dmn.Operator, error) {
	if a.registerErr != nil {
		return nil, a.registerErr
	}
	return &dmn.Operator{ID: uuid.New(), Username: username}, nil
}

func (a stubAuth) SignIn(username, _ string) (*dmn.Operator, string, error) {
	if a.signInErr != nil {
		return nil, "", a.signInErr
	}
	return &dmn.Operator{ID: uuid.New(), Username: username}, "signed", nil
}

type stubTokenizer struct {
	claims map[string]interface{}
}

func (s stubTokenizer) Generate(map[string]interface{}, time.Duration) (string, error) {
	return "signed", nil
}

func (s stubTokenizer) Decode(token string) (map[string]interface{}, error) {
	if token != "signed" {
		return nil, errors.New("bad token")
	}
	return s.claims, nil
}

func post(engine *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(body)
	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func newEngine(a stubAuth) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	NewIdentityServer(a).RegisterPublic(engine.Group("/v1"))
	return engine
}

func TestRegister(t *testing.T) {
	cases := []struct {
		name   string
		auth   stubAuth
		body   interface{}
		status int
	}{
		{"created", stubAuth{}, AuthRequest{Username: "ops", Password: "pw"}, http.StatusCreated},
		{"missing password", stubAuth{}, map[string]string{"username": "ops"}, http.StatusBadRequest},
		{"weak password", stubAuth{registerErr: dmn.ErrWeakPassword}, AuthRequest{Username: "ops", Password: "pw"}, http.StatusBadRequest},
		{"taken", stubAuth{registerErr: fmt.Errorf("register: %w", dmn.ErrUsernameConflict)}, AuthRequest{Username: "ops", Password: "pw"}, http.StatusConflict},
		{"storage", stubAuth{registerErr: errors.New("mongo down")}, AuthRequest{Username: "ops", Password: "pw"}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := post(newEngine(tc.auth), "/v1/auth/register", tc.body)
			assert.Equal(t, tc.status, w.Code, w.Body.String())
		})
	}

	w := post(newEngine(stubAuth{}), "/v1/auth/register", AuthRequest{Username: "ops", Password: "pw"})
	var response RegisterResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "ops", response.Username)
	assert.NotEmpty(t, response.ID)
}

func TestLogin(t *testing.T) {
	w := post(newEngine(stubAuth{}), "/v1/auth/login", AuthRequest{Username: "ops", Password: "pw"})
	require.Equal(t, http.StatusOK, w.Code)
	var response AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, "signed", response.Token)

	w = post(newEngine(stubAuth{signInErr: service.ErrInvalidCredentials}), "/v1/auth/login", AuthRequest{Username: "ops", Password: "pw"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = post(newEngine(stubAuth{signInErr: errors.New("mongo down")}), "/v1/auth/login", AuthRequest{Username: "ops", Password: "pw"})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestAuthoriz(t *testing.T) {
	gin.SetMode(gin.TestMode)
	operator := uuid.New()
	engine := gin.New()
	engine.GET("/me", Authoriz(stubTokenizer{claims: map[string]interface{}{"operatorID": operator.String()}}), func(c *gin.Context) {
		c.String(http.StatusOK, OperatorID(c).String())
	})

	cases := map[string]int{
		"":              http.StatusUnauthorized,
		"signed":        http.StatusUnauthorized,
		"Basic signed":  http.StatusUnauthorized,
		"Bearer forged": http.StatusUnauthorized,
		"Bearer signed": http.StatusOK,
	}
	for header, status := range cases {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		assert.Equal(t, status, w.Code, header)
		if status == http.StatusOK {
			assert.Equal(t, operator.String(), w.Body.String())
		}
	}
}

func TestOperatorIDWithoutClaims(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.Equal(t, uuid.Nil, OperatorID(c))

	c.Set(ContextOperatorClaims, map[string]interface{}{"operatorID": 42})
	assert.Equal(t, uuid.Nil, OperatorID(c))
}
