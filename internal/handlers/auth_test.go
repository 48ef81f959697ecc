package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/project-management-api/internal/auth"
	"github.com/yukikurage/project-management-api/internal/database"
	"github.com/yukikurage/project-management-api/internal/dto"
	"github.com/yukikurage/project-management-api/internal/middleware"
	"github.com/yukikurage/project-management-api/internal/models"
	"github.com/yukikurage/project-management-api/internal/repository"
	"github.com/yukikurage/project-management-api/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type authTestEnv struct {
	db          *gorm.DB
	router      *gin.Engine
	authService *services.AuthService
	tokens      *auth.TokenService
}

func setupAuthTestEnv(t *testing.T) authTestEnv {
	t.Helper()

	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{})
	require.NoError(t, err)

	database.SetDB(db)

	userRepo := repository.NewUserRepository(db)
	authService := services.NewAuthService(userRepo, 8)
	tokens := auth.NewTokenService("test-secret", 15*time.Minute, 7*24*time.Hour)
	handler := NewAuthHandler(authService, tokens)

	r := gin.New()
	r.POST("/api/users/register/", handler.Register)
	r.POST("/api/users/login/", handler.Login)
	r.POST("/api/token/refresh/", handler.RefreshToken)
	r.POST("/api/users/logout/", handler.Logout)
	r.GET("/api/users/me/", middleware.RequireAuth(tokens, authService), handler.Me)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		sqlDB.Close()
	})

	return authTestEnv{
		db:          db,
		router:      r,
		authService: authService,
		tokens:      tokens,
	}
}

func (env authTestEnv) do(t *testing.T, method, url string, payload interface{}, headers ...string) *httptest.ResponseRecorder {
	t.Helper()

	var req *http.Request
	if payload != nil {
		body, err := json.Marshal(payload)
		require.NoError(t, err)
		req = httptest.NewRequest(method, url, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, url, nil)
	}

	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func registerPayload() map[string]string {
	return map[string]string{
		"username":   "alice",
		"email":      "alice@x.com",
		"password":   "supersecret",
		"first_name": "Alice",
		"last_name":  "Doe",
	}
}

func TestAuthHandler_Register(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/users/register/", registerPayload())
	require.Equal(t, http.StatusCreated, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "alice", response.Username)
	require.Equal(t, "alice@x.com", response.Email)
	require.NotContains(t, w.Body.String(), "supersecret")

	// The stored credential is a hash, never the plaintext
	var stored models.User
	require.NoError(t, env.db.Where("email = ?", "alice@x.com").First(&stored).Error)
	require.NotEqual(t, "supersecret", stored.PasswordHash)
	require.True(t, auth.CheckPassword("supersecret", stored.PasswordHash))
}

func TestAuthHandler_Register_DuplicateEmail(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/users/register/", registerPayload())
	require.Equal(t, http.StatusCreated, w.Code)

	payload := registerPayload()
	payload["username"] = "alice2"
	w = env.do(t, http.MethodPost, "/api/users/register/", payload)
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestAuthHandler_Register_ShortPassword(t *testing.T) {
	env := setupAuthTestEnv(t)

	payload := registerPayload()
	payload["password"] = "short"
	w := env.do(t, http.MethodPost, "/api/users/register/", payload)
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/users/register/", registerPayload())
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.do(t, http.MethodPost, "/api/users/login/", map[string]string{
		"email":    "alice@x.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var pair auth.TokenPair
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &pair))
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)

	userID, err := env.tokens.ValidateAccess(pair.Access)
	require.NoError(t, err)

	user, err := env.authService.GetUser(userID)
	require.NoError(t, err)
	require.Equal(t, "alice@x.com", user.Email)
}

func TestAuthHandler_Login_NoUserEnumeration(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/users/register/", registerPayload())
	require.Equal(t, http.StatusCreated, w.Code)

	wrongPassword := env.do(t, http.MethodPost, "/api/users/login/", map[string]string{
		"email":    "alice@x.com",
		"password": "wrongpassword",
	})
	unknownEmail := env.do(t, http.MethodPost, "/api/users/login/", map[string]string{
		"email":    "nobody@x.com",
		"password": "wrongpassword",
	})

	// Identical status and body shape so responses do not reveal which
	// accounts exist
	require.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	require.Equal(t, http.StatusUnauthorized, unknownEmail.Code)
	require.JSONEq(t, wrongPassword.Body.String(), unknownEmail.Body.String())
}

func TestAuthHandler_Login_InactiveUser(t *testing.T) {
	env := setupAuthTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/users/register/", registerPayload())
	require.Equal(t, http.StatusCreated, w.Code)

	require.NoError(t, env.db.Model(&models.User{}).
		Where("email = ?", "alice@x.com").
		Update("is_active", false).Error)

	w = env.do(t, http.MethodPost, "/api/users/login/", map[string]string{
		"email":    "alice@x.com",
		"password": "supersecret",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_RefreshToken(t *testing.T) {
	env := setupAuthTestEnv(t)

	user, err := env.authService.Register(services.RegisterInput{
		Username: "alice", Email: "alice@x.com", Password: "supersecret",
	})
	require.NoError(t, err)

	pair, err := env.tokens.IssueTokenPair(user.ID)
	require.NoError(t, err)

	w := env.do(t, http.MethodPost, "/api/token/refresh/", map[string]string{"refresh": pair.Refresh})
	require.Equal(t, http.StatusOK, w.Code)

	var response struct {
		Access string `json:"access"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))

	userID, err := env.tokens.ValidateAccess(response.Access)
	require.NoError(t, err)
	require.Equal(t, user.ID, userID)

	// An access token is rejected on the refresh path
	w = env.do(t, http.MethodPost, "/api/token/refresh/", map[string]string{"refresh": pair.Access})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Logout_RevokesRefreshToken(t *testing.T) {
	env := setupAuthTestEnv(t)

	user, err := env.authService.Register(services.RegisterInput{
		Username: "alice", Email: "alice@x.com", Password: "supersecret",
	})
	require.NoError(t, err)

	pair, err := env.tokens.IssueTokenPair(user.ID)
	require.NoError(t, err)

	w := env.do(t, http.MethodPost, "/api/users/logout/", map[string]string{"refresh": pair.Refresh})
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, "/api/token/refresh/", map[string]string{"refresh": pair.Refresh})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuthHandler_Me(t *testing.T) {
	env := setupAuthTestEnv(t)

	user, err := env.authService.Register(services.RegisterInput{
		Username: "alice", Email: "alice@x.com", Password: "supersecret",
	})
	require.NoError(t, err)

	pair, err := env.tokens.IssueTokenPair(user.ID)
	require.NoError(t, err)

	w := env.do(t, http.MethodGet, "/api/users/me/", nil, "Authorization", "Bearer "+pair.Access)
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.Equal(t, "alice", response.Username)

	// No token, bad scheme, refresh token in place of access
	w = env.do(t, http.MethodGet, "/api/users/me/", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/users/me/", nil, "Authorization", "Token "+pair.Access)
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = env.do(t, http.MethodGet, "/api/users/me/", nil, "Authorization", "Bearer "+pair.Refresh)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}
