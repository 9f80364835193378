package controller

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lexcase/lexcase-backend/internal/app/repository"
	"github.com/lexcase/lexcase-backend/internal/app/service"
	"github.com/lexcase/lexcase-backend/internal/db"
	"github.com/lexcase/lexcase-backend/internal/middleware"
	"github.com/lexcase/lexcase-backend/pkg/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupAuthControllerTest(t *testing.T) *gin.Engine {
	gin.SetMode(gin.TestMode)

	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	userRepo := repository.NewUserRepository(testDB)
	authService := service.NewAuthService(
		userRepo,
		"test-secret",
		15*time.Minute,
		7*24*time.Hour,
	)

	ctrl := NewAuthController(authService)
	authMiddleware := middleware.NewAuthMiddleware("test-secret")

	router := gin.New()
	router.POST("/logout", authMiddleware.Authenticate(), ctrl.Logout)

	return router
}

// Logout must succeed even when no Redis is configured; the server keeps
// running without it and the token simply expires naturally.
func TestAuthController_Logout_WithoutRedis(t *testing.T) {
	router := setupAuthControllerTest(t)

	tokens, err := util.GenerateTokenPair(
		1,
		"test@example.com",
		"user",
		"test-secret",
		15*time.Minute,
		7*24*time.Hour,
	)
	require.NoError(t, err)

	req := httptest.NewRequest("POST", "/logout", nil)
	req.Header.Set("Authorization", "Bearer "+tokens.AccessToken)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Logged out successfully")
}

func TestAuthController_Logout_NoToken(t *testing.T) {
	router := setupAuthControllerTest(t)

	req := httptest.NewRequest("POST", "/logout", nil)
	w := httptest.NewRecorder()

	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
