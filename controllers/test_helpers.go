package controllers

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/GameNest/middlewares"
	"github.com/GameNest/models"
	"github.com/GameNest/services"
	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/gin-gonic/gin"
)

const (
	testSecret  = "test-secret-key"
	testTimeout = 5 * time.Second
)

// SetupTestDB creates a goqu database backed by sqlmock. The mock is closed
// when the test ends.
func SetupTestDB(t *testing.T) (*goqu.Database, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("Failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return goqu.New("postgres", db), mock
}

// SetupTestContext creates a test Gin context with a response recorder
func SetupTestContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	return c, w
}

// SetAuthenticatedUser attaches a principal the way CheckAuth does.
func SetAuthenticatedUser(c *gin.Context, user models.User) {
	c.Set(middlewares.PrincipalKey, models.Authenticated(user.ID, user.User_Email))
}

func NewTestTokens() *services.TokenService {
	return services.NewTokenService(testSecret, time.Hour, 15*time.Minute)
}

// BearerFor issues an access token for user and formats it as an
// Authorization header value.
func BearerFor(t *testing.T, tokens *services.TokenService, user models.User) string {
	t.Helper()
	token, err := tokens.Issue(user)
	if err != nil {
		t.Fatalf("Failed to issue token: %v", err)
	}
	return "Bearer " + token
}
