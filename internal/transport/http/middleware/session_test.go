package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docuchat/internal/model"
)

type fakeValidator struct {
	session   *model.Session
	err       error
	gotTokens []string
}

func (f *fakeValidator) ValidateOrCreate(token string) (*model.Session, error) {
	f.gotTokens = append(f.gotTokens, token)
	return f.session, f.err
}

func newSessionRouter(validator *fakeValidator) (*gin.Engine, *uint) {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	var seenID uint
	router.Use(Session(validator, "rag_session_id", 3600))
	router.GET("/ping", func(c *gin.Context) {
		if id, ok := GetSessionID(c); ok {
			seenID = id
		}
		c.Status(http.StatusOK)
	})
	return router, &seenID
}

func TestSessionMintsCookieForNewVisitor(t *testing.T) {
	validator := &fakeValidator{session: &model.Session{ID: 5, Token: "fresh-token"}}
	router, seenID := newSessionRouter(validator)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{""}, validator.gotTokens)
	assert.Equal(t, uint(5), *seenID)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "rag_session_id", cookies[0].Name)
	assert.Equal(t, "fresh-token", cookies[0].Value)
	assert.True(t, cookies[0].HttpOnly)
	assert.Equal(t, http.SameSiteLaxMode, cookies[0].SameSite)
}

func TestSessionForwardsExistingToken(t *testing.T) {
	validator := &fakeValidator{session: &model.Session{ID: 9, Token: "existing"}}
	router, seenID := newSessionRouter(validator)

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.AddCookie(&http.Cookie{Name: "rag_session_id", Value: "existing"})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"existing"}, validator.gotTokens)
	assert.Equal(t, uint(9), *seenID)
}

func TestSessionStoreFailure(t *testing.T) {
	validator := &fakeValidator{err: errors.New("db down")}
	router, _ := newSessionRouter(validator)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "session validation failed")
}
