package registrations

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gatsby-party/backend/config"
	"github.com/gatsby-party/backend/internal/identity"
	"github.com/gatsby-party/backend/internal/models"
)

const testCookieName = "gatsby-user-id"

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	idm := identity.NewManager(config.IdentityConfig{
		CookieName:   testCookieName,
		CookieMaxAge: 60 * 60 * 24 * 365,
	})
	handler := NewHandler(NewService(NewInMemory(), nil, nil), idm, nil)
	router := gin.New()
	handler.Routes(router)
	return router
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, cookie string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if cookie != "" {
		req.AddCookie(&http.Cookie{Name: testCookieName, Value: cookie})
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	}
	return w, env
}

func decodeRegistration(t *testing.T, data json.RawMessage) models.Registration {
	t.Helper()
	var reg models.Registration
	require.NoError(t, json.Unmarshal(data, &reg))
	return reg
}

func TestRegisterIssuesCookieWhenAbsent(t *testing.T) {
	router := newTestRouter(t)

	w, env := doJSON(t, router, http.MethodPost, "/api/registrations", gin.H{
		"name":   "Дмитрий",
		"drinks": []string{"Виски"},
	}, "")

	require.Equal(t, http.StatusCreated, w.Code)
	require.True(t, env.Success)
	reg := decodeRegistration(t, env.Data)
	assert.Equal(t, "Дмитрий", reg.Name)
	assert.NotEmpty(t, reg.CookieID)

	setCookie := w.Header().Get("Set-Cookie")
	assert.Contains(t, setCookie, testCookieName+"=")
	assert.Contains(t, setCookie, reg.CookieID)
}

func TestRegisterUsesBodyToken(t *testing.T) {
	router := newTestRouter(t)
	token := identity.Mint()

	w, env := doJSON(t, router, http.MethodPost, "/api/registrations", gin.H{
		"name":      "Maria",
		"cookie_id": token,
	}, "")

	require.Equal(t, http.StatusCreated, w.Code)
	reg := decodeRegistration(t, env.Data)
	assert.Equal(t, token, reg.CookieID)
}

func TestRegisterValidation(t *testing.T) {
	router := newTestRouter(t)

	w, env := doJSON(t, router, http.MethodPost, "/api/registrations", gin.H{
		"drinks": []string{"Вино"},
	}, "")

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Error)
}

func TestRegisterConflictOnSecondPost(t *testing.T) {
	router := newTestRouter(t)
	token := identity.Mint()

	w, _ := doJSON(t, router, http.MethodPost, "/api/registrations", gin.H{
		"name": "First", "cookie_id": token,
	}, "")
	require.Equal(t, http.StatusCreated, w.Code)

	w, env := doJSON(t, router, http.MethodPost, "/api/registrations", gin.H{
		"name": "Second", "cookie_id": token,
	}, "")
	require.Equal(t, http.StatusConflict, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "already registered", env.Error)
}

func TestLookup(t *testing.T) {
	router := newTestRouter(t)
	token := identity.Mint()

	w, _ := doJSON(t, router, http.MethodGet, "/api/registrations/"+token, nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)

	_, _ = doJSON(t, router, http.MethodPost, "/api/registrations", gin.H{
		"name": "Olga", "cookie_id": token, "individual_wishes": "без глютена",
	}, "")

	w, env := doJSON(t, router, http.MethodGet, "/api/registrations/"+token, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	reg := decodeRegistration(t, env.Data)
	assert.Equal(t, "Olga", reg.Name)
	require.NotNil(t, reg.IndividualWishes)
	assert.Equal(t, "без глютена", *reg.IndividualWishes)
}

func TestAmend(t *testing.T) {
	router := newTestRouter(t)
	token := identity.Mint()

	// PUT on an unregistered token never creates a row.
	w, _ := doJSON(t, router, http.MethodPut, "/api/registrations/"+token, gin.H{
		"name": "Ghost",
	}, "")
	require.Equal(t, http.StatusNotFound, w.Code)

	_, _ = doJSON(t, router, http.MethodPost, "/api/registrations", gin.H{
		"name": "Анна", "cookie_id": token, "drinks": []string{"Шампанское"},
	}, "")

	w, env := doJSON(t, router, http.MethodPut, "/api/registrations/"+token, gin.H{
		"name": "Анна", "drinks": []string{"Вино"},
	}, "")
	require.Equal(t, http.StatusOK, w.Code)
	reg := decodeRegistration(t, env.Data)
	assert.Equal(t, []string{"Вино"}, reg.Drinks)
	assert.Nil(t, reg.IndividualWishes)
}

func TestWithdraw(t *testing.T) {
	router := newTestRouter(t)
	token := identity.Mint()

	_, _ = doJSON(t, router, http.MethodPost, "/api/registrations", gin.H{
		"name": "Ivan", "cookie_id": token,
	}, "")

	w, env := doJSON(t, router, http.MethodDelete, "/api/registrations/"+token, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)

	// Cookie cleared: Set-Cookie with Max-Age=0 / empty value.
	setCookie := w.Header().Get("Set-Cookie")
	require.NotEmpty(t, setCookie)
	assert.True(t, strings.Contains(setCookie, "Max-Age=0") || strings.Contains(setCookie, testCookieName+"=;"),
		"expected cookie to be expired, got %q", setCookie)

	w, _ = doJSON(t, router, http.MethodGet, "/api/registrations/"+token, nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)

	// Withdrawing again reports nothing to delete.
	w, _ = doJSON(t, router, http.MethodDelete, "/api/registrations/"+token, nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestListOrderedAndComplete(t *testing.T) {
	router := newTestRouter(t)

	for _, name := range []string{"A", "B", "C"} {
		w, _ := doJSON(t, router, http.MethodPost, "/api/registrations", gin.H{
			"name": name, "cookie_id": identity.Mint(),
		}, "")
		require.Equal(t, http.StatusCreated, w.Code)
	}

	w, env := doJSON(t, router, http.MethodGet, "/api/registrations", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var list []models.Registration
	require.NoError(t, json.Unmarshal(env.Data, &list))
	require.Len(t, list, 3)
	for i := 1; i < len(list); i++ {
		assert.False(t, list[i].CreatedAt.Before(list[i-1].CreatedAt))
	}
}

func TestDrinksVocabulary(t *testing.T) {
	router := newTestRouter(t)

	w, env := doJSON(t, router, http.MethodGet, "/api/drinks", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	var drinks []string
	require.NoError(t, json.Unmarshal(env.Data, &drinks))
	assert.Contains(t, drinks, "Шампанское")
	assert.Contains(t, drinks, "Текила")
}
