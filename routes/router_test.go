package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"civicconnect-be/accesscode/mock_accesscode"
	"civicconnect-be/controllers"
	"civicconnect-be/models"
	"civicconnect-be/repository"
	"civicconnect-be/repository/mock_repository"
	"civicconnect-be/services"
	authUtils "civicconnect-be/utils"
)

type apiFixture struct {
	router   *gin.Engine
	issues   *mock_repository.MockIssueStore
	users    *mock_repository.MockUserStore
	profiles *mock_repository.MockProfileStore
	codes    *mock_accesscode.MockValidator
	tokens   *authUtils.TokenManager
}

func newTestAPI(t *testing.T, dailyLimit int) *apiFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctrl := gomock.NewController(t)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	tokens, err := authUtils.NewTokenManager("test-secret", time.Hour)
	require.NoError(t, err)

	f := &apiFixture{
		issues:   mock_repository.NewMockIssueStore(ctrl),
		users:    mock_repository.NewMockUserStore(ctrl),
		profiles: mock_repository.NewMockProfileStore(ctrl),
		codes:    mock_accesscode.NewMockValidator(ctrl),
		tokens:   tokens,
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	auth := services.NewAuthService(f.users, f.profiles, f.codes, tokens, authUtils.NewRedisRevocationList(rdb, ""), logger)
	f.router = NewRouter(Services{
		Auth:     auth,
		Resolver: auth,
		Issues:   services.NewIssueService(f.issues, logger),
	}, Options{
		Cookies:     controllers.CookieSettings{Domain: "localhost"},
		Redis:       rdb,
		LimitPrefix: "issue_limit",
		DailyLimit:  dailyLimit,
	})
	return f
}

// tokenFor signs a session for userID whose profile holds role.
func (f *apiFixture) tokenFor(t *testing.T, userID, role string) string {
	t.Helper()
	tok, err := f.tokens.Generate(userID)
	require.NoError(t, err)
	f.profiles.EXPECT().GetRole(gomock.Any(), userID).Return(role, nil).AnyTimes()
	return tok
}

func (f *apiFixture) do(t *testing.T, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

type listResponse struct {
	Issues      []models.Issue `json:"issues"`
	TotalIssues int            `json:"totalIssues"`
	Scope       string         `json:"scope"`
	CanManage   bool           `json:"canManage"`
}

func contact(s string) *string { return &s }

func seedIssues() []models.Issue {
	base := time.Date(2024, 7, 1, 10, 0, 0, 0, time.UTC)
	return []models.Issue{
		{ID: "i2", Title: "Streetlight out", Description: "dark", Location: "Oak Rd", Category: "streetlights", Status: models.Pending, Priority: models.Medium, UserID: "u2", ContactInfo: contact("555-0002"), CreatedAt: base.Add(time.Hour)},
		{ID: "i1", Title: "Pothole", Description: "deep", Location: "Main St", Category: "roads", Status: models.InProgress, Priority: models.High, UserID: "u1", ContactInfo: contact("555-0001"), CreatedAt: base},
	}
}

func TestPing(t *testing.T) {
	f := newTestAPI(t, 0)
	w := f.do(t, http.MethodGet, "/ping", nil, "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"message":"pong"}`, w.Body.String())
}

func TestListIssues_AnonymousIsRedacted(t *testing.T) {
	f := newTestAPI(t, 0)
	f.issues.EXPECT().ListAll(gomock.Any()).Return(seedIssues(), nil)

	w := f.do(t, http.MethodGet, "/api/issues", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode[listResponse](t, w)
	assert.Equal(t, "public", resp.Scope)
	assert.False(t, resp.CanManage)
	require.Len(t, resp.Issues, 2)
	for _, i := range resp.Issues {
		assert.Nil(t, i.ContactInfo)
	}
	assert.NotContains(t, w.Body.String(), "555-000")
}

func TestListIssues_CitizenOwnedScopeWithFilter(t *testing.T) {
	f := newTestAPI(t, 0)
	tok := f.tokenFor(t, "u1", "citizen")
	f.issues.EXPECT().ListByOwner(gomock.Any(), "u1").Return(seedIssues()[1:], nil).Times(2)

	w := f.do(t, http.MethodGet, "/api/issues", nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[listResponse](t, w)
	assert.Equal(t, "owned", resp.Scope)
	require.Len(t, resp.Issues, 1)
	require.NotNil(t, resp.Issues[0].ContactInfo)

	w = f.do(t, http.MethodGet, "/api/issues?search=pothole&status=resolved", nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, decode[listResponse](t, w).Issues)
}

func TestListIssues_AuthorityAllScope(t *testing.T) {
	f := newTestAPI(t, 0)
	tok := f.tokenFor(t, "a1", "authority")
	f.issues.EXPECT().ListAll(gomock.Any()).Return(seedIssues(), nil)

	w := f.do(t, http.MethodGet, "/api/issues?category=streetlights", nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[listResponse](t, w)
	assert.Equal(t, "all", resp.Scope)
	assert.True(t, resp.CanManage)
	require.Len(t, resp.Issues, 1)
	require.NotNil(t, resp.Issues[0].ContactInfo)
	assert.Equal(t, "555-0002", *resp.Issues[0].ContactInfo)
}

func TestStats(t *testing.T) {
	f := newTestAPI(t, 0)
	f.issues.EXPECT().ListAll(gomock.Any()).Return(seedIssues(), nil)

	w := f.do(t, http.MethodGet, "/api/issues/stats", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total":2,"pending":1,"in_progress":1,"resolved":0}`, w.Body.String())
}

func TestCreateIssue(t *testing.T) {
	f := newTestAPI(t, 0)
	tok := f.tokenFor(t, "u1", "citizen")
	body := map[string]string{
		"title":       "Overflowing bin",
		"description": "Not collected for a week",
		"location":    "Market Square",
		"category":    "garbage",
	}

	t.Run("anonymous", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/issues", body, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"authentication required"}`, w.Body.String())
	})

	t.Run("missing title", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/issues", map[string]string{"description": "d", "location": "l", "category": "c"}, tok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "title is required")
	})

	t.Run("whitespace title", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/issues", map[string]string{"title": "  ", "description": "d", "location": "l", "category": "c"}, tok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.JSONEq(t, `{"error":"title is required","field":"title"}`, w.Body.String())
	})

	t.Run("created", func(t *testing.T) {
		f.issues.EXPECT().Insert(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, i *models.Issue) error {
			i.ID = "new"
			i.CreatedAt = time.Now()
			return nil
		})
		w := f.do(t, http.MethodPost, "/api/issues", body, tok)
		require.Equal(t, http.StatusCreated, w.Code)
		issue := decode[models.Issue](t, w)
		assert.Equal(t, "new", issue.ID)
		assert.Equal(t, models.Pending, issue.Status)
		assert.Equal(t, models.Medium, issue.Priority)
		assert.Equal(t, "u1", issue.UserID)
		assert.Nil(t, issue.ContactInfo)
	})
}

func TestCreateIssue_DailyLimit(t *testing.T) {
	f := newTestAPI(t, 1)
	tok := f.tokenFor(t, "u1", "citizen")
	f.issues.EXPECT().Insert(gomock.Any(), gomock.Any()).Return(nil)
	body := map[string]string{"title": "t", "description": "d", "location": "l", "category": "roads"}

	assert.Equal(t, http.StatusCreated, f.do(t, http.MethodPost, "/api/issues", body, tok).Code)
	assert.Equal(t, http.StatusTooManyRequests, f.do(t, http.MethodPost, "/api/issues", body, tok).Code)
}

func TestUpdateIssue(t *testing.T) {
	f := newTestAPI(t, 0)
	citizen := f.tokenFor(t, "u1", "citizen")
	authority := f.tokenFor(t, "a1", "authority")

	t.Run("citizen forbidden", func(t *testing.T) {
		w := f.do(t, http.MethodPatch, "/api/issues/i1", map[string]string{"status": "resolved"}, citizen)
		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("anonymous", func(t *testing.T) {
		w := f.do(t, http.MethodPatch, "/api/issues/i1", map[string]string{"status": "resolved"}, "")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bad status", func(t *testing.T) {
		w := f.do(t, http.MethodPatch, "/api/issues/i1", map[string]string{"status": "closed"}, authority)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), `"field":"status"`)
	})

	t.Run("not found", func(t *testing.T) {
		f.issues.EXPECT().Update(gomock.Any(), "nope", gomock.Any()).Return(nil, repository.ErrIssueNotFound)
		w := f.do(t, http.MethodPatch, "/api/issues/nope", map[string]string{"status": "resolved"}, authority)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("updated and assigned", func(t *testing.T) {
		f.issues.EXPECT().Update(gomock.Any(), "i1", gomock.Any()).DoAndReturn(
			func(_ context.Context, id string, u models.IssueUpdate) (*models.Issue, error) {
				assert.Equal(t, "a1", u.AssignedTo)
				assert.Nil(t, u.Priority)
				issue := seedIssues()[1]
				issue.Status = *u.Status
				issue.AssignedTo = contact(u.AssignedTo)
				return &issue, nil
			})
		w := f.do(t, http.MethodPatch, "/api/issues/i1", map[string]string{"status": "resolved"}, authority)
		require.Equal(t, http.StatusOK, w.Code)
		issue := decode[models.Issue](t, w)
		assert.Equal(t, models.Resolved, issue.Status)
		require.NotNil(t, issue.AssignedTo)
		assert.Equal(t, "a1", *issue.AssignedTo)
	})
}

func TestRegister(t *testing.T) {
	f := newTestAPI(t, 0)

	t.Run("citizen", func(t *testing.T) {
		f.users.EXPECT().CreateUser(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *models.User) error {
			u.ID = "u9"
			return nil
		})
		f.profiles.EXPECT().CreateProfile(gomock.Any(), gomock.Any()).Return(nil)

		w := f.do(t, http.MethodPost, "/api/auth/register", map[string]string{
			"email": "ada@example.com", "password": "secret1", "confirm_password": "secret1", "display_name": "Ada",
		}, "")
		require.Equal(t, http.StatusCreated, w.Code)
		assert.Contains(t, w.Body.String(), `"role":"citizen"`)
		assert.NotContains(t, w.Body.String(), "password")
	})

	t.Run("authority with bad code", func(t *testing.T) {
		f.codes.EXPECT().Validate(gomock.Any(), "WRONG", "chief@city.gov").Return(false, nil)

		w := f.do(t, http.MethodPost, "/api/auth/register", map[string]string{
			"email": "chief@city.gov", "password": "secret1", "confirm_password": "secret1",
			"role": "authority", "access_code": "WRONG",
		}, "")
		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.JSONEq(t, `{"error":"invalid or expired code"}`, w.Body.String())
	})

	t.Run("bad email", func(t *testing.T) {
		w := f.do(t, http.MethodPost, "/api/auth/register", map[string]string{
			"email": "nope", "password": "secret1", "confirm_password": "secret1",
		}, "")
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "email must be a valid email address")
	})

	t.Run("email taken", func(t *testing.T) {
		f.users.EXPECT().CreateUser(gomock.Any(), gomock.Any()).Return(repository.ErrEmailTaken)
		w := f.do(t, http.MethodPost, "/api/auth/register", map[string]string{
			"email": "ada@example.com", "password": "secret1", "confirm_password": "secret1",
		}, "")
		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestLoginMeLogout(t *testing.T) {
	f := newTestAPI(t, 0)

	user := &models.User{ID: "u1", Email: "ada@example.com", DisplayName: "Ada", Password: "secret1"}
	require.NoError(t, user.HashPassword())
	f.users.EXPECT().FindUserByEmail(gomock.Any(), "ada@example.com").Return(user, nil).Times(2)
	f.users.EXPECT().FindUserByID(gomock.Any(), "u1").Return(user, nil)
	f.profiles.EXPECT().GetRole(gomock.Any(), "u1").Return("citizen", nil).AnyTimes()

	w := f.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "ada@example.com", "password": "wrong"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodPost, "/api/auth/login", map[string]string{"email": "ada@example.com", "password": "secret1"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "auth_token", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	token := decode[map[string]any](t, w)["token"].(string)
	assert.Equal(t, token, cookies[0].Value)

	// cookie transport
	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookies[0])
	me := httptest.NewRecorder()
	f.router.ServeHTTP(me, req)
	require.Equal(t, http.StatusOK, me.Code)
	assert.Contains(t, me.Body.String(), `"scope":"owned"`)

	w = f.do(t, http.MethodPost, "/api/auth/logout", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	w = f.do(t, http.MethodGet, "/api/auth/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"authenticated":false,"role":"anonymous"}`, w.Body.String())

	w = f.do(t, http.MethodPost, "/api/auth/logout", nil, token)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = f.do(t, http.MethodGet, "/api/auth/me", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"authenticated":false,"role":"anonymous"}`, w.Body.String())
}

func TestStoreFailureIsGeneric(t *testing.T) {
	f := newTestAPI(t, 0)
	f.issues.EXPECT().ListAll(gomock.Any()).Return(nil, context.DeadlineExceeded)

	w := f.do(t, http.MethodGet, "/api/issues", nil, "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Something went wrong"}`, w.Body.String())
}

func TestStaleCookieFallsBackToAnonymous(t *testing.T) {
	f := newTestAPI(t, 0)

	rotated, err := authUtils.NewTokenManager("old-secret", time.Hour)
	require.NoError(t, err)
	stale, err := rotated.Generate("u1")
	require.NoError(t, err)

	withCookie := func(method, path string, body any) *httptest.ResponseRecorder {
		var r io.Reader
		if body != nil {
			b, err := json.Marshal(body)
			require.NoError(t, err)
			r = bytes.NewReader(b)
		}
		req := httptest.NewRequest(method, path, r)
		req.Header.Set("Content-Type", "application/json")
		req.AddCookie(&http.Cookie{Name: "auth_token", Value: stale})
		w := httptest.NewRecorder()
		f.router.ServeHTTP(w, req)
		return w
	}

	t.Run("public list", func(t *testing.T) {
		f.issues.EXPECT().ListAll(gomock.Any()).Return(seedIssues(), nil)

		w := withCookie(http.MethodGet, "/api/issues", nil)
		require.Equal(t, http.StatusOK, w.Code)
		resp := decode[listResponse](t, w)
		assert.Equal(t, "public", resp.Scope)
		for _, issue := range resp.Issues {
			assert.Nil(t, issue.ContactInfo)
		}

		cookies := w.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, "auth_token", cookies[0].Name)
		assert.Empty(t, cookies[0].Value)
		assert.Equal(t, -1, cookies[0].MaxAge)
	})

	t.Run("login replaces the cookie", func(t *testing.T) {
		user := &models.User{ID: "u1", Email: "ada@example.com", Password: "secret1"}
		require.NoError(t, user.HashPassword())
		f.users.EXPECT().FindUserByEmail(gomock.Any(), "ada@example.com").Return(user, nil)

		w := withCookie(http.MethodPost, "/api/auth/login", map[string]string{"email": "ada@example.com", "password": "secret1"})
		require.Equal(t, http.StatusOK, w.Code)

		cookies := w.Result().Cookies()
		require.NotEmpty(t, cookies)
		last := cookies[len(cookies)-1]
		assert.Equal(t, "auth_token", last.Name)
		assert.Equal(t, decode[map[string]any](t, w)["token"], last.Value)
	})

	t.Run("submission still needs a session", func(t *testing.T) {
		w := withCookie(http.MethodPost, "/api/issues", map[string]string{"title": "t", "description": "d", "location": "l", "category": "roads"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
