package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/nileshdj/pavti/internal/http/middleware"
	"github.com/nileshdj/pavti/internal/user"
)

// echoUser reports which user, if any, the middleware attached.
func echoUser() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u := middleware.UserFrom(r.Context())
		if u == nil {
			_, _ = w.Write([]byte("anonymous"))
			return
		}

		_, _ = w.Write([]byte(u.Username))
	})
}

func TestAuthenticator(t *testing.T) {
	type testCase struct {
		name       string
		authHeader string
		setupMock  func(m *user.MockRepository)
		wantStatus int
		wantBody   string
	}

	clerk := &user.User{ID: 1, Username: "clerk"}

	tests := []testCase{
		{
			name:       "NoHeaderPassesAnonymous",
			wantStatus: http.StatusOK,
			wantBody:   "anonymous",
		},
		{
			name:       "TokenScheme",
			authHeader: "Token deadbeef",
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().GetUserByToken(gomock.Any(), "deadbeef").Return(clerk, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   "clerk",
		},
		{
			name:       "BearerScheme",
			authHeader: "Bearer deadbeef",
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().GetUserByToken(gomock.Any(), "deadbeef").Return(clerk, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   "clerk",
		},
		{
			name:       "SchemeIsCaseInsensitive",
			authHeader: "token deadbeef",
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().GetUserByToken(gomock.Any(), "deadbeef").Return(clerk, nil)
			},
			wantStatus: http.StatusOK,
			wantBody:   "clerk",
		},
		{
			name:       "InvalidTokenRejected",
			authHeader: "Token bogus",
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().GetUserByToken(gomock.Any(), "bogus").Return(nil, user.ErrNotFound)
			},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "UnknownSchemeIgnored",
			authHeader: "Basic dXNlcjpwYXNz",
			wantStatus: http.StatusOK,
			wantBody:   "anonymous",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := user.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			handler := middleware.Authenticator(user.NewService(repo))(echoUser())

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}

			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			require.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, rec.Body.String())
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	handler := middleware.RequireAuth(echoUser())

	t.Run("Anonymous", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.JSONEq(t, `{"error": "Authentication required"}`, rec.Body.String())
	})

	t.Run("Authenticated", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req = req.WithContext(middleware.WithUser(req.Context(), &user.User{Username: "clerk"}))

		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "clerk", rec.Body.String())
	})
}
