package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"

	"github.com/nileshdj/pavti/internal/http/auth"
	"github.com/nileshdj/pavti/internal/user"
)

func newServer(t *testing.T) (*chi.Mux, *user.MockRepository) {
	t.Helper()

	ctrl := gomock.NewController(t)
	repo := user.NewMockRepository(ctrl)

	r := chi.NewRouter()
	r.Route("/login", auth.NewHandler(user.NewService(repo)).Routes)

	return r, repo
}

func postLogin(t *testing.T, r http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	return rec
}

func TestLogin_Success(t *testing.T) {
	r, repo := newServer(t)

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)

	repo.EXPECT().
		GetUserByEmail(gomock.Any(), "clerk@example.com").
		Return(&user.User{ID: 1, Email: "clerk@example.com", PasswordHash: string(hash)}, nil)
	repo.EXPECT().
		EnsureToken(gomock.Any(), int64(1), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ int64, key string) (string, error) {
			return key, nil
		})

	rec := postLogin(t, r, `{"email": "clerk@example.com", "password": "s3cret"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp["token"], 40)
	assert.Equal(t, "Login successful", resp["message"])
}

func TestLogin_BadCredentials(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		setupMock func(m *user.MockRepository)
		wantMsg   string
	}{
		{
			name: "UnknownEmail",
			body: `{"email": "nobody@example.com", "password": "s3cret"}`,
			setupMock: func(m *user.MockRepository) {
				m.EXPECT().
					GetUserByEmail(gomock.Any(), "nobody@example.com").
					Return(nil, user.ErrNotFound)
			},
			wantMsg: "Invalid email or password",
		},
		{
			name: "WrongPassword",
			body: `{"email": "clerk@example.com", "password": "guess"}`,
			setupMock: func(m *user.MockRepository) {
				hash, _ := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
				m.EXPECT().
					GetUserByEmail(gomock.Any(), "clerk@example.com").
					Return(&user.User{ID: 1, PasswordHash: string(hash)}, nil)
			},
			wantMsg: "Invalid email or password",
		},
		{
			name:    "MissingFields",
			body:    `{"email": "", "password": ""}`,
			wantMsg: "Email and password are required",
		},
		{
			name:    "MalformedBody",
			body:    `{"email": `,
			wantMsg: "invalid request body",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, repo := newServer(t)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			rec := postLogin(t, r, tt.body)

			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.wantMsg, resp["error"])
		})
	}
}
