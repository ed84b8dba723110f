package echoapi

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/user"
	tutil "github.com/trezcool/darasa/tests"
)

func decodeAuthResult(t *testing.T, body []byte) user.AuthResult {
	t.Helper()
	var res user.AuthResult
	require.NoError(t, json.Unmarshal(body, &res))
	return res
}

func Test_userAPI_registerAndAuthorize(t *testing.T) {
	app := newTestApp(t)

	// alice registers as a teacher
	rec := app.do(newRequest(http.MethodPost, "/api/auth/register",
		[]byte(`{"email": "alice@example.com", "password": "pw123", "role": "TEACHER"}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.NotContains(t, rec.Body.String(), "password")
	alice := decodeAuthResult(t, rec.Body.Bytes())
	assert.NotEmpty(t, alice.Token)
	assert.Equal(t, user.RoleTeacher, alice.User.Role)
	assert.Equal(t, "alice@example.com", alice.User.Email)

	// teacher-only endpoint
	rec = app.do(newAuthRequest(http.MethodPost, "/api/activities", alice.Token, []byte(`{"title": "Fractions"}`)))
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	// bob registers as a student
	rec = app.do(newRequest(http.MethodPost, "/api/auth/register",
		[]byte(`{"email": "bob@example.com", "password": "pw456", "role": "STUDENT"}`)))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	bob := decodeAuthResult(t, rec.Body.Bytes())
	assert.Equal(t, user.RoleStudent, bob.User.Role)

	rec = app.do(newAuthRequest(http.MethodPost, "/api/activities", bob.Token, []byte(`{"title": "Hacked"}`)))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error": "permission denied"}`, rec.Body.String())

	// students can still read
	rec = app.do(newAuthRequest(http.MethodGet, "/api/activities", bob.Token))
	assert.Equal(t, http.StatusOK, rec.Code)
	var acts []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &acts))
	require.Len(t, acts, 1)
	assert.Equal(t, "Fractions", acts[0]["title"])

	assert.Len(t, app.mails.Messages(), 2)
	m := app.deps.Metrics
	assert.Equal(t, float64(2), testutil.ToFloat64(m.authEvents.WithLabelValues(eventRegister)))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.authEvents.WithLabelValues(eventForbidden)))
}

func Test_userAPI_register(t *testing.T) {
	app := newTestApp(t)
	tutil.CreateUser(t, app.usrRepo, "taken@example.com", "pwd", user.RoleStudent)

	app.run(t, []httpTest{
		{
			name:     "missing fields",
			method:   http.MethodPost,
			path:     "/api/auth/register",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"email": "this field is required", "password": "this field is required", "role": "this field is required"}`),
		},
		{
			name:     "blank email",
			method:   http.MethodPost,
			path:     "/api/auth/register",
			body:     []byte(`{"email": "   ", "password": "pwd", "role": "STUDENT"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"email": "this field is required"}`),
		},
		{
			name:     "invalid role",
			method:   http.MethodPost,
			path:     "/api/auth/register",
			body:     []byte(`{"email": "carol@example.com", "password": "pwd", "role": "ADMIN"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"role": "role must be one of TEACHER or STUDENT"}`),
		},
		{
			name:     "duplicate email",
			method:   http.MethodPost,
			path:     "/api/auth/register",
			body:     []byte(`{"email": "taken@example.com", "password": "pwd", "role": "TEACHER"}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"email": "a user with this email already exists"}`),
		},
		{
			name:     "password too long",
			method:   http.MethodPost,
			path:     "/api/auth/register",
			body:     marshalObj(t, user.NewUser{Email: "frank@example.com", Password: strings.Repeat("p", 80), Role: "TEACHER"}),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"password": "password must be at most 72 bytes long"}`),
		},
		{
			name:     "malformed json",
			method:   http.MethodPost,
			path:     "/api/auth/register",
			body:     []byte(`{"email": `),
			wantCode: http.StatusBadRequest,
		},
	})

	// the duplicate attempt left the original account untouched
	usr, err := app.usrRepo.GetUserByEmail(bg, "taken@example.com")
	require.NoError(t, err)
	assert.Equal(t, user.RoleStudent, usr.Role)
	assert.True(t, usr.CheckPassword("pwd"))
}

func Test_userAPI_login(t *testing.T) {
	app := newTestApp(t)
	bob := tutil.CreateUser(t, app.usrRepo, "bob@example.com", "pw456", user.RoleStudent)
	invalidCreds := marshalObj(t, httpErr{Error: "invalid credentials"})

	app.run(t, []httpTest{
		{
			name:     "missing fields",
			method:   http.MethodPost,
			path:     "/api/auth/login",
			body:     []byte(`{}`),
			wantCode: http.StatusBadRequest,
			wantData: []byte(`{"email": "this field is required", "password": "this field is required"}`),
		},
		{
			name:     "wrong password",
			method:   http.MethodPost,
			path:     "/api/auth/login",
			body:     []byte(`{"email": "bob@example.com", "password": "pw123"}`),
			wantCode: http.StatusUnauthorized,
			wantData: invalidCreds,
		},
		{
			name:     "unknown email",
			method:   http.MethodPost,
			path:     "/api/auth/login",
			body:     []byte(`{"email": "nobody@example.com", "password": "pw456"}`),
			wantCode: http.StatusUnauthorized,
			wantData: invalidCreds,
		},
	})

	rec := app.do(newRequest(http.MethodPost, "/api/auth/login", []byte(`{"email": "bob@example.com", "password": "pw456"}`)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	res := decodeAuthResult(t, rec.Body.Bytes())
	assert.Equal(t, bob.ID, res.User.ID)

	id, err := app.tokens.Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, auth.Identity{ID: bob.ID, Role: user.RoleStudent}, id)

	m := app.deps.Metrics
	assert.Equal(t, float64(1), testutil.ToFloat64(m.authEvents.WithLabelValues(eventLoginOK)))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.authEvents.WithLabelValues(eventLoginFailed)))
}

func Test_userAPI_me(t *testing.T) {
	app := newTestApp(t)
	alice := tutil.CreateUser(t, app.usrRepo, "alice@example.com", "pw123", user.RoleTeacher)
	ghost := user.User{ID: "5a2a1bd8-8a53-4c1b-a4cc-7b1b6b2d0d3e", Role: user.RoleStudent}

	rec := app.do(newAuthRequest(http.MethodGet, "/api/auth/me", app.getToken(t, alice)))
	require.Equal(t, http.StatusOK, rec.Code)
	var got user.User
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, alice.ID, got.ID)
	assert.Equal(t, user.RoleTeacher, got.Role)
	assert.Nil(t, got.PasswordHash)

	rec = app.do(newAuthRequest(http.MethodGet, "/api/auth/me", app.getToken(t, ghost)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error": "authentication required"}`, rec.Body.String())
}

func Test_authMiddleware(t *testing.T) {
	app := newTestApp(t)
	alice := tutil.CreateUser(t, app.usrRepo, "alice@example.com", "pw123", user.RoleTeacher)
	conf := app.deps.Conf

	sign := func(secret string, exp time.Time) string {
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    conf.AppName,
				Subject:   alice.ID,
				IssuedAt:  jwt.NewNumericDate(exp.Add(-conf.Server.JWTExpirationDelta)),
				ExpiresAt: jwt.NewNumericDate(exp),
			},
			Role: user.RoleTeacher,
		}).SignedString([]byte(secret))
		require.NoError(t, err)
		return token
	}
	valid := sign(conf.SecretKey, time.Now().Add(time.Hour))
	expired := sign(conf.SecretKey, time.Now().Add(-time.Second))
	foreign := sign("another secret", time.Now().Add(time.Hour))
	corrupted := valid[:len(valid)-10] + "AAAAAAAAAA"
	if corrupted == valid {
		corrupted = valid[:len(valid)-10] + "BBBBBBBBBB"
	}

	tests := []struct {
		name     string
		header   string
		wantCode int
	}{
		{name: "valid", header: "Bearer " + valid, wantCode: http.StatusOK},
		{name: "lowercase scheme", header: "bearer " + valid, wantCode: http.StatusOK},
		{name: "no header", wantCode: http.StatusUnauthorized},
		{name: "empty bearer", header: "Bearer ", wantCode: http.StatusUnauthorized},
		{name: "other scheme", header: "Basic YWxpY2U6cHcxMjM=", wantCode: http.StatusUnauthorized},
		{name: "token without scheme", header: valid, wantCode: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer lmaooolol", wantCode: http.StatusUnauthorized},
		{name: "expired", header: "Bearer " + expired, wantCode: http.StatusUnauthorized},
		{name: "other secret", header: "Bearer " + foreign, wantCode: http.StatusUnauthorized},
		{name: "corrupted signature", header: "Bearer " + corrupted, wantCode: http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodGet, "/api/activities")
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			app.do(req, rec)

			assert.Equal(t, tt.wantCode, rec.Code)
			if tt.wantCode == http.StatusUnauthorized {
				// missing and invalid tokens are indistinguishable
				assert.JSONEq(t, `{"error": "authentication required"}`, rec.Body.String())
				assert.Equal(t, `Bearer realm="api"`, rec.Header().Get("WWW-Authenticate"))
			}
		})
	}

	assert.Equal(t, float64(4), testutil.ToFloat64(app.deps.Metrics.authEvents.WithLabelValues(eventTokenRejected)))
}

func Test_bearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		wantOk bool
	}{
		{header: "Bearer abc", want: "abc", wantOk: true},
		{header: "BEARER abc", want: "abc", wantOk: true},
		{header: "  Bearer   abc  ", want: "abc", wantOk: true},
		{header: "Bearer", wantOk: false},
		{header: "Bearer    ", wantOk: false},
		{header: "Token abc", wantOk: false},
		{header: "", wantOk: false},
	}
	for _, tt := range tests {
		t.Run(tt.header, func(t *testing.T) {
			got, ok := bearerToken(tt.header)
			assert.Equal(t, tt.wantOk, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
