package echoapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/trezcool/darasa/core"
	"github.com/trezcool/darasa/core/activity"
	"github.com/trezcool/darasa/core/auth"
	"github.com/trezcool/darasa/core/resource"
	"github.com/trezcool/darasa/core/user"
	logsvc "github.com/trezcool/darasa/services/logger"
	inmemdb "github.com/trezcool/darasa/storage/database/inmem"
	testutil "github.com/trezcool/darasa/tests"
)

type testApp struct {
	server  *Server
	deps    *Deps
	tokens  *auth.TokenManager
	usrRepo user.Repository
	mails   *testutil.MailRecorder
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	conf := testutil.Config()
	db := inmemdb.Open()

	validate, translator := core.NewValidator()
	user.InitValidators(validate, translator)

	tokens := auth.NewTokenManagerFromConfig(conf)
	usrRepo := inmemdb.NewUserRepository(db)
	mails := new(testutil.MailRecorder)

	deps := &Deps{
		Conf:        conf,
		Logger:      logsvc.NewRollbarLogger(logsvc.NewLogrus(io.Discard, conf), conf),
		Validate:    validate,
		Translator:  translator,
		Tokens:      tokens,
		Metrics:     NewMetrics(prometheus.NewRegistry()),
		UserSvc:     user.NewService(usrRepo, tokens, mails, conf),
		ActivitySvc: activity.NewService(inmemdb.NewActivityRepository(db)),
		ResourceSvc: resource.NewService(inmemdb.NewResourceRepository(db)),
	}
	return &testApp{
		server:  NewServer("", nil, deps),
		deps:    deps,
		tokens:  tokens,
		usrRepo: usrRepo,
		mails:   mails,
	}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func (app *testApp) do(req *http.Request, rec *httptest.ResponseRecorder) *httptest.ResponseRecorder {
	app.server.ServeHTTP(rec, req)
	return rec
}

func (app *testApp) getToken(t *testing.T, usr user.User) string {
	t.Helper()
	token, err := app.tokens.IssueToken(usr)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func (app *testApp) run(t *testing.T, tests []httpTest) {
	t.Helper()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(newAuthRequest(tt.method, tt.path, tt.token, tt.body))
			checkCodeAndData(t, tt, rec)
		})
	}
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj(): %v", err)
	}
	return data
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	var got, want interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("failed to decode response %q: %v", rec.Body.String(), err)
	}
	if err := json.Unmarshal(tt.wantData, &want); err != nil {
		t.Fatalf("failed to decode wantData: %v", err)
	}
	if !jsonEqual(got, want) {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func jsonEqual(a, b interface{}) bool {
	ab, _ := json.Marshal(a)
	bb, _ := json.Marshal(b)
	return bytes.Equal(ab, bb)
}

var bg = context.Background()
