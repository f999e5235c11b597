package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/middleware"
	"github.com/dafibh/spendwise/spendwise-backend/internal/service"
	"github.com/dafibh/spendwise/spendwise-backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)

type testEnv struct {
	e       *echo.Echo
	tracker *service.Tracker
	backend *testutil.MockDataBackend
	kv      *testutil.MockKeyValueStore
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	backend := testutil.NewMockDataBackend()
	backend.AddUser(&domain.User{ID: "1", Username: "demo"})
	kv := testutil.NewMockKeyValueStore()
	clock := func() time.Time { return testNow }

	tracker := service.NewTracker(service.TrackerDeps{
		Backend:          backend,
		Storage:          kv,
		Notifier:         service.NewNotificationService(clock),
		DefaultBudget:    decimal.NewFromInt(1000),
		StrictCategories: true,
		AlertDedupe:      true,
		Clock:            clock,
	})
	require.NoError(t, tracker.Start(context.Background()))

	return &testEnv{e: echo.New(), tracker: tracker, backend: backend, kv: kv}
}

func (env *testEnv) login(t *testing.T) {
	t.Helper()
	_, err := env.tracker.Login(context.Background(), "demo", "password")
	require.NoError(t, err)
}

// newContext builds a request context; authed requests carry the session user
func (env *testEnv) newContext(method, target string, body interface{}, authed bool) (echo.Context, *httptest.ResponseRecorder) {
	var reader *bytes.Reader
	if body != nil {
		data, _ := json.Marshal(body)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, target, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if authed {
		ctx := context.WithValue(req.Context(), middleware.UserIDKey, "1")
		ctx = context.WithValue(ctx, middleware.SessionTokenKey, domain.SessionToken("1"))
		req = req.WithContext(ctx)
	}
	rec := httptest.NewRecorder()
	return env.e.NewContext(req, rec), rec
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) ProblemDetails {
	t.Helper()
	var p ProblemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	return p
}
