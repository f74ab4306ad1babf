package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lepko/lepko/internal/application/config"
	"github.com/lepko/lepko/internal/domain/models"
	"github.com/lepko/lepko/internal/usecase"
)

type fakeKeyUsecase struct {
	statuses map[string]usecase.KeyStatus
	plans    map[string]models.Plan
}

func (f *fakeKeyUsecase) Generate(_ context.Context, plan models.Plan) (*models.AccessKey, error) {
	return &models.AccessKey{
		ID:        uuid.New(),
		KeyString: "LEPKO-TEST",
		PlanType:  plan,
	}, nil
}

func (f *fakeKeyUsecase) Check(_ context.Context, keyString string) (usecase.KeyStatus, models.Plan, error) {
	status, ok := f.statuses[keyString]
	if !ok {
		return usecase.KeyNotFound, "", nil
	}
	return status, f.plans[keyString], nil
}

func (f *fakeKeyUsecase) Count(_ context.Context) (int64, error) {
	return int64(len(f.statuses)), nil
}

func checkRequest(t *testing.T, h *KeyHandler, key string) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)
	ctx.SetParamNames("key")
	ctx.SetParamValues(key)

	require.NoError(t, h.Check(ctx))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return rec, body
}

func generateRequest(t *testing.T, h *KeyHandler, plan string) (*httptest.ResponseRecorder, map[string]string) {
	t.Helper()

	form := url.Values{"plan_type": {plan}}

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, h.Generate(ctx))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	return rec, body
}

func TestCheckActiveKey(t *testing.T) {
	h := NewKeyHandler(&config.Config{}, &fakeKeyUsecase{
		statuses: map[string]usecase.KeyStatus{"LEPKO-GOOD": usecase.KeyActive},
		plans:    map[string]models.Plan{"LEPKO-GOOD": models.PlanYearly},
	})

	rec, body := checkRequest(t, h, "LEPKO-GOOD")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "active", body["status"])
	assert.Equal(t, "yearly", body["plan"])
}

func TestCheckExpiredKeyOmitsPlan(t *testing.T) {
	h := NewKeyHandler(&config.Config{}, &fakeKeyUsecase{
		statuses: map[string]usecase.KeyStatus{"LEPKO-OLD": usecase.KeyExpired},
	})

	rec, body := checkRequest(t, h, "LEPKO-OLD")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "expired", body["status"])
	assert.NotContains(t, body, "plan")
}

func TestCheckUnknownKey(t *testing.T) {
	h := NewKeyHandler(&config.Config{}, &fakeKeyUsecase{})

	rec, body := checkRequest(t, h, "LEPKO-NOPE")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", body["status"])
}

func TestGenerateIssuesKeyWithoutPaymentProvider(t *testing.T) {
	h := NewKeyHandler(&config.Config{}, &fakeKeyUsecase{})

	rec, body := generateRequest(t, h, "monthly")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "LEPKO-TEST", body["access_key"])
}

func TestGenerateRedirectsToPaymentProvider(t *testing.T) {
	h := NewKeyHandler(&config.Config{PaymentURL: "https://pay.example/checkout"}, &fakeKeyUsecase{})

	rec, body := generateRequest(t, h, "yearly")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://pay.example/checkout?plan=yearly", body["payment_url"])
	assert.NotContains(t, body, "access_key")
}

func TestGenerateRejectsTrialAndUnknownPlans(t *testing.T) {
	h := NewKeyHandler(&config.Config{}, &fakeKeyUsecase{})

	for _, plan := range []string{"trial", "lifetime", ""} {
		rec, _ := generateRequest(t, h, plan)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "plan %q", plan)
	}
}

func TestGenerateTrial(t *testing.T) {
	h := NewKeyHandler(&config.Config{}, &fakeKeyUsecase{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()
	ctx := e.NewContext(req, rec)

	require.NoError(t, h.GenerateTrial(ctx))

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "LEPKO-TEST", body["access_key"])
}
