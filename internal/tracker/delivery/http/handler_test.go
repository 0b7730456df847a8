package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"golang-price-tracker/internal/entity"
	"golang-price-tracker/internal/tracker/dto"
	"golang-price-tracker/internal/tracker/repository/repositorytest"
	"golang-price-tracker/internal/tracker/service"
	"golang-price-tracker/pkg/fingerprint"
	"golang-price-tracker/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testOwner = "owner-1"

func newTestServer() *echo.Echo {
	store := repositorytest.New()
	log := logger.NewNop()

	ingest := service.NewIngestService(store, fingerprint.New(), nil, log, 30)
	schedule := service.NewScheduleService(store, log)
	insights := service.NewInsightService(store, log, 30)
	alerts := service.NewAlertService(store, log, 50)

	return NewServer(log,
		NewProductHandler(ingest, schedule, log),
		NewInsightHandler(insights, log),
		NewAlertHandler(alerts, log))
}

func do(e *echo.Echo, method, path, owner, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if owner != "" {
		req.Header.Set(HeaderOwnerID, owner)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func track(t *testing.T, e *echo.Echo, owner, priceRaw string) dto.IngestResult {
	t.Helper()
	body := fmt.Sprintf(`{"url":"https://www.amazon.eg/dp/B0ABCDEF12?ref=x","marketplace":"amazon","title":"Headphones","price_raw":%q}`, priceRaw)
	rec := do(e, http.MethodPost, "/api/v1/track", owner, body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var res dto.IngestResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	return res
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorResponse {
	t.Helper()
	var body dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestTrack(t *testing.T) {
	e := newTestServer()

	t.Run("requires owner header", func(t *testing.T) {
		rec := do(e, http.MethodPost, "/api/v1/track", "", `{"url":"https://www.amazon.eg/dp/B0ABCDEF12","marketplace":"amazon","price_raw":"10"}`)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("rejects invalid payload", func(t *testing.T) {
		rec := do(e, http.MethodPost, "/api/v1/track", testOwner, `{"marketplace":"amazon"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "validation_failed", decodeError(t, rec).Error)
	})

	t.Run("rejects in-stock observation without price", func(t *testing.T) {
		rec := do(e, http.MethodPost, "/api/v1/track", testOwner, `{"url":"https://www.amazon.eg/dp/B0ABCDEF12","marketplace":"amazon"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, decodeError(t, rec).Message, "price_raw")
	})

	t.Run("rejects background job source", func(t *testing.T) {
		rec := do(e, http.MethodPost, "/api/v1/track", testOwner, `{"url":"https://www.amazon.eg/dp/B0ABCDEF12","marketplace":"amazon","price_raw":"10","source":"background_job"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "validation_failed", decodeError(t, rec).Error)
	})

	t.Run("records observation", func(t *testing.T) {
		res := track(t, e, testOwner, "1,299.00 EGP")
		assert.NotZero(t, res.TrackedProductID)
		assert.Equal(t, "https://www.amazon.eg/dp/B0ABCDEF12", res.URL)
		require.NotNil(t, res.Price)
		assert.InDelta(t, 1299.0, *res.Price, 1e-9)
		assert.NotEmpty(t, res.NextRunAt)
	})

	t.Run("sets request id", func(t *testing.T) {
		rec := do(e, http.MethodGet, "/healthz", "", "")
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	})
}

func TestUpdateInterval(t *testing.T) {
	e := newTestServer()
	res := track(t, e, testOwner, "1000")
	path := fmt.Sprintf("/api/v1/products/%d/interval", res.TrackedProductID)

	rec := do(e, http.MethodPatch, path, testOwner, `{"hours":30}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPatch, path, testOwner, `{"hours":1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var sched dto.ProductScheduleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sched))
	assert.Equal(t, 1, sched.UpdateInterval)
	require.NotNil(t, sched.LastScrapedAt)
	assert.NotEmpty(t, sched.NextRunAt)

	// next run is about an hour away, a 5h interval would push it past the imminent scrape
	rec = do(e, http.MethodPatch, path, testOwner, `{"hours":5}`)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(e, http.MethodPatch, "/api/v1/products/999/interval", testOwner, `{"hours":2}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPatch, path, "someone-else", `{"hours":2}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPatch, "/api/v1/products/abc/interval", testOwner, `{"hours":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDeactivate(t *testing.T) {
	e := newTestServer()
	res := track(t, e, testOwner, "1000")

	rec := do(e, http.MethodDelete, fmt.Sprintf("/api/v1/products/%d", res.TrackedProductID), testOwner, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(e, http.MethodDelete, "/api/v1/products/999", testOwner, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestInsightEndpoints(t *testing.T) {
	e := newTestServer()
	res := track(t, e, testOwner, "1000")
	track(t, e, testOwner, "950")

	rec := do(e, http.MethodGet, fmt.Sprintf("/api/v1/products/%d/insight/latest", res.TrackedProductID), testOwner, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var latest entity.AIInsight
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &latest))
	assert.Equal(t, 2, latest.SnapshotCount)
	assert.NotEmpty(t, latest.Recommendation)

	rec = do(e, http.MethodPost, fmt.Sprintf("/api/v1/products/%d/insight", res.TrackedProductID), testOwner, "")
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = do(e, http.MethodGet, "/api/v1/products/999/insight/latest", testOwner, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(e, http.MethodPost, "/api/v1/insights/refresh", testOwner, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var refresh dto.RefreshResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &refresh))
	assert.Equal(t, 1, refresh.Total)
	assert.Equal(t, 1, refresh.Succeeded)
	assert.Empty(t, refresh.Failed)
}

func TestAlertLifecycle(t *testing.T) {
	e := newTestServer()
	res := track(t, e, testOwner, "1000")

	rec := do(e, http.MethodPost, fmt.Sprintf("/api/v1/products/%d/alerts", res.TrackedProductID), testOwner, `{"target_price":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, fmt.Sprintf("/api/v1/products/%d/alerts", res.TrackedProductID), testOwner, `{"target_price":900}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var alert entity.PriceEvent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &alert))
	assert.False(t, alert.Triggered)

	track(t, e, testOwner, "850")

	rec = do(e, http.MethodGet, "/api/v1/alerts/pending", testOwner, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var pending []entity.PriceEvent
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pending))
	require.Len(t, pending, 1)
	assert.Equal(t, alert.ID, pending[0].ID)
	assert.True(t, pending[0].Triggered)

	rec = do(e, http.MethodGet, "/api/v1/alerts/pending", "someone-else", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(e, http.MethodGet, "/api/v1/alerts/pending?limit=x", testOwner, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(e, http.MethodPost, fmt.Sprintf("/api/v1/alerts/%d/ack", alert.ID), testOwner, `{"source":"extension"}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(e, http.MethodGet, "/api/v1/alerts/pending", testOwner, "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())

	rec = do(e, http.MethodPost, "/api/v1/alerts/999/ack", testOwner, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRespondError_HidesInternalErrors(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

	require.NoError(t, respondError(c, logger.NewNop(), fmt.Errorf("db down")))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "db down")

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	require.NoError(t, respondError(c, logger.NewNop(), fmt.Errorf("wrapped: %w", service.ErrIntervalConflict)))
	assert.Equal(t, http.StatusConflict, rec.Code)
}
