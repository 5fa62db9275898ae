package controller

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mattjboland/boutique-ado/src/checkout/application/response"
	"github.com/mattjboland/boutique-ado/src/checkout/application/usecase"
	"github.com/mattjboland/boutique-ado/src/checkout/domain/entity"
	"github.com/mattjboland/boutique-ado/src/checkout/infrastructure/gateway"
	"github.com/mattjboland/boutique-ado/src/shared/infrastructure/metrics"
)

const testWebhookSecret = "whsec_test"

// El registry de Prometheus es global, una sola instancia para el paquete
var testMetrics = metrics.NewCheckoutMetrics()

func newWebhookRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)

	reconcileUC := usecase.NewReconcilePaymentUseCase(nil, nil, nil, nil).
		WithMatchWindow(1, time.Millisecond)
	controller := NewWebhookController(reconcileUC, testWebhookSecret, testMetrics)

	router := gin.New()
	controller.RegisterRoutes(router.Group("/api/v1"))
	return router
}

func deliverWebhook(t *testing.T, router *gin.Engine, payload []byte, header string) *httptest.ResponseRecorder {
	t.Helper()

	req, err := http.NewRequest(http.MethodPost, "/api/v1/checkout/wh", bytes.NewReader(payload))
	require.NoError(t, err)
	if header != "" {
		req.Header.Set(gateway.SignatureHeader, header)
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestWebhookRejectsMissingSignature(t *testing.T) {
	router := newWebhookRouter()
	payload := []byte(`{"id": "evt_1", "type": "payment_intent.succeeded"}`)

	recorder := deliverWebhook(t, router, payload, "")
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestWebhookRejectsInvalidSignature(t *testing.T) {
	router := newWebhookRouter()
	payload := []byte(`{"id": "evt_1", "type": "payment_intent.succeeded"}`)
	header := gateway.SignPayload([]byte(`other payload`), testWebhookSecret, time.Now())

	recorder := deliverWebhook(t, router, payload, header)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestWebhookRejectsMalformedPayload(t *testing.T) {
	router := newWebhookRouter()
	payload := []byte(`not json`)
	header := gateway.SignPayload(payload, testWebhookSecret, time.Now())

	recorder := deliverWebhook(t, router, payload, header)
	assert.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestWebhookAcknowledgesPaymentFailed(t *testing.T) {
	router := newWebhookRouter()
	payload := []byte(`{"id": "evt_1", "type": "payment_intent.payment_failed", "data": {"object": {"id": "pi_1"}}}`)
	header := gateway.SignPayload(payload, testWebhookSecret, time.Now())

	recorder := deliverWebhook(t, router, payload, header)
	require.Equal(t, http.StatusOK, recorder.Code)

	var ack response.WebhookAck
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &ack))
	assert.Equal(t, string(entity.StateVerified), ack.State)
	assert.Contains(t, ack.Message, "payment_intent.payment_failed")
}

func TestWebhookAcknowledgesUnknownEventType(t *testing.T) {
	router := newWebhookRouter()
	payload := []byte(`{"id": "evt_1", "type": "charge.refunded", "data": {"object": {"id": "pi_1"}}}`)
	header := gateway.SignPayload(payload, testWebhookSecret, time.Now())

	recorder := deliverWebhook(t, router, payload, header)
	require.Equal(t, http.StatusOK, recorder.Code)

	var ack response.WebhookAck
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &ack))
	assert.Equal(t, string(entity.StateVerified), ack.State)
}
