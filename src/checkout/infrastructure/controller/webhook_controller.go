package controller

import (
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mattjboland/boutique-ado/src/checkout/application/response"
	"github.com/mattjboland/boutique-ado/src/checkout/application/usecase"
	"github.com/mattjboland/boutique-ado/src/checkout/domain/entity"
	"github.com/mattjboland/boutique-ado/src/checkout/infrastructure/gateway"
	"github.com/mattjboland/boutique-ado/src/shared/infrastructure/metrics"
)

// WebhookController recibe los eventos firmados del gateway de pagos
type WebhookController struct {
	reconcileUC     *usecase.ReconcilePaymentUseCase
	webhookSecret   string
	checkoutMetrics *metrics.CheckoutMetrics
}

// NewWebhookController crea una nueva instancia del controlador
func NewWebhookController(reconcileUC *usecase.ReconcilePaymentUseCase, webhookSecret string, checkoutMetrics *metrics.CheckoutMetrics) *WebhookController {
	return &WebhookController{
		reconcileUC:     reconcileUC,
		webhookSecret:   webhookSecret,
		checkoutMetrics: checkoutMetrics,
	}
}

// RegisterRoutes registra las rutas del controlador
func (c *WebhookController) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/checkout/wh", c.Handle)

	log.Println("  POST   /api/v1/checkout/wh")
}

// Handle procesa un evento entrante del gateway.
// Un 4xx descarta el evento; un 5xx hace que el gateway lo reintente, por
// eso los fallos transitorios de reconciliación responden 500.
func (c *WebhookController) Handle(ctx *gin.Context) {
	payload, err := io.ReadAll(ctx.Request.Body)
	if err != nil {
		c.checkoutMetrics.WebhookEvents.WithLabelValues("unknown", "rejected").Inc()
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "error reading payload"})
		return
	}

	// La firma se verifica sobre el payload crudo, antes de parsear nada
	header := ctx.GetHeader(gateway.SignatureHeader)
	if err := gateway.VerifySignature(payload, header, c.webhookSecret, gateway.DefaultSignatureTolerance); err != nil {
		log.Printf("⚠️ Webhook signature rejected: %v", err)
		c.checkoutMetrics.WebhookEvents.WithLabelValues("unknown", "rejected").Inc()
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := gateway.ParseEvent(payload)
	if err != nil {
		c.checkoutMetrics.WebhookEvents.WithLabelValues("unknown", "rejected").Inc()
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	kind := string(entity.EventKindOf(event.Type))

	result, err := c.reconcileUC.Execute(ctx.Request.Context(), event)
	if err != nil {
		log.Printf("Error reconciling webhook event %s: %v", event.ID, err)
		c.checkoutMetrics.WebhookEvents.WithLabelValues(kind, "failed").Inc()
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.checkoutMetrics.WebhookEvents.WithLabelValues(kind, strings.ToLower(string(result.State))).Inc()
	if result.State == entity.StateCreated || (result.State == entity.StateNotified && !result.AlreadyExisted) {
		c.checkoutMetrics.OrdersCreated.WithLabelValues("webhook").Inc()
	}

	ctx.JSON(http.StatusOK, response.WebhookAck{
		Message: result.Message,
		State:   string(result.State),
	})
}
