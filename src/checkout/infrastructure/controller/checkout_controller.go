package controller

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mattjboland/boutique-ado/src/checkout/application/request"
	"github.com/mattjboland/boutique-ado/src/checkout/application/usecase"
	"github.com/mattjboland/boutique-ado/src/checkout/domain/entity"
	"github.com/mattjboland/boutique-ado/src/checkout/infrastructure/gateway"
	"github.com/mattjboland/boutique-ado/src/shared/infrastructure/metrics"
)

// Header que identifica la sesión del bag
const sessionHeader = "X-Session-ID"

// CheckoutController maneja las peticiones HTTP del checkout
type CheckoutController struct {
	startCheckoutUC     *usecase.StartCheckoutUseCase
	cacheCheckoutDataUC *usecase.CacheCheckoutDataUseCase
	submitCheckoutUC    *usecase.SubmitCheckoutUseCase
	getOrderUC          *usecase.GetOrderUseCase
	checkoutMetrics     *metrics.CheckoutMetrics
}

// NewCheckoutController crea una nueva instancia del controlador
func NewCheckoutController(
	startCheckoutUC *usecase.StartCheckoutUseCase,
	cacheCheckoutDataUC *usecase.CacheCheckoutDataUseCase,
	submitCheckoutUC *usecase.SubmitCheckoutUseCase,
	getOrderUC *usecase.GetOrderUseCase,
	checkoutMetrics *metrics.CheckoutMetrics,
) *CheckoutController {
	return &CheckoutController{
		startCheckoutUC:     startCheckoutUC,
		cacheCheckoutDataUC: cacheCheckoutDataUC,
		submitCheckoutUC:    submitCheckoutUC,
		getOrderUC:          getOrderUC,
		checkoutMetrics:     checkoutMetrics,
	}
}

// RegisterRoutes registra las rutas del controlador
func (c *CheckoutController) RegisterRoutes(router *gin.RouterGroup) {
	checkout := router.Group("/checkout")
	{
		checkout.GET("", c.StartCheckout)
		checkout.POST("", c.SubmitCheckout)
		checkout.POST("/cache-checkout-data", c.CacheCheckoutData)
		checkout.GET("/success/:order_number", c.CheckoutSuccess)
	}

	log.Println("Rutas Checkout disponibles:")
	log.Println("  GET    /api/v1/checkout")
	log.Println("  POST   /api/v1/checkout")
	log.Println("  POST   /api/v1/checkout/cache-checkout-data")
	log.Println("  GET    /api/v1/checkout/success/:order_number")
}

// StartCheckout inicia el checkout: crea el payment intent y devuelve el
// client_secret con los totales de la sesión
func (c *CheckoutController) StartCheckout(ctx *gin.Context) {
	sessionID := ctx.GetHeader(sessionHeader)
	if sessionID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "X-Session-ID header is required"})
		return
	}
	username := ctx.Query("username")

	resp, err := c.startCheckoutUC.Execute(ctx.Request.Context(), sessionID, username)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, resp)
}

// CacheCheckoutData adjunta la metadata de correlación al intent antes de
// que el cliente confirme el pago
func (c *CheckoutController) CacheCheckoutData(ctx *gin.Context) {
	sessionID := ctx.GetHeader(sessionHeader)
	if sessionID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "X-Session-ID header is required"})
		return
	}

	var req request.CacheCheckoutDataRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := c.cacheCheckoutDataUC.Execute(ctx.Request.Context(), sessionID, &req); err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "checkout data cached"})
}

// SubmitCheckout confirma el checkout y materializa la orden
func (c *CheckoutController) SubmitCheckout(ctx *gin.Context) {
	sessionID := ctx.GetHeader(sessionHeader)
	if sessionID == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "X-Session-ID header is required"})
		return
	}

	var req request.CheckoutSubmitRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := c.submitCheckoutUC.Execute(ctx.Request.Context(), sessionID, &req)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	c.checkoutMetrics.OrdersCreated.WithLabelValues("checkout").Inc()
	ctx.JSON(http.StatusCreated, resp)
}

// CheckoutSuccess devuelve la orden confirmada con sus line items
func (c *CheckoutController) CheckoutSuccess(ctx *gin.Context) {
	orderNumber := ctx.Param("order_number")

	order, err := c.getOrderUC.Execute(ctx.Request.Context(), orderNumber)
	if err != nil {
		c.respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, order)
}

// respondError mapea los errores de dominio a códigos HTTP
func (c *CheckoutController) respondError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, entity.ErrEmptyBag),
		errors.Is(err, entity.ErrInvalidBag),
		errors.Is(err, entity.ErrInvalidQuantity),
		errors.Is(err, entity.ErrMissingContactInfo),
		errors.Is(err, entity.ErrMissingShippingInfo),
		errors.Is(err, entity.ErrStripePIDRequired),
		errors.Is(err, gateway.ErrInvalidClientSecret):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, entity.ErrItemUnavailable):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	case errors.Is(err, entity.ErrOrderNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	default:
		log.Printf("Error in checkout: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
