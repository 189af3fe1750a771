package http

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/service"
)

const (
	headerUserID   = "X-User-ID"
	headerUserRole = "X-User-Role"
	roleAdmin      = "admin"
	ctxUserID      = "userID"
)

// Services groups the use cases exposed over HTTP.
type Services struct {
	Catalog  *service.CatalogService
	Cart     *service.CartService
	Checkout *service.CheckoutService
	Orders   *service.OrderService
	Accounts *service.AccountService
}

// Server handles HTTP requests for the storefront.
type Server struct {
	engine *gin.Engine
	svc    Services
	logger *zap.Logger
}

func NewServer(svc Services, logger *zap.Logger) *Server {
	r := gin.New()
	r.Use(accessLog(logger), gin.Recovery(), cors())
	s := &Server{engine: r, svc: svc, logger: logger}
	s.registerRoutes()
	return s
}

func (s *Server) Engine() *gin.Engine { return s.engine }

func (s *Server) registerRoutes() {
	s.engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	public := s.engine.Group("/public/product")
	{
		public.GET("/dashboard", s.dashboard)
		public.GET("/search", s.searchProducts)
		public.GET("/:productId", s.getProduct)
	}

	auth := s.engine.Group("/auth", requireUser())
	{
		auth.POST("/cart", s.addCartItem)
		auth.DELETE("/cart/:productId", s.removeCartItem)
		auth.GET("/cart", s.listCartItems)

		auth.GET("/checkout-data", s.checkoutOptions)
		auth.POST("/checkout-data", s.setCheckoutData)
		auth.POST("/checkout-pay", s.pay)

		auth.GET("/orders", s.listOrders)
		auth.GET("/orders/:orderId", s.getOrder)

		auth.POST("/delivery-address", s.addAddress)
		auth.DELETE("/delivery-address/:id", s.deleteAddress)
		auth.POST("/payment-method", s.addPaymentMethod)
		auth.DELETE("/payment-method/:id", s.deletePaymentMethod)
	}

	admin := s.engine.Group("/admin", requireUser(), requireAdmin())
	{
		admin.POST("/product", s.createProduct)
		admin.PATCH("/product/:productId", s.updateProduct)
		admin.DELETE("/product/:productId", s.deleteProduct)
		admin.PATCH("/status/:productId", s.setProductStatus)
	}
}

func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("Access-Control-Allow-Origin", "*")
		h.Set("Access-Control-Allow-Methods", "GET, POST, PATCH, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", "Content-Type, "+headerUserID+", "+headerUserRole)

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// requireUser reads the caller identity set by the upstream gateway.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := strconv.ParseInt(c.GetHeader(headerUserID), 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, errorBody("unauthorized", "user is not authenticated"))
			return
		}
		c.Set(ctxUserID, id)
		c.Next()
	}
}

func requireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader(headerUserRole) != roleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, errorBody("forbidden", "user is not authorized"))
			return
		}
		c.Next()
	}
}

func userID(c *gin.Context) int64 {
	return c.GetInt64(ctxUserID)
}

func accessLog(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
		}
		if id := userID(c); id != 0 {
			fields = append(fields, zap.Int64("user_id", id))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			logger.Error("request", fields...)
			return
		}
		logger.Info("request", fields...)
	}
}

type errorMapping struct {
	target error
	status int
	code   string
}

var errorMappings = []errorMapping{
	{service.ErrInvalidInput, http.StatusBadRequest, "invalid_input"},
	{service.ErrOutOfStock, http.StatusBadRequest, "out_of_stock"},
	{service.ErrInsufficientStock, http.StatusBadRequest, "insufficient_stock"},
	{service.ErrInvalidAddress, http.StatusBadRequest, "invalid_address"},
	{service.ErrInvalidPayment, http.StatusBadRequest, "invalid_payment"},
	{service.ErrNoCart, http.StatusBadRequest, "no_cart"},
	{service.ErrEmptyCart, http.StatusBadRequest, "empty_cart"},
	{service.ErrDuplicateOrder, http.StatusBadRequest, "duplicate_order"},
	{service.ErrInvalidState, http.StatusBadRequest, "invalid_state"},
	{service.ErrForbidden, http.StatusForbidden, "forbidden"},
	{service.ErrNotFound, http.StatusNotFound, "not_found"},
	{service.ErrInUse, http.StatusConflict, "in_use"},
	{service.ErrOversold, http.StatusConflict, "oversold"},
	{service.ErrProductMissing, http.StatusConflict, "product_missing"},
}

func mapErrorToStatus(err error) (int, string) {
	for _, m := range errorMappings {
		if errors.Is(err, m.target) {
			return m.status, m.code
		}
	}
	return http.StatusInternalServerError, "internal"
}

func errorBody(code, message string) gin.H {
	return gin.H{"success": false, "error": code, "message": message}
}

// fail writes the error response for err. Internal errors are logged and
// their detail is not sent to the client.
func (s *Server) fail(c *gin.Context, err error) {
	status, code := mapErrorToStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		message = "internal server error"
	}
	c.JSON(status, errorBody(code, message))
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, errorBody("invalid_input", message))
}

func parseID(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
