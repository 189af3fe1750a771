package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type checkoutReq struct {
	BillingAddress  int64 `json:"billingAddress"`
	ShippingAddress int64 `json:"shippingAddress"`
	PaymentMethod   int64 `json:"paymentMethod"`
}

type payReq struct {
	OrderID int64 `json:"orderId"`
}

func (s *Server) checkoutOptions(c *gin.Context) {
	opts, err := s.svc.Checkout.CheckoutOptions(c, userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":    "success",
		"addresses": opts.Addresses,
		"payments":  opts.Payments,
	})
}

func (s *Server) setCheckoutData(c *gin.Context) {
	var req checkoutReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	o, err := s.svc.Checkout.SetCheckoutData(c, userID(c), req.BillingAddress, req.ShippingAddress, req.PaymentMethod)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"status":      "success",
		"message":     "Order created successfully",
		"orderId":     o.ID,
		"totalAmount": o.TotalAmount,
		"orderStatus": o.Status,
	})
}

func (s *Server) pay(c *gin.Context) {
	var req payReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if req.OrderID == 0 {
		badRequest(c, "Order ID is required")
		return
	}
	o, err := s.svc.Orders.Pay(c, userID(c), req.OrderID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":      "success",
		"message":     "Payment successful",
		"orderId":     o.ID,
		"orderStatus": o.Status,
	})
}

func (s *Server) getOrder(c *gin.Context) {
	id, err := parseID(c.Param("orderId"))
	if err != nil {
		badRequest(c, "invalid order id")
		return
	}
	o, err := s.svc.Orders.GetOrder(c, userID(c), id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (s *Server) listOrders(c *gin.Context) {
	orders, err := s.svc.Orders.ListOrders(c, userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "orders": orders})
}
