package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type addCartItemReq struct {
	ProductID string `json:"productId"`
	// Quantity defaults to 1 when omitted.
	Quantity *int `json:"quantity"`
}

func (s *Server) addCartItem(c *gin.Context) {
	var req addCartItemReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if req.ProductID == "" {
		badRequest(c, "Product ID required")
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	res, err := s.svc.Cart.AddItem(c, userID(c), req.ProductID, qty)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":      true,
		"message":      "Product added to cart",
		"total":        res.Total,
		"productPrice": res.ProductPrice,
		"productId":    res.ProductKey,
		"quantity":     res.Quantity,
	})
}

func (s *Server) removeCartItem(c *gin.Context) {
	key := c.Param("productId")
	total, err := s.svc.Cart.RemoveItem(c, userID(c), key)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Product deleted from cart",
		"total":     total,
		"productId": key,
	})
}

func (s *Server) listCartItems(c *gin.Context) {
	items, err := s.svc.Cart.ListItems(c, userID(c))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "items": items})
}
