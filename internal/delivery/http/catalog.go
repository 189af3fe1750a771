package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/service"
)

type productReq struct {
	Name          *string          `json:"name"`
	Description   *string          `json:"description"`
	Category      *string          `json:"category"`
	Image         *string          `json:"image"`
	Price         *decimal.Decimal `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice"`
	ClearDiscount bool             `json:"clearDiscount"`
	Stock         *int             `json:"stock"`
	IsActive      *bool            `json:"isActive"`
}

type statusReq struct {
	Stock    *int  `json:"stock"`
	IsActive *bool `json:"isActive"`
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}

func (s *Server) createProduct(c *gin.Context) {
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if req.Price == nil {
		badRequest(c, "price is required")
		return
	}
	p, err := s.svc.Catalog.Create(c, service.NewProduct{
		Name:          deref(req.Name),
		Description:   deref(req.Description),
		Category:      deref(req.Category),
		Image:         deref(req.Image),
		Price:         *req.Price,
		DiscountPrice: req.DiscountPrice,
		Stock:         deref(req.Stock),
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success":     true,
		"message":     "Product successfully created",
		"productId":   p.Key,
		"productSlug": p.Slug,
	})
}

func (s *Server) updateProduct(c *gin.Context) {
	var req productReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	p, err := s.svc.Catalog.Update(c, c.Param("productId"), service.ProductPatch{
		Name:          req.Name,
		Description:   req.Description,
		Category:      req.Category,
		Image:         req.Image,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		ClearDiscount: req.ClearDiscount,
		Stock:         req.Stock,
		Active:        req.IsActive,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Product successfully updated",
		"productId": p.Key,
	})
}

func (s *Server) deleteProduct(c *gin.Context) {
	key := c.Param("productId")
	if err := s.svc.Catalog.Delete(c, key); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Product successfully deleted",
		"productId": key,
	})
}

func (s *Server) setProductStatus(c *gin.Context) {
	var req statusReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	if req.Stock == nil && req.IsActive == nil {
		badRequest(c, "stock or isActive is required")
		return
	}
	p, err := s.svc.Catalog.SetStatus(c, c.Param("productId"), req.Stock, req.IsActive)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Product status successfully updated",
		"productId": p.Key,
		"stock":     p.Stock,
		"isActive":  p.Active,
	})
}

func (s *Server) getProduct(c *gin.Context) {
	p, err := s.svc.Catalog.Get(c, c.Param("productId"))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) searchProducts(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			badRequest(c, "limit must be a positive number")
			return
		}
		limit = n
	}
	products, err := s.svc.Catalog.Search(c, c.Query("q"), limit)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}

func (s *Server) dashboard(c *gin.Context) {
	products, err := s.svc.Catalog.Dashboard(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "products": products})
}
