package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/entity"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/service"
)

type addressReq struct {
	Firstname  string `json:"firstname"`
	Lastname   string `json:"lastname"`
	StreetName string `json:"streetName"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type paymentMethodReq struct {
	ProviderPaymentID string `json:"providerPaymentId"`
	Type              string `json:"type"`
	Provider          string `json:"provider"`
	Brand             string `json:"brand"`
	Last4             string `json:"last4"`
	PayerName         string `json:"payerName"`
	IsDefault         bool   `json:"isDefault"`
}

func (s *Server) addAddress(c *gin.Context) {
	var req addressReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	a, err := s.svc.Accounts.AddAddress(c, userID(c), service.NewAddress(req))
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Address created successfully",
		"id":      a.ID,
	})
}

func (s *Server) deleteAddress(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid address id")
		return
	}
	if err := s.svc.Accounts.DeleteAddress(c, userID(c), id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Address deleted successfully",
		"id":      id,
	})
}

func (s *Server) addPaymentMethod(c *gin.Context) {
	var req paymentMethodReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid json")
		return
	}
	p, err := s.svc.Accounts.AddPaymentMethod(c, userID(c), service.NewPaymentMethod{
		ProviderPaymentID: req.ProviderPaymentID,
		Type:              entity.PaymentType(req.Type),
		Provider:          req.Provider,
		Brand:             req.Brand,
		Last4:             req.Last4,
		PayerName:         req.PayerName,
		IsDefault:         req.IsDefault,
	})
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Payment method created successfully",
		"id":      p.ID,
		"label":   p.Label,
	})
}

func (s *Server) deletePaymentMethod(c *gin.Context) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		badRequest(c, "invalid payment method id")
		return
	}
	if err := s.svc.Accounts.DeletePaymentMethod(c, userID(c), id); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Payment deleted successfully",
		"id":      id,
	})
}
