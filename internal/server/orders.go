package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	orderdomain "github.com/spinmill/milltrack/internal/order/domain"
)

// ListOrdersWithRealisation feeds the entry flow's order picker.
func (s *Server) ListOrdersWithRealisation(c *gin.Context) {
	orders, err := s.ordersvc.ListWithRealisation(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (s *Server) CreateOrder(c *gin.Context) {
	var req orderdomain.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	order, err := s.ordersvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusCreated, order)
}
