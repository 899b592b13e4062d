package router

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adiretotes/store-api/pkg/global"
	"github.com/adiretotes/store-api/pkg/models"
)

func (a *API) GetMyOrders(c *gin.Context) {
	session := currentSession(c)
	orders, err := a.Orders.ListByUser(c.Request.Context(), session.UserID)
	if err != nil {
		log.Printf("Failed to list orders for %s: %v", session.UserID, err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get orders", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(orders))
}

func (a *API) GetOrderByReference(c *gin.Context) {
	order, err := a.Orders.GetByReference(c.Request.Context(), c.Param("reference"))
	if err != nil {
		if errors.Is(err, models.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Order not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get order", nil))
		return
	}

	// Orders are private to their buyer; admins can inspect any.
	session := currentSession(c)
	if order.UserID != session.UserID && !session.IsAdmin {
		c.JSON(http.StatusNotFound, global.ErrorResponse("Order not found", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(order))
}

func (a *API) GetMyTransactions(c *gin.Context) {
	session := currentSession(c)
	txns, err := a.Transactions.ListByUser(c.Request.Context(), session.UserID)
	if err != nil {
		log.Printf("Failed to list transactions for %s: %v", session.UserID, err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get transactions", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(txns))
}
