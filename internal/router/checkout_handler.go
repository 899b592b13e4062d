package router

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adiretotes/store-api/pkg/global"
	"github.com/adiretotes/store-api/pkg/models"
)

// BeginCheckout turns the caller's cart into a pending order and
// returns the gateway redirect for it.
func (a *API) BeginCheckout(c *gin.Context) {
	session := currentSession(c)

	result, err := a.Checkout.BeginCheckout(c.Request.Context(), session.UserID, session.Email)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrEmptyCart):
			c.JSON(http.StatusBadRequest, global.ErrorResponse("Cart is empty", nil))
		case errors.Is(err, models.ErrInsufficientStock):
			c.JSON(http.StatusConflict, global.ErrorResponse("Not enough stock to complete checkout", []global.ValidationError{
				{Field: "cart", Message: err.Error(), Code: "insufficient_stock"},
			}))
		case errors.Is(err, models.ErrProductNotFound):
			c.JSON(http.StatusConflict, global.ErrorResponse("A cart item is no longer available", nil))
		case errors.Is(err, models.ErrGateway):
			log.Printf("Checkout init failed for %s: %v", session.UserID, err)
			c.JSON(http.StatusBadGateway, global.ErrorResponse("Payment provider is unavailable, try again", nil))
		default:
			log.Printf("Checkout failed for %s: %v", session.UserID, err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Checkout failed", nil))
		}
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(result))
}

// VerifyPayment is the client-side confirmation path: the frontend
// lands back from the gateway and asks us to reconcile its reference.
// It runs the same verification the webhook does.
func (a *API) VerifyPayment(c *gin.Context) {
	var req struct {
		Reference string `json:"reference" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Reference is required", []global.ValidationError{
			{Field: "reference", Message: err.Error(), Code: "required"},
		}))
		return
	}

	outcome, err := a.Reconciler.Reconcile(c.Request.Context(), req.Reference)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrOrderNotFound):
			c.JSON(http.StatusNotFound, global.ErrorResponse("No order for this reference", nil))
		case errors.Is(err, models.ErrGateway):
			c.JSON(http.StatusBadGateway, global.ErrorResponse("Could not verify payment with the provider", nil))
		default:
			log.Printf("Verify payment failed for %s: %v", req.Reference, err)
			c.JSON(http.StatusInternalServerError, global.ErrorResponse("Payment verification failed", nil))
		}
		return
	}

	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{
		"verified":  outcome.Status == models.OrderStatusPaid,
		"reference": outcome.Reference,
		"status":    outcome.Status,
	}))
}
