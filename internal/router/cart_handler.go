package router

import (
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adiretotes/store-api/pkg/global"
	"github.com/adiretotes/store-api/pkg/models"
)

func (a *API) GetCart(c *gin.Context) {
	owner := currentOwner(c)
	lines, err := a.Cart.List(c.Request.Context(), owner)
	if err != nil {
		log.Printf("Failed to load cart for %s: %v", owner.ID, err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to load cart", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{
		"items": lines,
		"count": models.TotalQuantity(lines),
	}))
}

func (a *API) AddToCart(c *gin.Context) {
	var req models.AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid cart payload", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "validation"},
		}))
		return
	}

	owner := currentOwner(c)
	if err := a.Cart.Add(c.Request.Context(), owner, req.ProductID, req.Quantity); err != nil {
		a.cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"status": "added"}))
}

func (a *API) UpdateCartLine(c *gin.Context) {
	var req models.UpdateCartLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid cart payload", []global.ValidationError{
			{Field: "quantity", Message: err.Error(), Code: "validation"},
		}))
		return
	}

	owner := currentOwner(c)
	if err := a.Cart.SetQuantity(c.Request.Context(), owner, c.Param("productId"), req.Quantity); err != nil {
		a.cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"status": "updated"}))
}

func (a *API) RemoveFromCart(c *gin.Context) {
	owner := currentOwner(c)
	if err := a.Cart.Remove(c.Request.Context(), owner, c.Param("productId")); err != nil {
		a.cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"status": "removed"}))
}

func (a *API) ClearCart(c *gin.Context) {
	owner := currentOwner(c)
	if err := a.Cart.Clear(c.Request.Context(), owner); err != nil {
		a.cartError(c, err)
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"status": "cleared"}))
}

// StreamCartEvents pushes the owner's cart changes as server-sent
// events until the client disconnects.
func (a *API) StreamCartEvents(c *gin.Context) {
	owner := currentOwner(c)
	ctx := c.Request.Context()

	events, stop := a.Events.Subscribe(ctx, owner.ID)
	defer stop()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent("cart", ev)
			return true
		case <-ctx.Done():
			return false
		}
	})
}

func (a *API) cartError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrProductNotFound):
		c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found", nil))
	case errors.Is(err, models.ErrCartItemNotFound):
		c.JSON(http.StatusNotFound, global.ErrorResponse("Item is not in the cart", nil))
	case errors.Is(err, models.ErrInsufficientStock):
		c.JSON(http.StatusConflict, global.ErrorResponse("Not enough stock for that quantity", []global.ValidationError{
			{Field: "quantity", Message: err.Error(), Code: "insufficient_stock"},
		}))
	default:
		log.Printf("Cart operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Cart operation failed", nil))
	}
}
