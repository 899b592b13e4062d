package router

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/adiretotes/store-api/pkg/global"
	"github.com/adiretotes/store-api/pkg/models"
)

func (a *API) GetAllProducts(c *gin.Context) {
	products, err := a.Products.ListActive(c.Request.Context())
	if err != nil {
		log.Printf("Failed to list products: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get products", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(products))
}

func (a *API) GetProductByID(c *gin.Context) {
	product, err := a.Products.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get product", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(product))
}

func (a *API) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid product payload", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "validation"},
		}))
		return
	}

	product := req.ToProduct(uuid.NewString())
	if err := a.Products.Create(c.Request.Context(), product); err != nil {
		log.Printf("Failed to create product: %v", err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to create product", nil))
		return
	}
	c.JSON(http.StatusCreated, global.SuccessResponse(product))
}

func (a *API) UpdateProduct(c *gin.Context) {
	var updates map[string]interface{}
	if err := c.ShouldBindJSON(&updates); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid JSON format", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "json_parse_error"},
		}))
		return
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("No updates provided", nil))
		return
	}
	// Identity and stock are managed elsewhere: stock changes go via
	// the audited stock endpoint so every movement has a ledger row.
	for _, field := range []string{"_id", "id", "stock", "created_at"} {
		delete(updates, field)
	}

	product, err := a.Products.Update(c.Request.Context(), c.Param("id"), bson.M(updates))
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to update product", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(product))
}

func (a *API) SetProductStock(c *gin.Context) {
	var req struct {
		Stock int `json:"stock" binding:"gte=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid stock payload", []global.ValidationError{
			{Field: "stock", Message: err.Error(), Code: "validation"},
		}))
		return
	}

	product, err := a.Products.SetStock(c.Request.Context(), c.Param("id"), req.Stock, currentSession(c).UserID)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to set stock", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(product))
}

func (a *API) DeleteProduct(c *gin.Context) {
	if err := a.Products.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Product not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to delete product", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"status": "deleted"}))
}
