package router

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/adiretotes/store-api/pkg/global"
	"github.com/adiretotes/store-api/pkg/models"
	"github.com/adiretotes/store-api/pkg/mongo"
)

func (a *API) GetAllStories(c *gin.Context) {
	stories, err := mongo.GetAllStories(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get stories", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(stories))
}

func (a *API) GetStoryByID(c *gin.Context) {
	story, err := mongo.GetStoryByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrStoryNotFound) {
			c.JSON(http.StatusNotFound, global.ErrorResponse("Story not found", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to get story", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(story))
}

func (a *API) HealthCheck(c *gin.Context) {
	if err := mongo.GetDatabase().Client().Ping(c, nil); err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Database connection failed", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(map[string]string{"status": "OK", "database": "Connected"}))
}
