package router

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"

	"github.com/adiretotes/store-api/pkg/global"
	"github.com/adiretotes/store-api/pkg/models"
)

func (a *API) Signup(c *gin.Context) {
	var req models.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid signup payload", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "validation"},
		}))
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to create account", nil))
		return
	}

	user := &models.User{
		Email:    req.Email,
		Password: string(hash),
		Name:     req.Name,
	}
	user.SetTimestamps()

	created, err := a.Users.Create(c.Request.Context(), user)
	if err != nil {
		if errors.Is(err, models.ErrDuplicateEmail) {
			c.JSON(http.StatusConflict, global.ErrorResponse("An account with this email already exists", []global.ValidationError{
				{Field: "email", Message: "Email is already registered", Code: "duplicate"},
			}))
			return
		}
		log.Printf("Signup failed for %s: %v", req.Email, err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to create account", nil))
		return
	}

	c.JSON(http.StatusCreated, global.SuccessResponse(created))
}

func (a *API) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, global.ErrorResponse("Invalid login payload", []global.ValidationError{
			{Field: "body", Message: err.Error(), Code: "validation"},
		}))
		return
	}

	ctx := c.Request.Context()
	user, err := a.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		// Same response as a wrong password so the endpoint does not
		// leak which emails exist.
		c.JSON(http.StatusUnauthorized, global.ErrorResponse("Invalid email or password", nil))
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		c.JSON(http.StatusUnauthorized, global.ErrorResponse("Invalid email or password", nil))
		return
	}

	token := uuid.NewString()
	session := models.Session{UserID: user.ID.Hex(), Email: user.Email, IsAdmin: user.IsAdmin}
	if err := a.Sessions.Save(ctx, token, session); err != nil {
		log.Printf("Failed to save session for %s: %v", user.Email, err)
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to start session", nil))
		return
	}

	// Fold the guest cart into the account cart. Login still succeeds
	// if the merge fails; the guest cart stays in Redis for a retry.
	if req.SessionID != "" {
		if err := a.Cart.MergeGuest(ctx, req.SessionID, session.UserID); err != nil {
			log.Printf("Guest cart merge failed for session %s: %v", req.SessionID, err)
		}
	}

	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{
		"token": token,
		"user":  user,
	}))
}

func (a *API) Logout(c *gin.Context) {
	if err := a.Sessions.Delete(c.Request.Context(), bearerToken(c)); err != nil {
		c.JSON(http.StatusInternalServerError, global.ErrorResponse("Failed to end session", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(gin.H{"status": "logged out"}))
}

func (a *API) CurrentUser(c *gin.Context) {
	session := currentSession(c)
	id, err := bson.ObjectIDFromHex(session.UserID)
	if err != nil {
		c.JSON(http.StatusUnauthorized, global.ErrorResponse("Invalid session", nil))
		return
	}
	user, err := a.Users.GetByID(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusNotFound, global.ErrorResponse("Account not found", nil))
		return
	}
	c.JSON(http.StatusOK, global.SuccessResponse(user))
}
