package main

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"finapi/models"
	"finapi/pkg/transactions"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func setupRoutes(r *gin.Engine) {
	userLimiter := newLimiter(cfg.UserRate)
	anonLimiter := newLimiter(cfg.AnonRate)

	api := r.Group("/api")
	api.POST("/register", anonRateLimit(anonLimiter), registerHandler)
	api.POST("/token", anonRateLimit(anonLimiter), tokenHandler)
	api.POST("/token/refresh", anonRateLimit(anonLimiter), refreshHandler)
	api.POST("/token/revoke", anonRateLimit(anonLimiter), revokeRefreshHandler)

	// Authentication runs before the quota check so unauthenticated
	// requests are rejected with 401 and never consume quota.
	authGroup := api.Group("")
	authGroup.Use(jwtAuthMiddleware(), userRateLimit(userLimiter))
	authGroup.GET("/me", meHandler)
	authGroup.GET("/transactions", listTransactionsHandler)
	authGroup.POST("/transactions", createTransactionHandler)
	authGroup.GET("/transactions/:id", getTransactionHandler)
	authGroup.PUT("/transactions/:id", updateTransactionHandler)
	authGroup.PATCH("/transactions/:id", partialUpdateTransactionHandler)
	authGroup.DELETE("/transactions/:id", deleteTransactionHandler)

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}

func jwtAuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || len(authHeader) < 8 || authHeader[:7] != "Bearer " {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing or invalid Authorization header"})
			c.Abort()
			return
		}
		tokenString := authHeader[7:]
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrInvalidKeyType
			}
			return jwtSecret, nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		uid, ok := claims["user_id"].(float64)
		if !ok || uid <= 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		c.Set("userID", uint(uid))
		c.Next()
	}
}

// callerID returns the authenticated user id set by jwtAuthMiddleware.
func callerID(c *gin.Context) (uint, bool) {
	v, ok := c.Get("userID")
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}

// parseIDParam reads the :id path segment. A malformed id behaves like a
// missing record.
func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return 0, false
	}
	return uint(id), true
}

// writeTxError maps access-service errors onto HTTP responses: a
// field→messages map for validation failures, 404 for anything the
// caller is not allowed to see.
func writeTxError(c *gin.Context, err error) {
	var verr transactions.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, verr)
	case errors.Is(err, transactions.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		logger.Errorf("transaction operation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// registerHandler creates a new user account.
// @Summary  Register a user
// @Tags     auth
// @Accept   json
// @Produce  json
// @Success  200 {object} map[string]string
// @Router   /register [post]
func registerHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := RegisterUser(req.Username, req.Password); err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "user registered successfully"})
}

// tokenHandler exchanges credentials for an access/refresh token pair.
// @Summary  Obtain token pair
// @Tags     auth
// @Accept   json
// @Produce  json
// @Success  200 {object} map[string]string
// @Router   /token [post]
func tokenHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := Authenticate(req.Username, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	access, err := issueAccessToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	refresh, err := createAndStoreRefreshToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access, "refresh": refresh})
}

// refreshHandler exchanges a refresh token for a new access token and
// rotates the refresh token.
// @Summary  Refresh access token
// @Tags     auth
// @Accept   json
// @Produce  json
// @Success  200 {object} map[string]string
// @Router   /token/refresh [post]
func refreshHandler(c *gin.Context) {
	var req struct {
		Refresh string `json:"refresh" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := findRefreshTokenByRaw(req.Refresh)
	if err != nil || rt.Revoked || time.Now().After(rt.ExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}
	access, err := issueAccessToken(rt.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	// rotate: revoke the presented token, hand out a fresh one
	db.Model(&models.RefreshToken{}).Where("id = ?", rt.ID).Update("revoked", true)
	refresh, err := createAndStoreRefreshToken(rt.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rotate refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access, "refresh": refresh})
}

// revokeRefreshHandler revokes a given refresh token (useful on logout)
func revokeRefreshHandler(c *gin.Context) {
	var req struct {
		Refresh string `json:"refresh" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rt, err := findRefreshTokenByRaw(req.Refresh)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "refresh token not found"})
		return
	}
	rt.Revoked = true
	if err := db.Save(rt).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to revoke token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "refresh token revoked"})
}

func meHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var user models.User
	if err := db.First(&user, caller).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": user.ID, "username": user.Username})
}

// listTransactionsHandler returns the caller's transactions.
// @Summary  List transactions
// @Tags     transactions
// @Produce  json
// @Security BearerAuth
// @Success  200 {array} transactions.Representation
// @Router   /transactions [get]
func listTransactionsHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	items, err := txService.List(c.Request.Context(), caller)
	if err != nil {
		writeTxError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions.SerializeList(items))
}

// createTransactionHandler records a new transaction owned by the caller.
// @Summary  Create a transaction
// @Tags     transactions
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    transaction body transactions.Input true "amount, category, optional description"
// @Success  201 {object} transactions.Representation
// @Failure  400 {object} transactions.ValidationError
// @Router   /transactions [post]
func createTransactionHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var in transactions.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	t, err := txService.Create(c.Request.Context(), caller, in)
	if err != nil {
		writeTxError(c, err)
		return
	}
	c.JSON(http.StatusCreated, transactions.Serialize(t))
}

// getTransactionHandler retrieves one of the caller's transactions.
// @Summary  Retrieve a transaction
// @Tags     transactions
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "transaction id"
// @Success  200 {object} transactions.Representation
// @Failure  404 {object} map[string]string
// @Router   /transactions/{id} [get]
func getTransactionHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	t, err := txService.Get(c.Request.Context(), caller, id)
	if err != nil {
		writeTxError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions.Serialize(t))
}

// updateTransactionHandler replaces a transaction's writable fields.
// @Summary  Replace a transaction
// @Tags     transactions
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "transaction id"
// @Param    transaction body transactions.Input true "amount, category, optional description"
// @Success  200 {object} transactions.Representation
// @Router   /transactions/{id} [put]
func updateTransactionHandler(c *gin.Context) {
	applyUpdate(c, false)
}

// partialUpdateTransactionHandler updates only the supplied fields.
// @Summary  Partially update a transaction
// @Tags     transactions
// @Accept   json
// @Produce  json
// @Security BearerAuth
// @Param    id path int true "transaction id"
// @Param    transaction body transactions.Input true "any writable subset"
// @Success  200 {object} transactions.Representation
// @Router   /transactions/{id} [patch]
func partialUpdateTransactionHandler(c *gin.Context) {
	applyUpdate(c, true)
}

func applyUpdate(c *gin.Context, partial bool) {
	caller, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var in transactions.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}
	t, err := txService.Update(c.Request.Context(), caller, id, in, partial)
	if err != nil {
		writeTxError(c, err)
		return
	}
	c.JSON(http.StatusOK, transactions.Serialize(t))
}

// deleteTransactionHandler removes one of the caller's transactions.
// @Summary  Delete a transaction
// @Tags     transactions
// @Security BearerAuth
// @Param    id path int true "transaction id"
// @Success  204
// @Failure  404 {object} map[string]string
// @Router   /transactions/{id} [delete]
func deleteTransactionHandler(c *gin.Context) {
	caller, ok := callerID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := txService.Delete(c.Request.Context(), caller, id); err != nil {
		writeTxError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
