package main

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"bankbook/models"
	"bankbook/pkg/ledger"
)

func setupRoutes(r *gin.Engine) {
	r.Use(requestIDMiddleware())

	r.POST("/api/users/register", registerHandler)
	r.POST("/api/users/login", loginHandler)
	r.POST("/api/users/refresh", refreshHandler)

	authGroup := r.Group("")
	authGroup.Use(jwtAuthMiddleware())
	authGroup.POST("/api/users/logout", logoutHandler)
	authGroup.GET("/api/users/me", meHandler)
	authGroup.PUT("/api/users/me", updateMeHandler)
	authGroup.POST("/api/users/password", passwordChangeHandler)
	authGroup.DELETE("/api/users/me", deactivateHandler)

	authGroup.GET("/api/accounts", listAccountsHandler)
	authGroup.POST("/api/accounts", createAccountHandler)
	authGroup.GET("/api/accounts/:id", getAccountHandler)
	authGroup.PUT("/api/accounts/:id", updateAccountHandler)
	authGroup.DELETE("/api/accounts/:id", deleteAccountHandler)

	authGroup.GET("/api/transactions", listTransactionsHandler)
	authGroup.POST("/api/transactions", createTransactionHandler)
	authGroup.GET("/api/transactions/:id", getTransactionHandler)
	authGroup.PUT("/api/transactions/:id", updateTransactionHandler)
	authGroup.DELETE("/api/transactions/:id", deleteTransactionHandler)
}

// requestIDMiddleware tags every request with an id for log correlation.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
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
		sub, ok := claims["sub"].(float64)
		if !ok || sub <= 0 {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid claims"})
			c.Abort()
			return
		}
		c.Set("user_id", uint(sub))
		c.Next()
	}
}

// getUserFromContext fetches the currently authenticated, still-active user
// using the id set by jwtAuthMiddleware.
func getUserFromContext(c *gin.Context) (*models.User, bool) {
	idVal, _ := c.Get("user_id")
	id, ok := idVal.(uint)
	if !ok {
		return nil, false
	}
	var user models.User
	if err := db.Where("id = ? AND is_active = ?", id, true).First(&user).Error; err != nil {
		return nil, false
	}
	return &user, true
}

// writeLedgerError translates the domain error taxonomy onto HTTP statuses.
func writeLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, ledger.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, ledger.ErrInvalidAmount):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "transaction_amount"})
	case errors.Is(err, ledger.ErrInvalidBankCode):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "bank_code"})
	case errors.Is(err, ledger.ErrInvalidAccountType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "account_type"})
	case errors.Is(err, ledger.ErrInvalidTransactionType):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "transaction_type"})
	case errors.Is(err, ledger.ErrInvalidMethod):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "transaction_method"})
	case errors.Is(err, ledger.ErrInsufficientFunds):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": "transaction_amount"})
	case errors.Is(err, ledger.ErrImmutableTransaction):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ledger.ErrDuplicateAccountNumber):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "field": "account_number"})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "temporarily unavailable, retry"})
	}
}

func userJSON(u *models.User) gin.H {
	return gin.H{
		"id":           u.ID,
		"email":        u.Email,
		"nickname":     u.Nickname,
		"name":         u.Name,
		"phone_number": u.PhoneNumber,
	}
}

func registerHandler(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required,email"`
		Nickname    string `json:"nickname" binding:"required"`
		Name        string `json:"name"`
		PhoneNumber string `json:"phone_number"`
		Password    string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := RegisterUser(req.Email, req.Nickname, req.Name, req.PhoneNumber, req.Password)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	}
	token, err := issueAccessToken(user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	if err := issueRefreshCookie(c, user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create refresh token"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"user": userJSON(user), "tokens": gin.H{"access": token}})
}

func loginHandler(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	user, err := Authenticate(req.Email, req.Password)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}
	token, err := issueAccessToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	if err := issueRefreshCookie(c, user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "login successful", "token": token})
}

func issueAccessToken(user *models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   float64(user.ID),
		"email": user.Email,
		"exp":   time.Now().Add(cfg.AccessTokenTTL).Unix(),
	})
	return token.SignedString(jwtSecret)
}

// issueRefreshCookie creates and stores a hashed refresh token and delivers
// the raw value in an HttpOnly cookie, never in the response body.
func issueRefreshCookie(c *gin.Context, userID uint) error {
	raw, err := createAndStoreRefreshToken(userID)
	if err != nil {
		return err
	}
	c.SetCookie(cfg.RefreshCookieName, raw, int(cfg.RefreshTokenTTL.Seconds()), "/", "", cfg.RefreshCookieSecure, true)
	return nil
}

// createAndStoreRefreshToken generates a random refresh token, stores its hash with expiry and returns the raw token string
func createAndStoreRefreshToken(userID uint) (string, error) {
	// generate random 32-byte token (hex)
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	token := hex.EncodeToString(b)
	// hash for storage
	h := sha256.Sum256([]byte(token))
	th := hex.EncodeToString(h[:])
	rt := models.RefreshToken{UserID: userID, TokenHash: th, ExpiresAt: time.Now().Add(cfg.RefreshTokenTTL)}
	if err := db.Create(&rt).Error; err != nil {
		return "", err
	}
	return token, nil
}

// helper to find refresh token record by raw token string
func findRefreshTokenByRaw(token string) (*models.RefreshToken, error) {
	h := sha256.Sum256([]byte(token))
	th := hex.EncodeToString(h[:])
	var rt models.RefreshToken
	if err := db.Where("token_hash = ?", th).First(&rt).Error; err != nil {
		return nil, err
	}
	return &rt, nil
}

// refreshHandler exchanges the refresh cookie for a new access token and rotates the refresh token
func refreshHandler(c *gin.Context) {
	raw, err := c.Cookie(cfg.RefreshCookieName)
	if err != nil || raw == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing refresh token"})
		return
	}
	rt, err := findRefreshTokenByRaw(raw)
	if err != nil || rt.Revoked || time.Now().After(rt.ExpiresAt) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired refresh token"})
		return
	}
	var user models.User
	if err := db.Where("id = ? AND is_active = ?", rt.UserID, true).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	token, err := issueAccessToken(&user)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate token"})
		return
	}
	// rotate refresh token: revoke existing and create new one
	db.Model(&models.RefreshToken{}).Where("id = ?", rt.ID).Update("revoked", true)
	if err := issueRefreshCookie(c, user.ID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to rotate refresh token"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

// logoutHandler revokes the refresh cookie's token (best effort) and clears
// the cookie. Revocation failure never blocks the logout response.
func logoutHandler(c *gin.Context) {
	if raw, err := c.Cookie(cfg.RefreshCookieName); err == nil && raw != "" {
		if rt, err := findRefreshTokenByRaw(raw); err == nil {
			db.Model(&models.RefreshToken{}).Where("id = ?", rt.ID).Update("revoked", true)
		}
	}
	c.SetCookie(cfg.RefreshCookieName, "", -1, "/", "", cfg.RefreshCookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func meHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	c.JSON(http.StatusOK, userJSON(user))
}

func updateMeHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		Nickname    *string `json:"nickname"`
		Name        *string `json:"name"`
		PhoneNumber *string `json:"phone_number"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	updates := map[string]any{}
	if req.Nickname != nil {
		updates["nickname"] = *req.Nickname
	}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.PhoneNumber != nil {
		updates["phone_number"] = *req.PhoneNumber
	}
	if len(updates) > 0 {
		if err := db.Model(user).Updates(updates).Error; err != nil {
			if isUniqueConstraintError(err) {
				c.JSON(http.StatusConflict, gin.H{"error": "nickname already taken"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
			return
		}
	}
	c.JSON(http.StatusOK, userJSON(user))
}

func passwordChangeHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := ChangePassword(user, req.CurrentPassword, req.NewPassword); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	// force re-login: revoke all refresh tokens for the user, best effort
	db.Model(&models.RefreshToken{}).Where("user_id = ?", user.ID).Update("revoked", true)
	c.SetCookie(cfg.RefreshCookieName, "", -1, "/", "", cfg.RefreshCookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "password changed, please log in again"})
}

// deactivateHandler soft-deactivates the user account; records stay for audit.
func deactivateHandler(c *gin.Context) {
	user, ok := getUserFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return
	}
	if err := db.Model(user).Update("is_active", false).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "deactivation failed"})
		return
	}
	db.Model(&models.RefreshToken{}).Where("user_id = ?", user.ID).Update("revoked", true)
	c.SetCookie(cfg.RefreshCookieName, "", -1, "/", "", cfg.RefreshCookieSecure, true)
	c.JSON(http.StatusOK, gin.H{"message": "account deactivated"})
}
