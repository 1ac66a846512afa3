package main

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	authsessions "github.com/joaofns/authsessions"
	"github.com/joaofns/authsessions/metrics/export/prometheus"
)

func newRouter(engine *authsessions.Engine, exporter *prometheus.PrometheusExporter, proxyHeader string, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery(), requestLog(logger), clientIP(proxyHeader))

	r.POST("/login", loginHandler(engine))
	r.POST("/refresh", refreshHandler(engine))
	r.POST("/users", createUserHandler(engine))
	r.GET("/validate", validateHandler(engine))
	r.GET("/healthz", healthHandler(engine))
	r.GET("/metrics", gin.WrapH(exporter.Handler()))

	authed := r.Group("/", authGuard(engine))
	authed.POST("/logout", logoutHandler(engine))
	authed.POST("/logout/all", logoutAllHandler(engine))
	authed.PUT("/users/password", changePasswordHandler(engine))

	return r
}

/*
====================================
MIDDLEWARE
====================================
*/

func requestLog(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Info("request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

func clientIP(proxyHeader string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if proxyHeader != "" {
			if forwarded := c.GetHeader(proxyHeader); forwarded != "" {
				ip = strings.TrimSpace(strings.Split(forwarded, ",")[0])
			}
		}
		c.Request = c.Request.WithContext(authsessions.WithClientIP(c.Request.Context(), ip))
		c.Next()
	}
}

func authGuard(engine *authsessions.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		const bearer = "Bearer "

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, bearer) || header == bearer {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		claims, err := engine.ParseToken(header[len(bearer):])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		ctx := authsessions.WithCaller(c.Request.Context(), claims.Subject, claims.Email)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

/*
====================================
HANDLERS
====================================
*/

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func loginHandler(engine *authsessions.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req loginRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username and password required"})
			return
		}

		res, err := engine.Login(c.Request.Context(), req.Username, req.Password)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, tokenResponse{AccessToken: res.AccessToken, RefreshToken: res.RefreshToken})
	}
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken" binding:"required"`
}

func refreshHandler(engine *authsessions.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "refreshToken required"})
			return
		}

		res, err := engine.RefreshToken(c.Request.Context(), req.RefreshToken)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, tokenResponse{AccessToken: res.AccessToken, RefreshToken: res.RefreshToken})
	}
}

func logoutHandler(engine *authsessions.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req refreshRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "refreshToken required"})
			return
		}

		ok, err := engine.Logout(c.Request.Context(), req.RefreshToken)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"revoked": ok})
	}
}

func logoutAllHandler(engine *authsessions.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		ok, err := engine.MassLogout(c.Request.Context())
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"revoked": ok})
	}
}

func validateHandler(engine *authsessions.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "token required"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"valid": engine.ValidateToken(token)})
	}
}

type createUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func createUserHandler(engine *authsessions.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createUserRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username, email, and password required"})
			return
		}

		if err := engine.CreateAccount(c.Request.Context(), req.Username, req.Email, req.Password); err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"username": req.Username})
	}
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

func changePasswordHandler(engine *authsessions.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req changePasswordRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "oldPassword and newPassword required"})
			return
		}

		if err := engine.ChangePassword(c.Request.Context(), req.OldPassword, req.NewPassword); err != nil {
			writeError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func healthHandler(engine *authsessions.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := engine.Health(c.Request.Context())
		code := http.StatusOK
		if !status.CacheAvailable {
			code = http.StatusServiceUnavailable
		}
		c.JSON(code, gin.H{
			"cacheAvailable": status.CacheAvailable,
			"cacheLatencyMs": status.CacheLatency.Milliseconds(),
		})
	}
}

// writeError maps engine sentinels to HTTP statuses. Authentication failures
// stay generic so callers cannot probe which factor failed.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, authsessions.ErrLoginRateLimited),
		errors.Is(err, authsessions.ErrRefreshRateLimited):
		c.JSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts"})
	case errors.Is(err, authsessions.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
	case errors.Is(err, authsessions.ErrIdentityRequired):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
	case errors.Is(err, authsessions.ErrAccountExists):
		c.JSON(http.StatusConflict, gin.H{"error": "account already exists"})
	case errors.Is(err, authsessions.ErrPasswordReuse):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "new password must differ from the current one"})
	case errors.Is(err, authsessions.ErrValidationFailure):
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request field"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
