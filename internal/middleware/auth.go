package middleware

import (
	"errors"
	"net/http"
	"os"
	"strings"
	"time"

	"crm-backend/internal/model"
	"crm-backend/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role tags embedded in session tokens. An endpoint accepts exactly one role.
const (
	RoleAdmin      = "admin"
	RoleSuperAdmin = "superAdmin"
)

// TokenLifetime is how long an issued session token stays valid.
const TokenLifetime = 7 * 24 * time.Hour

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

// GenerateToken mints a signed session token embedding the subject id, role
// tag and a 7-day expiry.
func GenerateToken(subjectID uuid.UUID, role string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  subjectID.String(),
		"role": role,
		"exp":  time.Now().Add(TokenLifetime).Unix(),
	})
	return token.SignedString(GetJWTSecret())
}

// ParseToken validates signature and expiry, returning the embedded subject
// id and role tag.
func ParseToken(tokenString string) (uuid.UUID, string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return GetJWTSecret(), nil
	})
	if err != nil || !token.Valid {
		if err == nil {
			err = errors.New("invalid token")
		}
		return uuid.Nil, "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, "", errors.New("invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	subjectID, err := uuid.Parse(sub)
	if err != nil {
		return uuid.Nil, "", errors.New("invalid subject in token")
	}

	role, _ := claims["role"].(string)
	if role == "" {
		return uuid.Nil, "", errors.New("role not found in token")
	}

	return subjectID, role, nil
}

// authDB holds the database reference used to resolve token subjects — set via InitAuthMiddleware
var authDB *gorm.DB

// InitAuthMiddleware sets the DB reference for RequireRole subject resolution
func InitAuthMiddleware(db *gorm.DB) {
	authDB = db
}

// ResolveSubject checks that the token subject still exists in the store
// matching the role tag, so tokens of deleted accounts stop working before
// expiry. Shared by RequireRole and the WebSocket upgrade path.
func ResolveSubject(subjectID uuid.UUID, role string) error {
	if authDB == nil {
		return errors.New("auth middleware not initialized")
	}
	switch role {
	case RoleAdmin:
		var admin model.Admin
		return authDB.First(&admin, "id = ?", subjectID).Error
	case RoleSuperAdmin:
		var superAdmin model.SuperAdmin
		return authDB.First(&superAdmin, "id = ?", subjectID).Error
	default:
		return errors.New("unknown role")
	}
}

// RequireRole validates the Bearer token, checks the embedded role tag equals
// requiredRole and resolves the subject against the matching store. A subject
// deleted since issuance is rejected. On success the subject id is attached to
// the request context as "adminID" or "superAdminID".
func RequireRole(requiredRole string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
			return
		}

		subjectID, role, err := ParseToken(parts[1])
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token: "+err.Error()))
			return
		}

		if role != requiredRole {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token role"))
			return
		}

		if authDB == nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Auth middleware not initialized"))
			return
		}

		if err := ResolveSubject(subjectID, requiredRole); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			return
		}

		switch requiredRole {
		case RoleAdmin:
			c.Set("adminID", subjectID.String())
		case RoleSuperAdmin:
			c.Set("superAdminID", subjectID.String())
		}

		c.Set("userRole", role)
		c.Next()
	}
}
