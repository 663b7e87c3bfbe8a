package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Roles understood by the service. Tokens are minted by the identity
// provider; this service only verifies and reads them.
const (
	RoleTeacher = "teacher"
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

const identityKey = "identity"

// Identity is the authenticated caller extracted from a bearer token.
type Identity struct {
	ID   uuid.UUID
	Role string
}

// Auth verifies the Authorization bearer token and stores the caller's
// identity in the request context. Requests without a valid token are
// rejected with 401.
func Auth(secret []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "authorization token not provided")
			return
		}

		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			abortUnauthorized(c, "invalid authorization header format")
			return
		}

		token, err := jwt.Parse(parts[1], func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
			}
			return secret, nil
		})
		if err != nil || !token.Valid {
			abortUnauthorized(c, "invalid or expired token")
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			abortUnauthorized(c, "invalid token claims")
			return
		}

		subject, err := claims.GetSubject()
		if err != nil || subject == "" {
			abortUnauthorized(c, "token subject missing")
			return
		}
		id, err := uuid.Parse(subject)
		if err != nil {
			abortUnauthorized(c, "token subject is not a valid identifier")
			return
		}

		role, _ := claims["role"].(string)
		if role == "" {
			role = RoleTeacher
		}

		c.Set(identityKey, Identity{ID: id, Role: role})
		c.Next()
	}
}

// SetIdentity stores an identity on the context directly, bypassing token
// verification. Intended for handler tests.
func SetIdentity(c *gin.Context, identity Identity) {
	c.Set(identityKey, identity)
}

// IdentityFrom returns the authenticated identity stored by Auth.
func IdentityFrom(c *gin.Context) (Identity, bool) {
	value, exists := c.Get(identityKey)
	if !exists {
		return Identity{}, false
	}
	identity, ok := value.(Identity)
	return identity, ok
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
}
