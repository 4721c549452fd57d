package identity

import (
	"net/http"
	"strings"

	dmn "github.com/beka-birhanu/vinom-nav/domain"
	"github.com/beka-birhanu/vinom-nav/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// ContextOperatorClaims is the key used to store operator claims in the Gin context.
	ContextOperatorClaims = "operatorClaims"
)

// Authoriz rejects requests without a valid bearer token and stores the
// token claims under ContextOperatorClaims.
func Authoriz(ts i.Tokenizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Retrieve the access token from the Authorization header.
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Status(http.StatusUnauthorized) // No token found in the header.
			c.Abort()
			return
		}

		// Split the "Bearer" prefix from the token.
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.Status(http.StatusUnauthorized) // Malformed Authorization header.
			c.Abort()
			return
		}

		claims, err := ts.Decode(parts[1])
		if err != nil {
			c.Status(http.StatusUnauthorized)
			c.Abort()
			return
		}

		// Attach operator claims to the request context for further use.
		c.Set(ContextOperatorClaims, claims)
		c.Next()
	}
}

// OperatorID returns the operator id from the claims set by Authoriz, or uuid.Nil.
func OperatorID(c *gin.Context) uuid.UUID {
	value, ok := c.Get(ContextOperatorClaims)
	if !ok {
		return uuid.Nil
	}
	claims, ok := value.(map[string]interface{})
	if !ok {
		return uuid.Nil
	}
	id, err := dmn.OperatorIDFromClaims(claims)
	if err != nil {
		return uuid.Nil
	}
	return id
}
