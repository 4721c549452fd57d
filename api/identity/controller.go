package identity

import (
	"errors"
	"net/http"

	dmn "github.com/beka-birhanu/vinom-nav/domain"
	"github.com/beka-birhanu/vinom-nav/service"
	"github.com/beka-birhanu/vinom-nav/service/i"
	"github.com/gin-gonic/gin"
)

// IdentityServer handles HTTP requests related to authentication.
type IdentityServer struct {
	authService i.Authenticator
}

// NewIdentityServer creates a new IdentityServer.
func NewIdentityServer(a i.Authenticator) *IdentityServer {
	return &IdentityServer{
		authService: a,
	}
}

// RegisterPublic registers public routes.
func (c *IdentityServer) RegisterPublic(route *gin.RouterGroup) {
	auth := route.Group("/auth")
	{
		auth.POST("/register", c.registerOperator)
		auth.POST("/login", c.login)
	}
}

// RegisterProtected registers privileged routes.
func (c *IdentityServer) RegisterProtected(route *gin.RouterGroup) {
}

// registerOperator handles operator registration.
func (c *IdentityServer) registerOperator(ctx *gin.Context) {
	var request AuthRequest

	if err := ctx.ShouldBind(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	operator, err := c.authService.Register(request.Username, request.Password)
	switch {
	case err == nil:
	case dmn.IsValidationError(err):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, dmn.ErrUsernameConflict):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		return
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "could not register operator"})
		return
	}

	ctx.JSON(http.StatusCreated, &RegisterResponse{
		ID:       operator.ID.String(),
		Username: operator.Username,
		Message:  "Operator registered successfully",
	})
}

// login handles operator login.
func (c *IdentityServer) login(ctx *gin.Context) {
	var request AuthRequest

	if err := ctx.ShouldBind(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	operator, token, err := c.authService.SignIn(request.Username, request.Password)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrInvalidCredentials) {
			status = http.StatusUnauthorized
		}
		ctx.JSON(status, gin.H{"error": err.Error()})
		return
	}

	response := &AuthResponse{
		ID:       operator.ID.String(),
		Username: operator.Username,
		Token:    token,
	}
	ctx.JSON(http.StatusOK, response)
}
