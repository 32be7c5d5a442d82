package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"civicconnect-be/middlewares"
	"civicconnect-be/models"
	"civicconnect-be/policy"
	"civicconnect-be/services"
)

// AuthService is the identity side of the API.
type AuthService interface {
	SignUp(ctx context.Context, in services.SignUpInput) (*models.User, policy.Role, error)
	SignIn(ctx context.Context, email, password string) (*models.User, string, error)
	SignOut(ctx context.Context, token string) error
	CurrentUser(ctx context.Context, viewer policy.Viewer) (*models.User, error)
	TokenTTL() time.Duration
}

// CookieSettings controls the auth_token cookie.
type CookieSettings struct {
	Production bool
	Domain     string
}

type AuthController struct {
	auth    AuthService
	cookies CookieSettings
}

func NewAuthController(auth AuthService, cookies CookieSettings) *AuthController {
	return &AuthController{auth: auth, cookies: cookies}
}

// RegisterUser handles citizen and authority registration
func (ac *AuthController) RegisterUser(c *gin.Context) {
	var input struct {
		Email           string `json:"email" binding:"required,email"`
		Password        string `json:"password" binding:"required"`
		ConfirmPassword string `json:"confirm_password" binding:"required"`
		DisplayName     string `json:"display_name" binding:"max=100"`
		Role            string `json:"role"`
		AccessCode      string `json:"access_code"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	user, role, err := ac.auth.SignUp(c.Request.Context(), services.SignUpInput{
		Email:           input.Email,
		Password:        input.Password,
		ConfirmPassword: input.ConfirmPassword,
		DisplayName:     input.DisplayName,
		Role:            input.Role,
		AccessCode:      input.AccessCode,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":           user.ID,
		"email":        user.Email,
		"display_name": user.DisplayName,
		"role":         role.String(),
		"created_at":   user.CreatedAt,
	})
}

// LoginUser handles user login
func (ac *AuthController) LoginUser(c *gin.Context) {
	var input struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		respondBindError(c, err)
		return
	}

	user, token, err := ac.auth.SignIn(c.Request.Context(), input.Email, input.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	ac.setTokenCookie(c, token, int(ac.auth.TokenTTL().Seconds()))

	c.JSON(http.StatusOK, gin.H{
		"id":           user.ID,
		"email":        user.Email,
		"display_name": user.DisplayName,
		"token":        token,
	})
}

// GetMe returns the current identity, or the anonymous viewer.
func (ac *AuthController) GetMe(c *gin.Context) {
	viewer := middlewares.ViewerFrom(c)
	if viewer.IsAnonymous() {
		c.JSON(http.StatusOK, gin.H{"authenticated": false, "role": viewer.Role.String()})
		return
	}

	user, err := ac.auth.CurrentUser(c.Request.Context(), viewer)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"id":            user.ID,
		"email":         user.Email,
		"display_name":  user.DisplayName,
		"role":          viewer.Role.String(),
		"scope":         policy.SelectScope(viewer).String(),
		"created_at":    user.CreatedAt,
	})
}

// LogoutUser revokes the session token and clears the auth_token cookie
func (ac *AuthController) LogoutUser(c *gin.Context) {
	if err := ac.auth.SignOut(c.Request.Context(), middlewares.TokenFrom(c)); err != nil {
		respondError(c, err)
		return
	}

	ac.ClearTokenCookie(c)
	c.JSON(http.StatusOK, gin.H{
		"message": "Logged out successfully",
	})
}

// ClearTokenCookie expires the auth_token cookie.
func (ac *AuthController) ClearTokenCookie(c *gin.Context) {
	ac.setTokenCookie(c, "", -1)
}

func (ac *AuthController) setTokenCookie(c *gin.Context, value string, maxAge int) {
	domain := ac.cookies.Domain
	// For production, don't set domain to allow cross-origin cookies
	if ac.cookies.Production {
		domain = ""
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     middlewares.TokenCookie,
		Value:    value,
		MaxAge:   maxAge,
		Path:     "/",
		Domain:   domain,
		Secure:   ac.cookies.Production,
		HttpOnly: true,
		SameSite: http.SameSiteNoneMode,
	})
}
