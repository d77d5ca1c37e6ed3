package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/AppSubscriptions/internal/metrics"
	"github.com/router-for-me/AppSubscriptions/internal/models"
	"github.com/router-for-me/AppSubscriptions/internal/resource"
)

// AccountService is the identity collaborator used by the signup and login handlers.
type AccountService interface {
	Signup(ctx context.Context, in resource.Signup) (*models.User, error)
	Login(ctx context.Context, login, password string) (*models.User, *models.Token, error)
	ConfirmEmail(ctx context.Context, key string) error
}

// SignupHandler serves account registration.
type SignupHandler struct {
	accounts AccountService // Identity service creating accounts.
}

// NewSignupHandler constructs a SignupHandler.
func NewSignupHandler(accounts AccountService) *SignupHandler {
	return &SignupHandler{accounts: accounts}
}

// Create registers a user and returns its public shape.
func (h *SignupHandler) Create(c *gin.Context) {
	var body resource.SignupInput
	if errBind := bindJSON(c, &body); errBind != nil {
		WriteError(c, errBind)
		return
	}
	signup, errValidate := resource.ValidateSignup(body)
	if errValidate != nil {
		WriteError(c, errValidate)
		return
	}
	user, errSignup := h.accounts.Signup(c.Request.Context(), signup)
	if errSignup != nil {
		WriteError(c, errSignup)
		return
	}
	metrics.RecordSignup()
	c.JSON(http.StatusCreated, resource.NewUserOutput(user))
}

// ConfirmEmail redeems a confirmation key sent after signup.
func (h *SignupHandler) ConfirmEmail(c *gin.Context) {
	var body resource.ConfirmEmailInput
	if errBind := bindJSON(c, &body); errBind != nil {
		WriteError(c, errBind)
		return
	}
	key, errValidate := resource.ValidateConfirmEmail(body)
	if errValidate != nil {
		WriteError(c, errValidate)
		return
	}
	if errConfirm := h.accounts.ConfirmEmail(c.Request.Context(), key); errConfirm != nil {
		WriteError(c, errConfirm)
		return
	}
	okMessage(c)
}

// LoginHandler exchanges credentials for the user's API token.
type LoginHandler struct {
	accounts AccountService // Identity service verifying credentials.
}

// NewLoginHandler constructs a LoginHandler.
func NewLoginHandler(accounts AccountService) *LoginHandler {
	return &LoginHandler{accounts: accounts}
}

// Create verifies credentials and returns the token with its user.
func (h *LoginHandler) Create(c *gin.Context) {
	var body resource.LoginInput
	if errBind := bindJSON(c, &body); errBind != nil {
		WriteError(c, errBind)
		return
	}
	login, password, errValidate := resource.ValidateLogin(body)
	if errValidate != nil {
		WriteError(c, errValidate)
		return
	}
	user, token, errLogin := h.accounts.Login(c.Request.Context(), login, password)
	metrics.RecordLogin(errLogin == nil)
	if errLogin != nil {
		WriteError(c, errLogin)
		return
	}
	c.JSON(http.StatusOK, resource.NewLoginOutput(token.Key, user))
}
