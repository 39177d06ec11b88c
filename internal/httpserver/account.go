package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-cart/internal/domain"
	customersvc "storefront-cart/internal/service/customer"
)

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Name     string `json:"name" binding:"omitempty,max=100"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type userPayload struct {
	User *domain.Customer `json:"user"`
}

type loginPayload struct {
	Token string           `json:"token"`
	User  *domain.Customer `json:"user"`
}

func (h *handlers) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, http.StatusBadRequest, bindingMessage(err))
		return
	}
	customer, err := h.accounts.Signup(c.Request.Context(), customersvc.SignupInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		h.accountError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Account created", userPayload{User: customer})
}

func (h *handlers) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, http.StatusBadRequest, bindingMessage(err))
		return
	}
	customer, token, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		h.accountError(c, err)
		return
	}
	respond(c, http.StatusOK, "Logged in", loginPayload{Token: token, User: customer})
}

func (h *handlers) profile(c *gin.Context) {
	customer, err := h.accounts.Profile(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		h.accountError(c, err)
		return
	}
	respond(c, http.StatusOK, "", userPayload{User: customer})
}

func (h *handlers) accountError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, customersvc.ErrInvalidCredentials):
		abortWithMessage(c, http.StatusUnauthorized, "Invalid email or password")
	case errors.Is(err, customersvc.ErrInvalidEmail):
		abortWithMessage(c, http.StatusBadRequest, "Invalid email")
	case errors.Is(err, customersvc.ErrWeakPassword):
		abortWithMessage(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrAlreadyExists):
		abortWithMessage(c, http.StatusConflict, "Email already registered")
	default:
		h.respondError(c, err, "User not found")
	}
}
