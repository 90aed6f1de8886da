package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/projectpulse-io/projectpulse/internal/modules/serializer"
	"github.com/projectpulse-io/projectpulse/internal/modules/service"
)

type AuthHandler struct {
	svc service.AuthService
}

func NewAuthHandler(s service.AuthService) *AuthHandler {
	return &AuthHandler{svc: s}
}

type RegisterReq struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// Register godoc
//
//	@Summary		Register
//	@Description	Create a user account and issue a session token
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body	RegisterReq	true	"Account fields"
//	@Success		201	{object}	serializer.Response{data=service.AuthOutput}
//	@Failure		400	{object}	serializer.Response
//	@Router			/auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	req := RegisterReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("please provide name, email, and password", err))
		return
	}

	out, err := h.svc.Register(c.Request.Context(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		if ve, ok := service.AsValidationError(err); ok {
			c.JSON(http.StatusBadRequest, serializer.ValidationErr(ve.Fields))
			return
		}
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, serializer.Err(http.StatusBadRequest, err.Error(), nil))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}

	c.JSON(http.StatusCreated, serializer.Response{
		Msg:  "user registered successfully",
		Data: out,
	})
}

type LoginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
//
//	@Summary		Login
//	@Description	Exchange email and password for a session token
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body	LoginReq	true	"Credentials"
//	@Success		200	{object}	serializer.Response{data=service.AuthOutput}
//	@Failure		401	{object}	serializer.Response
//	@Router			/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	req := LoginReq{}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("please provide email and password", err))
		return
	}

	out, err := h.svc.Login(c.Request.Context(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials), errors.Is(err, service.ErrAccountInactive):
			c.JSON(http.StatusUnauthorized, serializer.AuthErr(err.Error()))
		default:
			if ve, ok := service.AsValidationError(err); ok {
				c.JSON(http.StatusBadRequest, serializer.ValidationErr(ve.Fields))
				return
			}
			c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		}
		return
	}

	c.JSON(http.StatusOK, serializer.Response{
		Msg:  "login successful",
		Data: out,
	})
}

// Me godoc
//
//	@Summary		Current user
//	@Description	Return the identity resolved from the bearer token
//	@Tags			auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response
//	@Router			/auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Data: user})
}

// Logout godoc
//
//	@Summary		Logout
//	@Description	Revoke the current session token
//	@Tags			auth
//	@Produce		json
//	@Security		BearerAuth
//	@Success		200	{object}	serializer.Response
//	@Router			/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	raw, ok := c.Get("token")
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	if err := h.svc.Logout(c.Request.Context(), raw.(string)); err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}
	c.JSON(http.StatusOK, serializer.Response{Msg: "logged out"})
}
