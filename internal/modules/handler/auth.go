package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodian-app/upkeep/internal/config"
	"github.com/custodian-app/upkeep/internal/middleware"
	"github.com/custodian-app/upkeep/internal/modules/serializer"
	"github.com/custodian-app/upkeep/internal/modules/service"
)

const refreshCookie = "refresh_token"

type AuthHandler struct {
	svc service.UserService
	cfg *config.Config
}

func NewAuthHandler(s service.UserService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{svc: s, cfg: cfg}
}

type SignupReq struct {
	Email     string `json:"email" binding:"required,email" example:"owner@example.com"`
	Password  string `json:"password" binding:"required,min=8" example:"hunter2hunter2"`
	Username  string `json:"username" example:"owner"`
	FirstName string `json:"first_name" example:"Sam"`
	LastName  string `json:"last_name" example:"Doe"`
}

type SigninReq struct {
	Email    string `json:"email" binding:"required,email" example:"owner@example.com"`
	Password string `json:"password" binding:"required" example:"hunter2hunter2"`
}

type AuthResp struct {
	User        any    `json:"user"`
	AccessToken string `json:"access_token"`
}

// Signup godoc
//
//	@Summary		Create an account
//	@Description	Registers a user and signs them in. The refresh token is set as an httpOnly cookie.
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		SignupReq	true	"Signup payload"
//	@Success		200		{object}	serializer.Response{data=AuthResp}
//	@Router			/auth/signup [post]
func (h *AuthHandler) Signup(c *gin.Context) {
	var req SignupReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	res, err := h.svc.Signup(c.Request.Context(), service.SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			c.JSON(http.StatusConflict, serializer.Err(http.StatusConflict, "email already registered", nil))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}
	h.respond(c, res)
}

// Signin godoc
//
//	@Summary	Sign in
//	@Tags		auth
//	@Accept		json
//	@Produce	json
//	@Param		body	body		SigninReq	true	"Credentials"
//	@Success	200		{object}	serializer.Response{data=AuthResp}
//	@Router		/auth/signin [post]
func (h *AuthHandler) Signin(c *gin.Context) {
	var req SigninReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, serializer.ParamErr("", err))
		return
	}
	res, err := h.svc.Signin(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, serializer.AuthErr("invalid email or password"))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}
	h.respond(c, res)
}

// Refresh godoc
//
//	@Summary	Exchange the refresh cookie for a new access token
//	@Tags		auth
//	@Produce	json
//	@Success	200	{object}	serializer.Response{data=AuthResp}
//	@Router		/auth/refresh [get]
func (h *AuthHandler) Refresh(c *gin.Context) {
	raw, err := c.Cookie(refreshCookie)
	if err != nil {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr("missing refresh token"))
		return
	}
	res, err := h.svc.Refresh(c.Request.Context(), raw)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.clearCookie(c)
			c.JSON(http.StatusUnauthorized, serializer.AuthErr("invalid refresh token"))
			return
		}
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}
	h.respond(c, res)
}

// Signout godoc
//
//	@Summary	Sign out
//	@Tags		auth
//	@Produce	json
//	@Security	BearerAuth
//	@Success	200	{object}	serializer.Response
//	@Router		/auth/signout [post]
func (h *AuthHandler) Signout(c *gin.Context) {
	uid, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, serializer.AuthErr(""))
		return
	}
	if err := h.svc.Signout(c.Request.Context(), uid); err != nil {
		c.JSON(http.StatusInternalServerError, serializer.DBErr("", err))
		return
	}
	h.clearCookie(c)
	c.JSON(http.StatusOK, serializer.Response{})
}

func (h *AuthHandler) respond(c *gin.Context, res *service.AuthResult) {
	maxAge := h.cfg.Auth.RefreshTTLDays * 24 * 3600
	c.SetCookie(refreshCookie, res.RefreshToken, maxAge, "/api/v1/auth",
		h.cfg.Auth.CookieDomain, h.cfg.Auth.CookieSecure, true)
	c.JSON(http.StatusOK, serializer.Response{Data: AuthResp{
		User:        res.User,
		AccessToken: res.AccessToken,
	}})
}

func (h *AuthHandler) clearCookie(c *gin.Context) {
	c.SetCookie(refreshCookie, "", -1, "/api/v1/auth",
		h.cfg.Auth.CookieDomain, h.cfg.Auth.CookieSecure, true)
}
