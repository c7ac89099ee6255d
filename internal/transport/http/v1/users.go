package v1

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type registerRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Register creates a new user account.
// POST /v1/auth/register
func (h *Handler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Success: false, Message: "invalid request body"})
	}

	result, err := h.service.Register(c.Request().Context(), req.Email, req.Name, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, result)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a token.
// POST /v1/auth/login
func (h *Handler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Success: false, Message: "invalid request body"})
	}

	result, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// Profile returns the caller's account, badges and progress.
// GET /v1/me
func (h *Handler) Profile(c echo.Context) error {
	result, err := h.service.Profile(c.Request().Context(), h.userID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}
