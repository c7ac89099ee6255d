package v1

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

type startInterviewRequest struct {
	Domain     string `json:"domain"`
	Difficulty string `json:"difficulty"`
}

// StartInterview starts a new interview session.
// POST /v1/interviews
func (h *Handler) StartInterview(c echo.Context) error {
	var req startInterviewRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Success: false, Message: "invalid request body"})
	}

	result, err := h.service.StartSession(c.Request().Context(), h.userID(c), req.Domain, req.Difficulty)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, result)
}

type respondRequest struct {
	Response string `json:"response"`
	IsAudio  bool   `json:"is_audio"`
}

// Respond submits an answer to the current question.
// POST /v1/interviews/:session_id/respond
func (h *Handler) Respond(c echo.Context) error {
	var req respondRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorBody{Success: false, Message: "invalid request body"})
	}

	result, err := h.service.Respond(c.Request().Context(), c.Param("session_id"), h.userID(c), req.Response, req.IsAudio, "")
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// EndInterview ends an active session and returns the final summary.
// POST /v1/interviews/:session_id/end
func (h *Handler) EndInterview(c echo.Context) error {
	summary, err := h.service.EndSession(c.Request().Context(), c.Param("session_id"), h.userID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"summary": summary})
}

// CancelInterview cancels an active session.
// DELETE /v1/interviews/:session_id
func (h *Handler) CancelInterview(c echo.Context) error {
	if err := h.service.CancelSession(c.Request().Context(), c.Param("session_id"), h.userID(c)); err != nil {
		return fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// InterviewHistory lists the caller's sessions, most recent first.
// GET /v1/interviews?page&limit
func (h *Handler) InterviewHistory(c echo.Context) error {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)

	result, err := h.service.SessionHistory(c.Request().Context(), h.userID(c), page, limit)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// GetInterview returns a session with its full transcript.
// GET /v1/interviews/:session_id
func (h *Handler) GetInterview(c echo.Context) error {
	session, err := h.service.GetSession(c.Request().Context(), c.Param("session_id"), h.userID(c))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"session": session})
}

func queryInt(c echo.Context, name string, defaultVal int) int {
	if v := c.QueryParam(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}
