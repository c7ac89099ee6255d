package v1

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// DailyQuestion returns the question of the day.
// GET /v1/questions/daily
func (h *Handler) DailyQuestion(c echo.Context) error {
	question, err := h.service.DailyQuestion(c.Request().Context(), time.Now())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"question": question})
}

// ListQuestions lists questions, optionally filtered by topic and difficulty.
// GET /v1/questions?topic&difficulty
func (h *Handler) ListQuestions(c echo.Context) error {
	questions, err := h.service.ListQuestions(c.Request().Context(), c.QueryParam("topic"), c.QueryParam("difficulty"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"questions": questions})
}

// GetQuestion returns a question by ID.
// GET /v1/questions/:question_id
func (h *Handler) GetQuestion(c echo.Context) error {
	question, err := h.service.GetQuestion(c.Request().Context(), c.Param("question_id"))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"question": question})
}

// ListTopics lists all topics.
// GET /v1/topics
func (h *Handler) ListTopics(c echo.Context) error {
	topics, err := h.service.ListTopics(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"topics": topics})
}

// ListBadges lists every badge the system can award.
// GET /v1/badges
func (h *Handler) ListBadges(c echo.Context) error {
	badges, err := h.service.ListBadges(c.Request().Context())
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"badges": badges})
}
