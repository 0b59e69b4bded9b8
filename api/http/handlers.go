package http

import (
	"context"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pranavmanoj1/productivityai/internal/assistant"
	"github.com/pranavmanoj1/productivityai/internal/meet"
	"github.com/pranavmanoj1/productivityai/internal/middleware"
	"github.com/pranavmanoj1/productivityai/internal/types"
	"github.com/pranavmanoj1/productivityai/internal/ws"
)

// Synthesizer is the TTS backend used by /api/tts and confirm-tasks audio.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type Handlers struct {
	Assistant *assistant.Service
	TTS       Synthesizer
	Meet      *meet.TokenService
	Call      *ws.Handler
}

func NewHandlers(svc *assistant.Service, tts Synthesizer, meetSvc *meet.TokenService, callHandler *ws.Handler) Handlers {
	return Handlers{Assistant: svc, TTS: tts, Meet: meetSvc, Call: callHandler}
}

// Register wires all routes. Bearer-authenticated routes go through auth.
func (h Handlers) Register(e *echo.Echo, auth echo.MiddlewareFunc) {
	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	e.GET("/ws/call", h.Call.Serve)
	e.POST("/api/tts", h.tts)

	authed := e.Group("/api", auth)
	authed.POST("/ai-response", h.aiResponse)
	authed.POST("/confirm-tasks", h.confirmTasks)
	authed.POST("/meeting-token", h.meetingToken)
}

func (h Handlers) aiResponse(c echo.Context) error {
	userID, _ := c.Get(middleware.UserIDKey).(string)

	var req struct {
		Message string `json:"message"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "message is required"})
	}

	reply, err := h.Assistant.Respond(c.Request().Context(), userID, req.Message)
	if err != nil {
		c.Echo().Logger.Errorf("ai-response failed: %v", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "failed to get AI response"})
	}
	return c.JSON(http.StatusOK, reply)
}

func (h Handlers) tts(c echo.Context) error {
	var req struct {
		Text string `json:"text"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Text) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "text is required"})
	}

	audio, err := h.TTS.Synthesize(c.Request().Context(), req.Text)
	if err != nil {
		c.Echo().Logger.Errorf("tts failed: %v", err)
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "failed to synthesize speech"})
	}
	return c.Blob(http.StatusOK, "audio/mpeg", audio)
}

func (h Handlers) confirmTasks(c echo.Context) error {
	userID, _ := c.Get(middleware.UserIDKey).(string)

	var req struct {
		TasksToConfirm []types.Task `json:"tasksToConfirm"`
	}
	if err := c.Bind(&req); err != nil || len(req.TasksToConfirm) == 0 {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "tasksToConfirm is required"})
	}

	n, err := h.Assistant.Confirm(c.Request().Context(), userID, req.TasksToConfirm)
	if err != nil {
		c.Echo().Logger.Errorf("confirm-tasks failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to save tasks"})
	}

	res := types.ConfirmResult{Success: true, TasksInserted: n}
	// Best-effort spoken confirmation; the insert already succeeded.
	if audio, terr := h.TTS.Synthesize(c.Request().Context(), "Your tasks have been added."); terr == nil {
		res.TTSAudio = base64.StdEncoding.EncodeToString(audio)
	} else {
		c.Echo().Logger.Warnf("confirmation audio skipped: %v", terr)
	}
	return c.JSON(http.StatusOK, res)
}

func (h Handlers) meetingToken(c echo.Context) error {
	userID, _ := c.Get(middleware.UserIDKey).(string)

	var req struct {
		Room string `json:"room"`
	}
	if err := c.Bind(&req); err != nil || strings.TrimSpace(req.Room) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "room is required"})
	}

	token, err := h.Meet.AccessToken(userID, req.Room)
	if err != nil {
		c.Echo().Logger.Errorf("meeting-token failed: %v", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to mint meeting token"})
	}
	return c.JSON(http.StatusOK, map[string]string{"token": token})
}
