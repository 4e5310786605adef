package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Meta-Virgo/Tarot/internal/app"
	"github.com/Meta-Virgo/Tarot/internal/domain"
	"github.com/Meta-Virgo/Tarot/internal/ports"
)

// Handler exposes sessions to the renderer: one snapshot GET plus one POST
// per action entry point.
type Handler struct {
	registry *app.Registry
	catalog  ports.Catalog
}

func NewHandler(registry *app.Registry, catalog ports.Catalog) *Handler {
	return &Handler{registry: registry, catalog: catalog}
}

func (h *Handler) Register(e *echo.Echo) {
	e.GET("/healthz", h.Healthz)
	e.GET("/v1/spreads", h.ListSpreads)
	e.GET("/v1/cards", h.ListCards)
	e.POST("/v1/sessions", h.CreateSession)

	g := e.Group("/v1/sessions/:id")
	g.GET("", h.GetSession)
	g.DELETE("", h.DeleteSession)
	g.GET("/audio", h.Audio)
	g.POST("/begin", h.Begin)
	g.POST("/spread", h.SelectSpread)
	g.POST("/confirm", h.ConfirmSpread)
	g.POST("/pick", h.PickCard)
	g.POST("/reveal", h.RevealCard)
	g.POST("/question", h.SetQuestion)
	g.POST("/listen", h.Listen)
	g.POST("/reading", h.RequestReading)
	g.POST("/panel/hide", h.HidePanel)
	g.POST("/playback", h.TogglePlayback)
	g.POST("/playback/ended", h.PlaybackEnded)
	g.POST("/reset", h.Reset)
}

func (h *Handler) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

func (h *Handler) ListSpreads(c echo.Context) error {
	return c.JSON(http.StatusOK, h.catalog.ListSpreads())
}

func (h *Handler) ListCards(c echo.Context) error {
	full, _ := strconv.ParseBool(c.QueryParam("full"))
	defs, err := h.catalog.ListCardDefinitions(full)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, defs)
}

func (h *Handler) CreateSession(c echo.Context) error {
	id, s := h.registry.Create()
	return c.JSON(http.StatusCreated, toSessionResponse(id, s))
}

func (h *Handler) GetSession(c echo.Context) error {
	id, s, err := h.session(c)
	if err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, toSessionResponse(id, s))
}

// DeleteSession drops the session; any in-flight generation result for it is
// simply never observed again.
func (h *Handler) DeleteSession(c echo.Context) error {
	id := c.Param("id")
	if _, err := h.registry.Get(id); err != nil {
		return mapError(c, err)
	}
	h.registry.Remove(id)
	return c.NoContent(http.StatusNoContent)
}

func (h *Handler) Begin(c echo.Context) error {
	return h.act(c, func(s *app.Session) error {
		s.Begin()
		return nil
	})
}

func (h *Handler) SelectSpread(c echo.Context) error {
	var req SelectSpreadRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	return h.act(c, func(s *app.Session) error {
		return s.SelectSpread(req.SpreadID)
	})
}

func (h *Handler) ConfirmSpread(c echo.Context) error {
	var req ConfirmRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	return h.act(c, func(s *app.Session) error {
		return s.ConfirmSpread(req.FullDeck)
	})
}

func (h *Handler) PickCard(c echo.Context) error {
	var req PickRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	return h.act(c, func(s *app.Session) error {
		s.PickCard(req.Index)
		return nil
	})
}

func (h *Handler) RevealCard(c echo.Context) error {
	var req RevealRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	return h.act(c, func(s *app.Session) error {
		s.InteractWithCard(req.Index)
		return nil
	})
}

func (h *Handler) SetQuestion(c echo.Context) error {
	var req QuestionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	return h.act(c, func(s *app.Session) error {
		s.SetQuestion(req.Text)
		return nil
	})
}

func (h *Handler) Listen(c echo.Context) error {
	var req ListenRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
	}
	if req.Locale == "" {
		req.Locale = "en-US"
	}
	return h.act(c, func(s *app.Session) error {
		_, err := s.CaptureQuestion(c.Request().Context(), req.Locale)
		return err
	})
}

// RequestReading enforces the enablement rule: the prophecy can only be
// requested once every position is revealed. The session itself handles the
// fast path and the in-flight collapse.
func (h *Handler) RequestReading(c echo.Context) error {
	id, s, err := h.session(c)
	if err != nil {
		return mapError(c, err)
	}
	if !s.AllRevealed() {
		return c.JSON(http.StatusConflict, ErrorResponse{Error: "all cards must be revealed first"})
	}
	s.RequestOrShowReading(c.Request().Context())
	return c.JSON(http.StatusOK, toSessionResponse(id, s))
}

func (h *Handler) HidePanel(c echo.Context) error {
	return h.act(c, func(s *app.Session) error {
		s.HideReadingPanel()
		return nil
	})
}

func (h *Handler) TogglePlayback(c echo.Context) error {
	return h.act(c, func(s *app.Session) error {
		s.TogglePlayback()
		return nil
	})
}

func (h *Handler) PlaybackEnded(c echo.Context) error {
	return h.act(c, func(s *app.Session) error {
		s.MarkPlaybackEnded()
		return nil
	})
}

func (h *Handler) Reset(c echo.Context) error {
	return h.act(c, func(s *app.Session) error {
		s.ResetToIntro()
		return nil
	})
}

func (h *Handler) Audio(c echo.Context) error {
	_, s, err := h.session(c)
	if err != nil {
		return mapError(c, err)
	}
	wav := s.AudioWAV()
	if wav == nil {
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: "no audio asset"})
	}
	return c.Blob(http.StatusOK, "audio/wav", wav)
}

func (h *Handler) session(c echo.Context) (string, *app.Session, error) {
	id := c.Param("id")
	s, err := h.registry.Get(id)
	if err != nil {
		return "", nil, err
	}
	return id, s, nil
}

// act resolves the session, applies fn, and returns the fresh snapshot.
func (h *Handler) act(c echo.Context, fn func(*app.Session) error) error {
	id, s, err := h.session(c)
	if err != nil {
		return mapError(c, err)
	}
	if err := fn(s); err != nil {
		return mapError(c, err)
	}
	return c.JSON(http.StatusOK, toSessionResponse(id, s))
}

func mapError(c echo.Context, err error) error {
	requestID := c.Response().Header().Get(echo.HeaderXRequestID)

	switch {
	case errors.Is(err, domain.ErrSessionNotFound), errors.Is(err, domain.ErrSpreadNotFound):
		return c.JSON(http.StatusNotFound, ErrorResponse{Error: err.Error()})
	case errors.Is(err, domain.ErrSpeechUnavailable):
		return c.JSON(http.StatusConflict, ErrorResponse{Error: err.Error()})
	default:
		slog.Error("internal error", "request_id", requestID, "error", err)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
	}
}
