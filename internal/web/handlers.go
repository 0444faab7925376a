package web

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"pdfchat/internal/models"
	"pdfchat/internal/session"
)

func (s *Server) Index(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	return s.renderPage(c, http.StatusOK, sess, nil)
}

func (s *Server) Process(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	docs, err := readUploads(c)
	if err != nil {
		log.Warn().Err(err).Msg("Could not read upload")
		return s.renderPage(c, http.StatusBadRequest, sess, &session.Outcome{
			Kind:    session.OutcomeFailure,
			Message: models.MsgProcessingError,
			Err:     err,
		})
	}

	out := s.ctrl.Process(c.Request().Context(), sess, docs)
	return s.renderPage(c, statusFor(out), sess, &out)
}

func (s *Server) Ask(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	out := s.ctrl.Ask(c.Request().Context(), sess, c.FormValue(questionField))
	var mce *models.ModelCallError
	if out.OK() || errors.As(out.Err, &mce) {
		// the answer or the failure is already in the transcript
		return s.renderPage(c, http.StatusOK, sess, nil)
	}
	return s.renderPage(c, statusFor(out), sess, &out)
}

// Reset ends the current session and starts over with an empty one.
func (s *Server) Reset(c echo.Context) error {
	if cookie, err := c.Cookie(sessionCookie); err == nil {
		s.store.Close(cookie.Value)
	}
	sess, err := s.newSession(c)
	if err != nil {
		return err
	}
	return s.renderPage(c, http.StatusOK, sess, nil)
}

// Chunks lists the current session's chunks in order, for debugging.
func (s *Server) Chunks(c echo.Context) error {
	sess, err := s.session(c)
	if err != nil {
		return err
	}
	chunks := sess.Chunks()
	if chunks == nil {
		chunks = []models.Chunk{}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"session": sess.ID,
		"count":   len(chunks),
		"chunks":  chunks,
	})
}

func (s *Server) Health(c echo.Context) error {
	type sub struct {
		OK  bool   `json:"ok"`
		Err string `json:"err,omitempty"`
	}

	cfgOK, cfgErr := true, ""
	if err := s.ctrl.ConfigError(); err != nil {
		cfgOK, cfgErr = false, err.Error()
	}
	status := http.StatusOK
	if !cfgOK {
		status = http.StatusServiceUnavailable
	}

	resp := map[string]any{
		"status":     map[string]any{"ok": cfgOK},
		"uptime_sec": int(time.Since(appStart).Seconds()),
		"checks": map[string]any{
			"config": sub{OK: cfgOK, Err: cfgErr},
		},
		"sessions": s.store.Len(),
		"time":     time.Now().Format(time.RFC3339),
	}
	return c.JSON(status, resp)
}

// session returns the caller's session, starting a new one when the cookie is
// missing or the session expired.
func (s *Server) session(c echo.Context) (*session.Session, error) {
	if cookie, err := c.Cookie(sessionCookie); err == nil {
		if sess, ok := s.store.Get(cookie.Value); ok {
			return sess, nil
		}
	}
	return s.newSession(c)
}

func (s *Server) newSession(c echo.Context) (*session.Session, error) {
	sess, err := s.store.Create()
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusInternalServerError, "could not start session").SetInternal(err)
	}
	c.SetCookie(&http.Cookie{
		Name:     sessionCookie,
		Value:    sess.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return sess, nil
}

func readUploads(c echo.Context) ([]models.Document, error) {
	form, err := c.MultipartForm()
	if err != nil {
		if err == http.ErrNotMultipart {
			return nil, nil
		}
		return nil, err
	}

	var docs []models.Document
	for _, fh := range form.File[uploadField] {
		f, err := fh.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", fh.Filename, err)
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fh.Filename, err)
		}
		docs = append(docs, models.Document{Filename: fh.Filename, Data: data})
	}
	return docs, nil
}

func statusFor(out session.Outcome) int {
	switch out.Kind {
	case session.OutcomeBusy:
		return http.StatusConflict
	case session.OutcomeConfig:
		return http.StatusServiceUnavailable
	default:
		return http.StatusOK
	}
}
