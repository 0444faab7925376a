package web

import (
	"bytes"
	"embed"
	"html/template"
	"io"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"pdfchat/internal/models"
	"pdfchat/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

const pageTitle = "Chat with multiple PDFs"

var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithHardWraps()),
)

type templateRenderer struct {
	templates *template.Template
}

func newTemplateRenderer() (*templateRenderer, error) {
	t, err := template.New("").Funcs(template.FuncMap{
		"markdown": renderMarkdown,
	}).ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	return &templateRenderer{templates: t}, nil
}

func (r *templateRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.templates.ExecuteTemplate(w, name, data)
}

// renderMarkdown turns model output into HTML. Raw HTML inside the answer is
// not passed through.
func renderMarkdown(src string) template.HTML {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		log.Warn().Err(err).Msg("Markdown rendering failed")
		return template.HTML(template.HTMLEscapeString(src))
	}
	return template.HTML(buf.String())
}

type flash struct {
	Kind     string
	Message  string
	Warnings []string
}

type pageData struct {
	Title       string
	ConfigError string
	Flash       *flash
	Session     session.View
	User        models.Role
}

func (s *Server) renderPage(c echo.Context, status int, sess *session.Session, out *session.Outcome) error {
	data := pageData{
		Title:   pageTitle,
		Session: sess.View(),
		User:    models.RoleUser,
	}
	if err := s.ctrl.ConfigError(); err != nil {
		data.ConfigError = err.Error()
	}
	if out != nil && out.Kind != session.OutcomeConfig {
		data.Flash = &flash{Kind: out.Kind.String(), Message: out.Message, Warnings: out.Warnings}
	}
	return c.Render(status, "index.html", data)
}
