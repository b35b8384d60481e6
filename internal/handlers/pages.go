package handlers

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"io/fs"
	"net/http"
	"time"

	"github.com/bobmcallan/openvault-portal/internal/common"
	"github.com/bobmcallan/openvault-portal/internal/config"
	"github.com/bobmcallan/openvault-portal/internal/format"
	"github.com/bobmcallan/openvault-portal/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

type csrfKey struct{}

// WithCSRFToken stores the request's CSRF token for templates to embed in forms.
func WithCSRFToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, csrfKey{}, token)
}

// CSRFToken returns the token stored by WithCSRFToken, or "".
func CSRFToken(r *http.Request) string {
	token, _ := r.Context().Value(csrfKey{}).(string)
	return token
}

// PageHandler renders the HTML pages and serves static assets.
type PageHandler struct {
	logger    *common.Logger
	templates *template.Template
	sessions  *session.Manager
	devMode   bool
	now       func() time.Time
}

// NewPageHandler parses the embedded templates.
func NewPageHandler(logger *common.Logger, sessions *session.Manager, devMode bool) *PageHandler {
	h := &PageHandler{
		logger:   logger,
		sessions: sessions,
		devMode:  devMode,
		now:      time.Now,
	}
	h.templates = template.Must(template.New("pages").Funcs(h.funcs()).ParseFS(templateFS, "templates/*.html"))
	return h
}

func (h *PageHandler) funcs() template.FuncMap {
	return template.FuncMap{
		"money":        format.Money,
		"accountLabel": format.AccountTypeLabel,
		"txLabel":      format.TransactionTypeLabel,
		"maskIBAN":     format.MaskIBAN,
		"maskIBANWide": format.MaskIBANWide,
		"sign":         format.Sign,
		"amountClass":  format.AmountClass,
		"clock":        format.Clock,
		"shortDay":     func(t time.Time) string { return format.ShortDayLabel(t, h.now()) },
		"filterLabel":  filterLabel,
	}
}

func filterLabel(filter string) string {
	switch filter {
	case format.FilterAll:
		return "Tout"
	case "TRANSFER":
		return "Virements"
	case "DEPOSIT":
		return "Dépôts"
	case "WITHDRAWAL":
		return "Retraits"
	}
	return filter
}

// baseData is the data every page template expects.
func (h *PageHandler) baseData(r *http.Request, page, title string) map[string]interface{} {
	var current *session.Session
	if h.sessions != nil {
		current = h.sessions.Current()
	}
	return map[string]interface{}{
		"Page":          page,
		"Title":         title,
		"DevMode":       h.devMode,
		"Session":       current,
		"CSRFToken":     CSRFToken(r),
		"PortalVersion": config.GetVersion(),
		"Error":         "",
		"Notice":        "",
	}
}

// Render executes a page template with status 200.
func (h *PageHandler) Render(w http.ResponseWriter, name string, data map[string]interface{}) {
	h.RenderStatus(w, http.StatusOK, name, data)
}

// RenderStatus executes a page template with the given status.
func (h *PageHandler) RenderStatus(w http.ResponseWriter, status int, name string, data map[string]interface{}) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, data); err != nil {
		if h.logger != nil {
			h.logger.Error().Str("template", name).Str("error", err.Error()).Msg("failed to render page")
		}
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}

// StaticFileHandler serves /static/ from the embedded assets.
func (h *PageHandler) StaticFileHandler() http.Handler {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}
