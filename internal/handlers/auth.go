package handlers

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/bobmcallan/openvault-portal/internal/client"
	"github.com/bobmcallan/openvault-portal/internal/common"
	"github.com/bobmcallan/openvault-portal/internal/models"
	"github.com/bobmcallan/openvault-portal/internal/session"
)

const minPasswordLength = 6

// AuthHandler serves login, registration and logout.
type AuthHandler struct {
	logger   *common.Logger
	pages    *PageHandler
	api      BankingAPI
	sessions *session.Manager
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(logger *common.Logger, pages *PageHandler, api BankingAPI, sessions *session.Manager) *AuthHandler {
	return &AuthHandler{
		logger:   logger,
		pages:    pages,
		api:      api,
		sessions: sessions,
	}
}

// HandleLogin serves GET and POST /login.
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		if h.sessions.IsAuthenticated(r.Context()) {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}
		data := h.pages.baseData(r, "login", "Connexion")
		data["Email"] = ""
		h.pages.Render(w, "login.html", data)
	case http.MethodPost:
		h.login(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	email := strings.TrimSpace(r.PostFormValue("email"))
	password := r.PostFormValue("password")

	data := h.pages.baseData(r, "login", "Connexion")
	data["Email"] = email

	if msg := validateCredentials(email, password); msg != "" {
		data["Error"] = msg
		h.pages.RenderStatus(w, http.StatusBadRequest, "login.html", data)
		return
	}

	resp, err := h.api.Login(r.Context(), models.LoginRequest{Email: email, Password: password})
	if err != nil {
		h.logger.Warn().Str("error", err.Error()).Msg("login failed")
		if rejectedCredentials(err) {
			data["Error"] = "Échec de la connexion. Vérifiez vos identifiants."
			h.pages.RenderStatus(w, http.StatusUnauthorized, "login.html", data)
			return
		}
		data["Error"] = apiErrorMessage(err, "Le serveur OpenVault a rencontré une erreur. Réessayez plus tard.")
		h.pages.RenderStatus(w, http.StatusBadGateway, "login.html", data)
		return
	}

	h.establish(w, r, resp, "login.html", data)
}

// HandleRegister serves GET and POST /register.
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		if h.sessions.IsAuthenticated(r.Context()) {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}
		data := h.pages.baseData(r, "register", "Inscription")
		data["Form"] = models.RegisterRequest{}
		h.pages.Render(w, "register.html", data)
	case http.MethodPost:
		h.register(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	req := models.RegisterRequest{
		FirstName:   strings.TrimSpace(r.PostFormValue("firstName")),
		LastName:    strings.TrimSpace(r.PostFormValue("lastName")),
		Email:       strings.TrimSpace(r.PostFormValue("email")),
		Password:    r.PostFormValue("password"),
		PhoneNumber: strings.TrimSpace(r.PostFormValue("phoneNumber")),
	}

	data := h.pages.baseData(r, "register", "Inscription")
	form := req
	form.Password = ""
	data["Form"] = form

	msg := validateCredentials(req.Email, req.Password)
	if msg == "" && (req.FirstName == "" || req.LastName == "") {
		msg = "Le prénom et le nom sont obligatoires."
	}
	if msg != "" {
		data["Error"] = msg
		h.pages.RenderStatus(w, http.StatusBadRequest, "register.html", data)
		return
	}

	resp, err := h.api.Register(r.Context(), req)
	if err != nil {
		h.logger.Warn().Str("error", err.Error()).Msg("registration failed")
		data["Error"] = apiErrorMessage(err, "Échec de l'inscription. Réessayez.")
		status := http.StatusBadRequest
		if errors.Is(err, client.ErrNetwork) {
			status = http.StatusBadGateway
		}
		h.pages.RenderStatus(w, status, "register.html", data)
		return
	}

	h.establish(w, r, resp, "register.html", data)
}

// establish hands the token to the session manager and continues to the dashboard.
func (h *AuthHandler) establish(w http.ResponseWriter, r *http.Request, resp *models.AuthResponse, tmpl string, data map[string]interface{}) {
	if err := h.sessions.Authenticate(r.Context(), *resp); err != nil {
		data["Error"] = "Impossible d'enregistrer la session localement."
		h.pages.RenderStatus(w, http.StatusInternalServerError, tmpl, data)
		return
	}
	if !h.sessions.IsAuthenticated(r.Context()) {
		data["Error"] = "Le serveur a renvoyé une session invalide."
		h.pages.RenderStatus(w, http.StatusBadGateway, tmpl, data)
		return
	}
	http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
}

// HandleLogout serves POST /logout.
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}
	if err := h.sessions.Logout(r.Context(), redirectNavigator(w, r)); err != nil {
		http.Error(w, "Logout failed", http.StatusInternalServerError)
	}
}

// rejectedCredentials reports whether the API refused the login itself (any 4xx).
func rejectedCredentials(err error) bool {
	var apiErr *client.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500
}

func validateCredentials(email, password string) string {
	if email == "" || password == "" {
		return "L'email et le mot de passe sont obligatoires."
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "Adresse email invalide."
	}
	if len(password) < minPasswordLength {
		return "Le mot de passe doit contenir au moins 6 caractères."
	}
	return ""
}
