package server

import "net/http"

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	// Everything unmatched lands on the dashboard (which itself requires a session).
	mux.HandleFunc("/", s.handleFallback)

	// Public pages
	mux.HandleFunc("/login", s.app.AuthHandler.HandleLogin)
	mux.HandleFunc("/register", s.app.AuthHandler.HandleRegister)
	mux.HandleFunc("/logout", func(w http.ResponseWriter, r *http.Request) {
		RouteByMethod(w, r, MethodRouter{http.MethodPost: s.app.AuthHandler.HandleLogout})
	})

	// Protected pages
	mux.Handle("/dashboard", s.requireSession(s.app.DashboardHandler))
	mux.Handle("/accounts", s.requireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RouteResourceCollection(w, r, s.app.AccountsHandler.ServeHTTP, s.app.AccountsHandler.ServeHTTP)
	})))
	mux.Handle("/transactions", s.requireSession(s.app.TransactionsHandler))
	mux.Handle("/transfer", s.requireSession(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		RouteResourceCollection(w, r, s.app.TransferHandler.ServeHTTP, s.app.TransferHandler.ServeHTTP)
	})))
	mux.Handle("/analysis", s.requireSession(s.app.AnalysisHandler))

	// Static files (CSS)
	mux.Handle("/static/", s.app.PageHandler.StaticFileHandler())

	// MCP endpoint (JSON-RPC over HTTP); checks the session itself
	if s.app.MCPHandler != nil {
		mux.Handle("/mcp", s.app.MCPHandler)
	}

	// API routes
	mux.HandleFunc("/api/session", s.app.SessionHandler.HandleSession)
	mux.HandleFunc("/api/session/events", s.app.SessionHandler.HandleEvents)
	mux.HandleFunc("/api/health", s.app.HealthHandler.ServeHTTP)
	mux.HandleFunc("/api/version", s.app.VersionHandler.ServeHTTP)

	// 404 handler for unmatched API routes
	mux.HandleFunc("/api/", s.handleNotFound)

	return mux
}

// handleFallback sends "/" and unknown paths to the dashboard.
func (s *Server) handleFallback(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, "/dashboard", http.StatusFound)
}

// handleNotFound returns a JSON 404 for unmatched API routes.
func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	w.Write([]byte(`{"error":"Not Found","message":"The requested endpoint does not exist"}`))
}
