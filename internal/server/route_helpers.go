package server

import "net/http"

// RouteHandler is a function type for HTTP handlers.
type RouteHandler func(http.ResponseWriter, *http.Request)

// MethodRouter maps HTTP methods to handlers.
type MethodRouter map[string]RouteHandler

// RouteByMethod routes requests based on HTTP method.
func RouteByMethod(w http.ResponseWriter, r *http.Request, routes MethodRouter) {
	handler, ok := routes[r.Method]
	if !ok {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	handler(w, r)
}

// RouteResourceCollection handles the page + form pattern.
// GET and HEAD -> view, POST -> action.
func RouteResourceCollection(w http.ResponseWriter, r *http.Request, view, action RouteHandler) {
	routes := make(MethodRouter)
	if view != nil {
		routes[http.MethodGet] = view
		routes[http.MethodHead] = view
	}
	if action != nil {
		routes[http.MethodPost] = action
	}
	RouteByMethod(w, r, routes)
}
