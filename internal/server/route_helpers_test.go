package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRouteByMethod(t *testing.T) {
	called := false
	routes := MethodRouter{
		http.MethodPost: func(w http.ResponseWriter, r *http.Request) {
			called = true
		},
	}

	RouteByMethod(httptest.NewRecorder(), httptest.NewRequest(http.MethodPost, "/logout", nil), routes)
	if !called {
		t.Error("expected POST handler to be called")
	}

	w := httptest.NewRecorder()
	RouteByMethod(w, httptest.NewRequest(http.MethodGet, "/logout", nil), routes)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", w.Code)
	}
}

func TestRouteResourceCollection(t *testing.T) {
	var got string
	view := func(w http.ResponseWriter, r *http.Request) { got = "view:" + r.Method }
	action := func(w http.ResponseWriter, r *http.Request) { got = "action" }

	cases := map[string]string{
		http.MethodGet:  "view:GET",
		http.MethodHead: "view:HEAD",
		http.MethodPost: "action",
	}
	for method, want := range cases {
		got = ""
		RouteResourceCollection(httptest.NewRecorder(), httptest.NewRequest(method, "/accounts", nil), view, action)
		if got != want {
			t.Errorf("%s: expected %q, got %q", method, want, got)
		}
	}

	w := httptest.NewRecorder()
	RouteResourceCollection(w, httptest.NewRequest(http.MethodDelete, "/accounts", nil), view, action)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 for DELETE, got %d", w.Code)
	}
}

func TestRouteResourceCollection_ViewOnly(t *testing.T) {
	w := httptest.NewRecorder()
	RouteResourceCollection(w, httptest.NewRequest(http.MethodPost, "/transactions", nil),
		func(w http.ResponseWriter, r *http.Request) {}, nil)
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405 without an action handler, got %d", w.Code)
	}
}
