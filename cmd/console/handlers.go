package main

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/tancool/adminx-console/internal/app"
	"github.com/tancool/adminx-console/internal/route"
)

func registerHandlers(router *mux.Router, application *app.Application) {
	router.HandleFunc("/healthz", healthHandler).Methods(http.MethodGet)
	router.HandleFunc("/routes", routesHandler(application)).Methods(http.MethodGet)
	router.HandleFunc("/sidebar", sidebarHandler(application)).Methods(http.MethodGet)
	router.HandleFunc("/navigate", navigateHandler(application)).Methods(http.MethodPost)
	router.HandleFunc("/login", loginHandler(application)).Methods(http.MethodPost)
	router.HandleFunc("/logout", logoutHandler(application)).Methods(http.MethodPost)
	router.HandleFunc("/session", sessionHandler(application)).Methods(http.MethodGet)
	router.HandleFunc("/check-permission", checkPermissionHandler(application)).Methods(http.MethodPost)
}

func healthHandler(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy", "service": "console"})
}

// routesHandler exposes the installed route table as a read-only view for
// sidebar and menu renderers.
func routesHandler(application *app.Application) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"routes":    application.Table.Routes(),
			"installed": application.Manager.Installed(),
		})
	}
}

func sidebarHandler(application *app.Application) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, route.Flatten(application.Menus.Tree()))
	}
}

func navigateHandler(application *app.Application) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			To string `json:"to"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			jsonError(w, "invalid request", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, application.Navigate(r.Context(), payload.To))
	}
}

func loginHandler(application *app.Application) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Username string `json:"username"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			jsonError(w, "invalid request", http.StatusBadRequest)
			return
		}
		if err := application.Login(r.Context(), payload.Username, payload.Password); err != nil {
			jsonError(w, err.Error(), http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, application.Session.Principal())
	}
}

func logoutHandler(application *app.Application) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		application.Logout(r.Context())
		writeJSON(w, http.StatusOK, map[string]string{})
	}
}

func sessionHandler(application *app.Application) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if !application.Session.Authenticated() {
			jsonError(w, "not authenticated", http.StatusUnauthorized)
			return
		}
		writeJSON(w, http.StatusOK, application.Session.Principal())
	}
}

func checkPermissionHandler(application *app.Application) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload struct {
			Code string `json:"code"`
		}
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			jsonError(w, "invalid request", http.StatusBadRequest)
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{
			"has_permission": application.Authz.HasPermission(r.Context(), payload.Code),
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func jsonError(w http.ResponseWriter, message string, status int) {
	writeJSON(w, status, map[string]string{"detail": message})
}
