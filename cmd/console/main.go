// Command console runs the navigation engine against an admin backend
// and exposes the compiled navigation structure over a local HTTP
// surface: the installed route table for sidebar renderers, a navigation
// decision endpoint, and session controls.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tancool/adminx-console/internal/app"
	"github.com/tancool/adminx-console/internal/config"
	"github.com/tancool/adminx-console/internal/route"
	"github.com/tancool/adminx-console/pkg/logger"
)

func main() {
	_ = godotenv.Load()

	log := logger.NewDefault("console")
	cfg := config.LoadOrDefault()

	application, err := app.New(cfg, log)
	if err != nil {
		log.WithError(err).Error("failed to initialise application")
		os.Exit(1)
	}
	registerViews(application.Views)

	router := mux.NewRouter()
	registerHandlers(router, application)
	router.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	server := &http.Server{
		Addr:         cfg.Listen,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	go func() {
		log.WithField("listen", cfg.Listen).Info("console listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Error("server failed")
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Warn("shutdown incomplete")
	}
}

// registerViews binds the known page components to JSON page descriptors.
// Components the server names but the registry lacks fall back to the
// generic menu page.
func registerViews(registry *route.Registry) {
	components := []string{
		"login",
		"404",
		"dashboard/index",
		"system/user/index",
		"system/role/index",
		"system/menu/index",
		"system/organization/index",
		"system/permission/index",
		"office/document/index",
		"task/index",
		"pve/vm/index",
		"chat/index",
	}
	for _, component := range components {
		component := component
		registry.Register(component, func(meta route.Meta) any {
			return map[string]any{
				"view":    component,
				"title":   meta.Title,
				"menu_id": meta.MenuID,
			}
		})
	}
}
