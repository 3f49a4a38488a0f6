package main

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/coder/websocket"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/inamate/pinboard/internal/asset"
	"github.com/inamate/pinboard/internal/auth"
	"github.com/inamate/pinboard/internal/bitmap"
	"github.com/inamate/pinboard/internal/collab"
	"github.com/inamate/pinboard/internal/config"
	mw "github.com/inamate/pinboard/internal/middleware"
	"github.com/inamate/pinboard/internal/project"
)

type routerDeps struct {
	cfg      *config.Config
	auth     *auth.Service
	projects *project.Service
	library  *bitmap.Library
	hub      *collab.Hub
}

func newRouter(d routerDeps) http.Handler {
	authHandler := auth.NewHandler(d.auth)
	projectHandler := project.NewHandler(d.projects)
	assetHandler := asset.NewHandler(d.library)

	r := mux.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(mw.Logger)
	r.Use(middleware.Recoverer)
	r.Use(mw.CORS(d.cfg.AllowedOrigins))

	// Auth routes (public)
	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// Bitmaps are served publicly by id; uploads need a token.
	r.Handle("/assets/upload", d.auth.AuthMiddleware(http.HandlerFunc(assetHandler.Upload))).Methods("POST", "OPTIONS")
	r.PathPrefix("/assets/").Handler(assetHandler.Serve()).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(d.auth.AuthMiddleware)

	api.HandleFunc("/me", authHandler.Me).Methods("GET")
	api.HandleFunc("/projects", projectHandler.List).Methods("GET")
	api.HandleFunc("/projects", projectHandler.Create).Methods("POST")
	api.HandleFunc("/projects/{projectId}", projectHandler.Get).Methods("GET")
	api.HandleFunc("/projects/{projectId}", projectHandler.Rename).Methods("PATCH")
	api.HandleFunc("/projects/{projectId}", projectHandler.Delete).Methods("DELETE")
	api.HandleFunc("/projects/{projectId}/snapshots", projectHandler.ListSnapshots).Methods("GET")
	api.HandleFunc("/projects/{projectId}/snapshots/latest", projectHandler.GetLatestSnapshot).Methods("GET")

	r.HandleFunc("/ws/project/{projectId}", func(w http.ResponseWriter, r *http.Request) {
		handleWebSocket(w, r, d)
	})

	return r
}

func handleWebSocket(w http.ResponseWriter, r *http.Request, d routerDeps) {
	projectID := mux.Vars(r)["projectId"]

	token, ok := auth.BearerToken(r)
	if !ok {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}
	userID, err := d.auth.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	if err := d.projects.CheckAccess(r.Context(), projectID, userID); err != nil {
		switch {
		case errors.Is(err, project.ErrNotFound):
			http.Error(w, "project not found", http.StatusNotFound)
		case errors.Is(err, project.ErrForbidden):
			http.Error(w, "forbidden", http.StatusForbidden)
		default:
			slog.Error("check project access", "error", err)
			http.Error(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	user, err := d.auth.GetUser(r.Context(), userID)
	if err != nil {
		http.Error(w, "user not found", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: d.cfg.OriginPatterns(),
	})
	if err != nil {
		slog.Error("websocket accept", "error", err)
		return
	}

	client := collab.NewClient(d.hub, conn, userID, user.DisplayName, projectID, uuid.NewString())
	if err := d.hub.Register(client); err != nil {
		conn.Close(websocket.StatusTryAgainLater, "server shutting down")
		return
	}

	client.Serve(r.Context())
}
