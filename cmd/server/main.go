package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"

	"github.com/inamate/pinboard/internal/auth"
	"github.com/inamate/pinboard/internal/bitmap"
	"github.com/inamate/pinboard/internal/collab"
	"github.com/inamate/pinboard/internal/config"
	"github.com/inamate/pinboard/internal/db"
	"github.com/inamate/pinboard/internal/project"
	"github.com/inamate/pinboard/internal/scene"
)

func main() {
	cmd := &cli.Command{
		Name:  "pinboard",
		Usage: "Canvas board editor backend",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Log at debug level regardless of LOG_LEVEL",
				Sources: cli.EnvVars("PINBOARD_DEBUG"),
			},
			&cli.BoolFlag{
				Name:  "skip-migrate",
				Usage: "Do not apply the schema when serving",
			},
		},
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP and websocket server",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "Apply the database schema and exit",
				Action: migrate,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func setup(cmd *cli.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	level := cfg.LogLevel
	if cmd.Bool("debug") {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level})))
	return cfg, nil
}

func migrate(ctx context.Context, cmd *cli.Command) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if err := db.Migrate(ctx, pool); err != nil {
		return err
	}
	slog.Info("schema applied")
	return nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := setup(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	if !cmd.Bool("skip-migrate") {
		if err := db.Migrate(ctx, pool); err != nil {
			return err
		}
	}

	queries := db.New(pool)
	authService := auth.NewService(queries, cfg.JWTSecret, cfg.TokenTTL)
	projectService := project.NewService(queries)

	library, err := bitmap.NewLibrary(cfg.AssetDir)
	if err != nil {
		return err
	}

	newStore := func() *scene.Store {
		return scene.New(
			scene.WithHistoryLimit(cfg.HistoryLimit),
			scene.WithCropper(library),
			scene.WithLogger(slog.Default()),
		)
	}
	hub := collab.NewHub(projectService, newStore, collab.WithSaveInterval(cfg.SaveInterval))

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: newRouter(routerDeps{
			cfg:      cfg,
			auth:     authService,
			projects: projectService,
			library:  library,
			hub:      hub,
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hub.Run(gCtx)
	})

	g.Go(func() error {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gCtx.Done()
		slog.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
