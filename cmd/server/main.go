package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/meur/gearforge/internal/api"
	"github.com/meur/gearforge/internal/config"
	"github.com/meur/gearforge/internal/logger"
	"github.com/meur/gearforge/internal/storage"
)

func main() {
	configPath := flag.String("config", os.Getenv("GEARFORGE_CONFIG"), "YAML config file")
	port := flag.String("port", "", "Server port")
	dbPath := flag.String("db", "", "SQLite database path")
	staticDir := flag.String("static", "", "Optional directory of static files served at /")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if *port != "" {
		cfg.Server.Port = *port
	}
	if *dbPath != "" {
		cfg.Database.Path = *dbPath
	}

	log, err := logger.New(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	if err := serve(cfg, *staticDir, log); err != nil {
		log.Error("Server failed", logger.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

func serve(cfg *config.Config, staticDir string, log logger.Logger) error {
	store, err := storage.New(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	r := chi.NewRouter()
	r.Mount("/", api.New(store, api.Options{
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Logger:         log,
	}))
	if staticDir != "" {
		FileServer(r, "/static", http.Dir(staticDir))
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("Lookup API starting",
			logger.String("addr", "http://localhost:"+cfg.Server.Port),
			logger.String("db", cfg.Database.Path),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// FileServer conveniently sets up a http.FileServer handler to serve
// static files from a http.FileSystem.
func FileServer(r chi.Router, path string, root http.FileSystem) {
	if strings.ContainsAny(path, "{}*") {
		panic("FileServer does not permit URL parameters.")
	}

	if path != "/" && path[len(path)-1] != '/' {
		r.Get(path, http.RedirectHandler(path+"/", http.StatusMovedPermanently).ServeHTTP)
		path += "/"
	}
	path += "*"

	r.Get(path, func(w http.ResponseWriter, req *http.Request) {
		rctx := chi.RouteContext(req.Context())
		pathPrefix := strings.TrimSuffix(rctx.RoutePattern(), "/*")
		fs := http.StripPrefix(pathPrefix, http.FileServer(root))
		fs.ServeHTTP(w, req)
	})
}
