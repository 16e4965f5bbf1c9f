package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/danielhkuo/pollboard/cliparse"
	"github.com/danielhkuo/pollboard/db"
	"github.com/danielhkuo/pollboard/middleware"
	"github.com/danielhkuo/pollboard/notify"
	"github.com/danielhkuo/pollboard/router"
)

func main() {
	var err error

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Connect to the database
	driver, dsn := driverDSN(cfg)
	dbConn, err := sql.Open(driver, dsn)
	if err != nil {
		slog.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	defer dbConn.Close()

	// Verify connection
	if err := dbConn.Ping(); err != nil {
		slog.Error("database ping failed", "error", err)
		os.Exit(1)
	}

	// Create schema (tables)
	if err := db.CreateSchema(dbConn, cfg.DatabaseType); err != nil {
		slog.Error("schema creation failed", "error", err)
		os.Exit(1)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	// Live-update fan-out; bridged over Redis when configured
	hub := notify.NewHub()
	var notifier notify.Notifier = hub
	if cfg.RedisURL != "" {
		bridge, err := notify.NewRedisBridge(context.Background(), cfg.RedisURL, hub)
		if err != nil {
			slog.Error("redis connection failed", "error", err)
			os.Exit(1)
		}
		defer bridge.Close()
		notifier = bridge
		slog.Info("Redis notification bridge ready")
	}

	// Create router
	mux := router.NewRouter(dbConn, cfg, hub, notifier)

	// Create server
	server := http.Server{
		Handler: middleware.CORS(mux),
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		// Wait for Ctrl-C signal
		<-ctrlc
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

// driverDSN maps the configured database type to a driver name and
// connection string. sqlite gets the foreign_keys pragma appended so the
// cascade deletes in the schema actually fire.
func driverDSN(cfg cliparse.Config) (string, string) {
	if cfg.DatabaseType != "sqlite" {
		return "postgres", cfg.DatabaseURL
	}

	dsn := cfg.DatabaseURL
	if !strings.Contains(dsn, "_pragma=foreign_keys") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		dsn += sep + "_pragma=foreign_keys(1)"
	}
	return "sqlite", dsn
}
