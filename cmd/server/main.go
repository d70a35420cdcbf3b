/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the time-control reporting server: configuration,
  dependency wiring, graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env (optional) and parse command-line flags
  2. Open the SQLite store
  3. Load the immutable configuration (holiday table, departments)
  4. Wire the control service and report builder
  5. Start the HTTP server with graceful shutdown

COMMAND-LINE FLAGS:
  -port    HTTP server port (default: 8080, env PORT)
  -db      SQLite database path (default: timecontrol.db, env DATABASE_PATH)
           Use ":memory:" for an in-memory database
  -config  JSON configuration file (holiday table, departments); omit to
           use the built-in defaults
  -company Company scope for holiday lookups
  -seed    Load the demo fixture into an empty database and exit

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM: stop accepting connections, wait up to 30s for
  active requests, close the database, exit.
*/
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/nimbus/timecontrol/api"
	"github.com/nimbus/timecontrol/control"
	"github.com/nimbus/timecontrol/factory"
	"github.com/nimbus/timecontrol/report"
	"github.com/nimbus/timecontrol/store/sqlite"
)

func main() {
	_ = godotenv.Load()

	port := flag.Int("port", envInt("PORT", 8080), "HTTP server port")
	dbPath := flag.String("db", envStr("DATABASE_PATH", "timecontrol.db"), "SQLite database path")
	configPath := flag.String("config", envStr("CONFIG_PATH", ""), "JSON configuration file")
	company := flag.String("company", envStr("COMPANY_ID", ""), "Company scope for holidays")
	seed := flag.Bool("seed", false, "Load demo fixture and exit")
	flag.Parse()

	store, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	if *seed {
		if err := store.Seed(context.Background()); err != nil {
			log.Fatalf("Seed failed: %v", err)
		}
		log.Println("Demo fixture loaded")
		return
	}

	cfg, err := factory.LoadFile(*configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	service := &control.Service{
		Entries:      store,
		Schedule:     store,
		Holidays:     store,
		Absences:     store,
		Directory:    store,
		National:     cfg.NationalTable(),
		CompanyID:    control.CompanyID(*company),
		DefaultShift: cfg.DefaultShift(),
	}
	reports := &report.Builder{Service: service, Config: cfg}
	handler := api.NewHandler(service, reports, store)
	router := api.NewRouter(handler)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost:%d", *port)
		log.Printf("API available at http://localhost:%d/api", *port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		var n int
		if _, err := fmt.Sscanf(v, "%d", &n); err == nil {
			return n
		}
	}
	return fallback
}
