package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	apihttp "github.com/pranavmanoj1/productivityai/api/http"
	"github.com/pranavmanoj1/productivityai/internal/assistant"
	"github.com/pranavmanoj1/productivityai/internal/config"
	"github.com/pranavmanoj1/productivityai/internal/exchange"
	"github.com/pranavmanoj1/productivityai/internal/httpserver"
	"github.com/pranavmanoj1/productivityai/internal/llm"
	"github.com/pranavmanoj1/productivityai/internal/meet"
	"github.com/pranavmanoj1/productivityai/internal/middleware"
	"github.com/pranavmanoj1/productivityai/internal/store"
	"github.com/pranavmanoj1/productivityai/internal/tts"
	"github.com/pranavmanoj1/productivityai/internal/ws"
)

func main() {
	// Include sub-second precision in all log timestamps
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds)

	cfg := config.Load()

	var tasks store.TaskStore
	if cfg.SupabaseURL != "" && cfg.SupabaseServiceKey != "" {
		st, err := store.NewSupabaseStore(cfg.SupabaseURL, cfg.SupabaseServiceKey)
		if err != nil {
			log.Fatalf("supabase store: %v", err)
		}
		tasks = st
	} else {
		log.Println("using in-memory task store")
		tasks = store.NewMemoryStore()
	}

	svc := assistant.New(llm.NewOpenAIClient(cfg.OpenAIKey, cfg.OpenAIModelID), tasks)
	synth := tts.NewElevenLabsClient(cfg.ElevenLabsKey, cfg.ElevenLabsVoiceID)
	meetSvc := meet.NewTokenService(cfg.TwilioAccountSID, cfg.TwilioAPIKey, cfg.TwilioAPISecret)

	// The session controller consumes this server's own API, same as the
	// browser client would.
	backend := exchange.NewClient(apiBaseURL(cfg.HTTPAddress))
	callHandler := ws.NewHandler(backend)

	e := httpserver.New()
	auth := middleware.BearerAuth(middleware.NewSupabaseVerifier(cfg.SupabaseURL, cfg.SupabaseAnonKey))
	apihttp.NewHandlers(svc, synth, meetSvc, callHandler).Register(e, auth)

	server := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Start server in background
	serverErrors := make(chan error, 1)
	go func() {
		log.Printf("server listening on %s", cfg.HTTPAddress)
		serverErrors <- server.ListenAndServe()
	}()

	// Graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		if err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	case sig := <-sigChan:
		log.Printf("shutdown signal received: %v", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
		_ = server.Close()
	}
}

// apiBaseURL derives the loopback URL the in-process session controller
// uses to reach this server's API. API_BASE_URL overrides it when the
// server sits behind a proxy.
func apiBaseURL(addr string) string {
	if base := os.Getenv("API_BASE_URL"); base != "" {
		return base
	}
	if strings.HasPrefix(addr, ":") {
		return "http://localhost" + addr
	}
	return "http://" + addr
}
