package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/joho/godotenv"

	"github.com/delphi-social/server/pkg/api/rest"
	"github.com/delphi-social/server/pkg/bots"
	"github.com/delphi-social/server/pkg/feedid"
	"github.com/delphi-social/server/pkg/llm"
	"github.com/delphi-social/server/pkg/pipeline"
	"github.com/delphi-social/server/pkg/posts"
)

func main() {
	// Load dotenv
	godotenv.Load()

	// Init Sentry
	if err := sentry.Init(sentry.ClientOptions{
		Dsn: os.Getenv("SENTRY_DSN"),
	}); err != nil {
		panic(err)
	}

	// Init FeedID
	if err := feedid.Init(os.Getenv("NODE_ID")); err != nil {
		panic(err)
	}

	// Open stores
	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}
	store, err := posts.OpenStore(filepath.Join(dataDir, "tweets.json"))
	if err != nil {
		panic(err)
	}
	registry, err := bots.OpenRegistry(filepath.Join(dataDir, "bots.json"))
	if err != nil {
		panic(err)
	}

	// Init model client
	var client llm.Client
	if anthropicClient, err := llm.NewAnthropicClient(); err != nil {
		log.Println("Bot replies disabled:", err)
	} else {
		client = anthropicClient
	}

	debug := pipeline.NewDebugLog()
	responder := pipeline.NewResponder(store, registry, client, debug)

	// Serve HTTP router
	port := os.Getenv("HTTP_PORT")
	if port == "" {
		port = "8000"
	}
	log.Println("Serving HTTP server on :" + port)
	http.ListenAndServe(":"+port, rest.Router(&rest.API{
		Store:     store,
		Bots:      registry,
		Debug:     debug,
		Responder: responder,
	}))

	// Wait for Sentry events to flush
	sentry.Flush(time.Second * 5)
}
