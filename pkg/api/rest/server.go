package rest

import (
	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"

	"github.com/delphi-social/server/pkg/bots"
	"github.com/delphi-social/server/pkg/pipeline"
	"github.com/delphi-social/server/pkg/posts"
)

// API bundles the components the handlers map HTTP onto.
type API struct {
	Store     *posts.Store
	Bots      *bots.Registry
	Debug     *pipeline.DebugLog
	Responder *pipeline.Responder
}

func Router(api *API) *chi.Mux {
	r := chi.NewRouter()

	// CORS middleware
	r.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"OPTIONS", "GET", "POST", "PATCH", "PUT", "DELETE"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	}).Handler)

	r.Get("/", api.getBotStatus)
	r.Post("/toggle", api.toggleBot)
	r.Post("/bots", api.createBot)

	r.Route("/api", func(r chi.Router) {
		r.Get("/tweets", api.getTweets)
		r.Post("/tweets", api.createTweet)
		r.Delete("/tweets/clear", api.clearTweets)
		r.Get("/tweets/{tweetId}", api.getTweet)
		r.Get("/debug/{tweetId}", api.getDebugInfo)
	})

	return r
}
