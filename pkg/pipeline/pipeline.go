package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/getsentry/sentry-go"

	"github.com/delphi-social/server/pkg/bots"
	"github.com/delphi-social/server/pkg/llm"
	"github.com/delphi-social/server/pkg/posts"
)

// Responder runs the two-phase bot reply pipeline: analyze the triggering
// post against its thread, then generate the reply. Every step transition is
// recorded in the debug log; failures are contained there and never reach the
// request that created the post.
type Responder struct {
	store    *posts.Store
	registry *bots.Registry
	client   llm.Client
	debug    *DebugLog
}

func NewResponder(store *posts.Store, registry *bots.Registry, client llm.Client, debug *DebugLog) *Responder {
	return &Responder{
		store:    store,
		registry: registry,
		client:   client,
		debug:    debug,
	}
}

// Dispatch schedules one run per active bot mentioned by the post. The same
// bot mentioned twice gets one run. Runs execute in the background; the
// caller returns to its client immediately.
func (r *Responder) Dispatch(post posts.Post) {
	active := []bots.Bot{}
	for _, bot := range r.registry.List() {
		if bot.IsActive {
			active = append(active, bot)
		}
	}

	scheduled := map[string]bool{}
	for _, mention := range post.Mentions {
		for _, bot := range active {
			if !strings.EqualFold(bot.Name, mention) {
				continue
			}
			lower := strings.ToLower(bot.Name)
			if scheduled[lower] {
				continue
			}
			scheduled[lower] = true
			r.debug.Start(post.Id, bot.Name)
			go r.Run(context.Background(), post, bot.Name)
		}
	}
}

// Run executes one pipeline run to completion or failure. On failure the
// debug snapshot absorbs the error and no reply post is created; the
// triggering post is left alone either way.
func (r *Responder) Run(ctx context.Context, post posts.Post, botName string) {
	if err := r.run(ctx, post, botName); err != nil {
		log.Println("bot response failed:", err)
		sentry.CaptureException(err)
		r.debug.Record(post.Id, botName, func(s *Snapshot) {
			s.Step = StepError
			s.Error = err.Error()
		})
	}
}

func (r *Responder) run(ctx context.Context, post posts.Post, botName string) error {
	if r.client == nil {
		return errors.New("no model client configured")
	}

	r.debug.Record(post.Id, botName, func(s *Snapshot) {
		s.Step = StepAnalyzing
	})

	threadCtx := r.store.GetThreadContext(post.Id)
	analysisPrompt := buildAnalysisPrompt(post, threadCtx)
	r.debug.Record(post.Id, botName, func(s *Snapshot) {
		s.AnalysisPrompt = analysisPrompt
	})

	analysis, err := r.client.Complete(ctx, "", analysisPrompt)
	if err != nil {
		return err
	}
	r.debug.Record(post.Id, botName, func(s *Snapshot) {
		s.AnalysisResponse = analysis
		s.Step = StepGenerating
	})

	// Never build the final prompt from an empty analysis.
	if strings.TrimSpace(analysis) == "" {
		analysis = fmt.Sprintf("The user tweeted: %s", post.Text)
	}

	finalPrompt := buildFinalPrompt(post.Author, analysis)
	r.debug.Record(post.Id, botName, func(s *Snapshot) {
		s.FinalPrompt = finalPrompt
	})

	reply, err := r.client.Complete(ctx, responseSystemPrompt(botName), finalPrompt)
	if err != nil {
		return err
	}
	if !strings.HasPrefix(reply, "@"+post.Author) {
		reply = "@" + post.Author + " " + reply
	}
	r.debug.Record(post.Id, botName, func(s *Snapshot) {
		s.FinalResponse = reply
		s.Step = StepCompleted
	})

	parentId := post.Id
	_, err = r.store.Create(reply, botName, &parentId)
	return err
}
