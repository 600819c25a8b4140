package llm

import "context"

// Client is the opaque text-generation collaborator. Each call is a single
// non-streaming request: full prompt in, plain completion out.
type Client interface {
	Complete(ctx context.Context, system string, prompt string) (string, error)
}
