package embedding

import "context"

// Provider defines the interface for generating text embeddings. One call
// embeds one text; batching is the caller's concern.
type Provider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
