package generator

import "context"

// LLMClient abstracts the generation API so backends can be swapped or mocked.
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt) (string, error)
}

// LLMSettings is the backend configuration passed to constructors.
type LLMSettings struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
}
