package curator

import "context"

// Prompt is one request to a text model.
type Prompt struct {
	// Purpose is recorded in the AI call log (models.AIPurposeCuration, models.AIPurposeChat).
	Purpose string
	System  string
	Text    string
	// JSON asks the model for an application/json response.
	JSON bool
}

// Generation is the model's answer.
type Generation struct {
	Text  string
	Model string
}

// Generator is a text model. gemini.Client is the production implementation.
type Generator interface {
	Generate(ctx context.Context, p Prompt) (*Generation, error)
}
