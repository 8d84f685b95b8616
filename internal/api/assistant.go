package api

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ShayCichocki/topshelf/pkg/models"
)

// historyWindow is how many trailing transcript entries accompany each
// brain call.
const historyWindow = 10

// DecideRequest carries one user turn to the assistant brain.
type DecideRequest struct {
	Message  string
	History  []models.Message
	Brand    models.BrandContext
	Products []models.Product
}

// AssistantBrain decides which actions to take for a user turn. The
// production implementation is Client; tests substitute fakes.
type AssistantBrain interface {
	Decide(ctx context.Context, req DecideRequest) ([]models.Action, error)
}

const assistantSystemPrompt = `You are the Brain of TopShelf AI. You orchestrate the storefront synthesis process.
You receive a User Message, Conversation History, Current Brand Context, and Parsed Product Data.

YOUR TOOLS (Actions to return in JSON):
1. set_branding: Update companyName, primaryColor, or secondaryColor.
2. acknowledge_products: Confirm you've seen the products (if provided).
3. trigger_launch: If the user wants to "launch", "generate", or "build" the store.
4. trigger_deploy: If the user wants to deploy or publish the finished store.
5. chat: A polite, luxury-toned response to the user.

Return only a JSON object of the form:
{
  "actions": [
    { "type": "set_branding", "payload": { "companyName": "...", "primaryColor": "..." } },
    { "type": "chat", "payload": "Certainly, I've updated your palette..." },
    { "type": "trigger_launch" }
  ]
}`

// Decide asks the model which actions to take for this turn.
func (c *Client) Decide(ctx context.Context, req DecideRequest) ([]models.Action, error) {
	prompt, err := buildDecidePrompt(req)
	if err != nil {
		return nil, err
	}

	text, err := c.complete(ctx, assistantSystemPrompt, prompt, 2048)
	if err != nil {
		return nil, fmt.Errorf("assistant call: %w", err)
	}

	return ParseActions(text)
}

func buildDecidePrompt(req DecideRequest) (string, error) {
	history := req.History
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}

	historyJSON, err := json.Marshal(transcriptSummary(history))
	if err != nil {
		return "", fmt.Errorf("encoding history: %w", err)
	}
	brandJSON, err := json.Marshal(req.Brand)
	if err != nil {
		return "", fmt.Errorf("encoding brand context: %w", err)
	}

	return fmt.Sprintf(
		"Current Context: %s\nProducts Available: %d items.\n\nHistory: %s\nUser Message: %q",
		brandJSON, len(req.Products), historyJSON, req.Message,
	), nil
}

// transcriptSummary flattens messages to role/content pairs; the model
// does not need IDs or timestamps.
func transcriptSummary(history []models.Message) []map[string]string {
	out := make([]map[string]string, 0, len(history))
	for _, m := range history {
		out = append(out, map[string]string{
			"role":    string(m.Role),
			"content": m.Content,
		})
	}
	return out
}

// ParseActions decodes the brain's response into an ordered action list,
// tolerating code-fence wrapping.
func ParseActions(raw string) ([]models.Action, error) {
	cleaned := StripFences(raw)

	var resp struct {
		Actions []models.Action `json:"actions"`
	}
	if err := json.Unmarshal([]byte(cleaned), &resp); err != nil {
		return nil, &MalformedResponseError{
			Call:    "assistant",
			Excerpt: Excerpt(raw, excerptLen),
			Err:     err,
		}
	}
	return resp.Actions, nil
}
