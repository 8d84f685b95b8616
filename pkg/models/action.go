package models

import "encoding/json"

// ActionType tags an action returned by the assistant brain.
type ActionType string

const (
	// ActionSetBranding updates fields of the brand context.
	ActionSetBranding ActionType = "set_branding"
	// ActionChat emits a conversational reply to the user.
	ActionChat ActionType = "chat"
	// ActionAcknowledgeProducts confirms the assistant has seen the catalog.
	ActionAcknowledgeProducts ActionType = "acknowledge_products"
	// ActionTriggerLaunch starts the storefront synthesis pipeline.
	ActionTriggerLaunch ActionType = "trigger_launch"
	// ActionTriggerDeploy deploys the generated storefront.
	ActionTriggerDeploy ActionType = "trigger_deploy"
)

// Action is one tagged instruction from the assistant brain. Payload shape
// depends on Type: a partial BrandContext for set_branding, a string for
// chat, absent otherwise. Payload is kept raw so malformed shapes can be
// decoded defensively at dispatch time.
type Action struct {
	Type    ActionType      `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// BrandingPayload decodes the payload as a partial BrandContext.
// Malformed payloads yield the zero value rather than an error; a zero
// patch is a no-op under BrandContext.Merge.
func (a Action) BrandingPayload() BrandContext {
	var patch BrandContext
	if len(a.Payload) == 0 {
		return patch
	}
	_ = json.Unmarshal(a.Payload, &patch)
	return patch
}

// ChatPayload decodes the payload as a chat string. Returns "" for
// malformed or missing payloads.
func (a Action) ChatPayload() string {
	if len(a.Payload) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(a.Payload, &s); err == nil {
		return s
	}
	// Some model responses wrap the text in an object.
	var obj struct {
		Message string `json:"message"`
		Text    string `json:"text"`
	}
	if err := json.Unmarshal(a.Payload, &obj); err == nil {
		if obj.Message != "" {
			return obj.Message
		}
		return obj.Text
	}
	return ""
}
