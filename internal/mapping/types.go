package mapping

// Action describes what the caller should do with a suggestion target.
type Action string

const (
	ActionCreate      Action = "create"
	ActionCreateDraft Action = "create_draft"
	ActionLink        Action = "link"
)

// Suggestion is a proposed link or creation action for a downstream
// business entity. Suggestions are computed on demand and never persisted;
// executing one is the caller's responsibility.
type Suggestion struct {
	TargetEntityType string         `json:"targetEntityType"`
	Action           Action         `json:"action"`
	Description      string         `json:"description"`
	Payload          map[string]any `json:"payload"`
}
