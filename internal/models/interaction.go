package models

// Interaction metadata lives in Redis, never in the session document.
// Losing it resets presentation niceties without touching quiz correctness.

// ConfidenceMin/Max bound the self-reported certainty scale.
const (
	ConfidenceMin = 1
	ConfidenceMax = 5
)

// Preferences are per-user feature toggles for the interactive client.
type Preferences struct {
	Haptics  bool   `json:"haptics"`
	Sound    bool   `json:"sound"`
	FontSize string `json:"font_size"`
}

// DefaultPreferences matches a fresh client install.
func DefaultPreferences() Preferences {
	return Preferences{Haptics: true, Sound: true, FontSize: "medium"}
}

// InteractionSnapshot is what the sidecar returns for one session.
type InteractionSnapshot struct {
	Confidence  map[string]int `json:"confidence"`
	Bookmarks   []string       `json:"bookmarks"`
	Preferences Preferences    `json:"preferences"`
}
