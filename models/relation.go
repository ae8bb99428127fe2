package models

// ToggleResult is the state of a (user, target) relation after a toggle.
type ToggleResult struct {
	Active bool  `json:"active"`
	Count  int64 `json:"count"`
}

const (
	ActionLike  = "like"
	ActionScrap = "scrap"
)

type CommunityAction struct {
	Type string `json:"type"`
}
