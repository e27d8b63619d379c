package types

// Edge is a directed association between two memory ids, the unit the
// waypoint graph stores and the decay engine propagates reinforcement
// along.
type Edge struct {
	Weight    float64 `json:"weight"`
	CreatedAt int64   `json:"created_at"` // ms epoch
	UpdatedAt int64   `json:"updated_at"` // ms epoch
}
