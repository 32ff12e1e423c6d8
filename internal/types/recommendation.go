package types

import "time"

type CreditLevel string

const (
	CreditLevelFull    CreditLevel = "full"
	CreditLevelPartial CreditLevel = "partial"
	CreditLevelLimited CreditLevel = "limited"
)

// RecommendationItem is one scored chatroom. Immutable once created.
type RecommendationItem struct {
	ChatroomID            string      `json:"chatroom_id"`
	PredictedScore        float64     `json:"predicted_score"`
	MotivationMatch       float64     `json:"motivation_match"`
	PressureCompatibility float64     `json:"pressure_compatibility"`
	CreditLevel           CreditLevel `json:"credit_level"`
	Timestamp             time.Time   `json:"timestamp"`
}

// RecommendationFilter is supplied per request and never persisted.
type RecommendationFilter struct {
	TopK         *int     `json:"top_k,omitempty" yaml:"top_k"`
	MinScore     *float64 `json:"min_score,omitempty" yaml:"min_score"`
	Topics       []string `json:"topics,omitempty" yaml:"topics"`
	MinVibeScore *int     `json:"min_vibe_score,omitempty" yaml:"min_vibe_score"`
	MaxPressure  *int     `json:"max_pressure,omitempty" yaml:"max_pressure"`
}

// Thresholds gate derived features during generation. All comparisons are
// strict-greater, credit level is an exact match.
type Thresholds struct {
	Motivation  float64     `json:"motivation" yaml:"motivation"`
	Pressure    float64     `json:"pressure" yaml:"pressure"`
	CreditLevel CreditLevel `json:"credit_level" yaml:"credit_level"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		Motivation:  0.1,
		Pressure:    0.5,
		CreditLevel: CreditLevelPartial,
	}
}

// RecommendationList is the per-user cache entry value: the ordered items plus
// the filters and thresholds used to produce them.
type RecommendationList struct {
	UserID       string                `json:"user_id"`
	Items        []RecommendationItem  `json:"items"`
	Filters      *RecommendationFilter `json:"filters,omitempty"`
	Thresholds   Thresholds            `json:"thresholds"`
	ModelVersion string                `json:"model_version"`
	GeneratedAt  time.Time             `json:"generated_at"`
}
