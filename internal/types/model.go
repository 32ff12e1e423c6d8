package types

type ModelMetrics struct {
	RMSE float64 `json:"rmse"`
	MAE  float64 `json:"mae"`
}

// ModelVersionInfo is persisted as a sidecar next to each trained artifact.
// The Timestamp string is the version identifier: equality between on-disk
// latest and in-memory loaded is the sole staleness signal.
type ModelVersionInfo struct {
	Timestamp  string         `json:"timestamp"`
	TestSize   float64        `json:"test_size"`
	Parameters map[string]any `json:"parameters"`
	Metrics    ModelMetrics   `json:"metrics"`
}
