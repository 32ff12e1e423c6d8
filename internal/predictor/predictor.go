// Package predictor implements the collaborative-filtering model used to
// score (user, chatroom) pairs: a biased matrix-factorization estimator
// trained by SGD on observed satisfaction scores.
package predictor

import (
	"math"
	"math/rand"
)

// Rating is one observed (user, item, score) triple.
type Rating struct {
	UserID string
	ItemID string
	Score  float64
}

type Params struct {
	NFactors int     `json:"n_factors"`
	NEpochs  int     `json:"n_epochs"`
	LRAll    float64 `json:"lr_all"`
	RegAll   float64 `json:"reg_all"`
}

func DefaultParams() Params {
	return Params{
		NFactors: 100,
		NEpochs:  20,
		LRAll:    0.005,
		RegAll:   0.02,
	}
}

// Model holds the learned factors. All fields are exported so the model can
// be serialized with encoding/gob. A Model is immutable once fitted.
type Model struct {
	GlobalMean  float64
	UserIndex   map[string]int
	ItemIndex   map[string]int
	UserBias    []float64
	ItemBias    []float64
	UserFactors [][]float64
	ItemFactors [][]float64
	MinScore    float64
	MaxScore    float64
}

// Fit trains a new model on the given ratings. The seed makes training
// reproducible in tests; pass a time-derived seed in production.
func Fit(ratings []Rating, p Params, seed int64) *Model {
	rng := rand.New(rand.NewSource(seed))

	m := &Model{
		UserIndex: make(map[string]int),
		ItemIndex: make(map[string]int),
		MinScore:  1,
		MaxScore:  5,
	}

	var sum float64
	for _, r := range ratings {
		sum += r.Score
		if _, ok := m.UserIndex[r.UserID]; !ok {
			m.UserIndex[r.UserID] = len(m.UserIndex)
		}
		if _, ok := m.ItemIndex[r.ItemID]; !ok {
			m.ItemIndex[r.ItemID] = len(m.ItemIndex)
		}
	}
	if len(ratings) > 0 {
		m.GlobalMean = sum / float64(len(ratings))
	}

	nUsers := len(m.UserIndex)
	nItems := len(m.ItemIndex)
	m.UserBias = make([]float64, nUsers)
	m.ItemBias = make([]float64, nItems)
	m.UserFactors = randomFactors(rng, nUsers, p.NFactors)
	m.ItemFactors = randomFactors(rng, nItems, p.NFactors)

	for epoch := 0; epoch < p.NEpochs; epoch++ {
		for _, r := range ratings {
			u := m.UserIndex[r.UserID]
			i := m.ItemIndex[r.ItemID]

			pred := m.GlobalMean + m.UserBias[u] + m.ItemBias[i] + dot(m.UserFactors[u], m.ItemFactors[i])
			err := r.Score - pred

			m.UserBias[u] += p.LRAll * (err - p.RegAll*m.UserBias[u])
			m.ItemBias[i] += p.LRAll * (err - p.RegAll*m.ItemBias[i])
			for f := 0; f < p.NFactors; f++ {
				uf := m.UserFactors[u][f]
				vf := m.ItemFactors[i][f]
				m.UserFactors[u][f] += p.LRAll * (err*vf - p.RegAll*uf)
				m.ItemFactors[i][f] += p.LRAll * (err*uf - p.RegAll*vf)
			}
		}
	}

	return m
}

// Predict estimates the satisfaction score for a (user, item) pair. Unknown
// users or items fall back to whatever biases are known, down to the global
// mean when neither side was seen during training.
func (m *Model) Predict(userID, itemID string) float64 {
	est := m.GlobalMean

	u, knownUser := m.UserIndex[userID]
	i, knownItem := m.ItemIndex[itemID]

	if knownUser {
		est += m.UserBias[u]
	}
	if knownItem {
		est += m.ItemBias[i]
	}
	if knownUser && knownItem {
		est += dot(m.UserFactors[u], m.ItemFactors[i])
	}

	return clamp(est, m.MinScore, m.MaxScore)
}

func randomFactors(rng *rand.Rand, n, factors int) [][]float64 {
	out := make([][]float64, n)
	for i := range out {
		row := make([]float64, factors)
		for f := range row {
			row[f] = rng.NormFloat64() * 0.1
		}
		out[i] = row
	}
	return out
}

func dot(a, b []float64) float64 {
	var s float64
	for i := range a {
		s += a[i] * b[i]
	}
	return s
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
