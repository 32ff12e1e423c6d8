package predictor

import (
	"math"
	"math/rand"
)

type Metrics struct {
	RMSE float64
	MAE  float64
}

// TrainTestSplit shuffles the ratings and holds out testSize of them for
// evaluation. testSize outside (0,1) keeps everything in the train set.
func TrainTestSplit(ratings []Rating, testSize float64, seed int64) (train, test []Rating) {
	if testSize <= 0 || testSize >= 1 || len(ratings) < 2 {
		return ratings, nil
	}

	shuffled := make([]Rating, len(ratings))
	copy(shuffled, ratings)
	rng := rand.New(rand.NewSource(seed))
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	nTest := int(math.Round(float64(len(shuffled)) * testSize))
	if nTest < 1 {
		nTest = 1
	}
	if nTest >= len(shuffled) {
		nTest = len(shuffled) - 1
	}
	return shuffled[nTest:], shuffled[:nTest]
}

// Evaluate computes RMSE and MAE of the model over a held-out test set.
func Evaluate(m *Model, test []Rating) Metrics {
	if len(test) == 0 {
		return Metrics{}
	}

	var sqSum, absSum float64
	for _, r := range test {
		diff := m.Predict(r.UserID, r.ItemID) - r.Score
		sqSum += diff * diff
		absSum += math.Abs(diff)
	}
	n := float64(len(test))
	return Metrics{
		RMSE: math.Sqrt(sqSum / n),
		MAE:  absSum / n,
	}
}
