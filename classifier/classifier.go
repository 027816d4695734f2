package classifier

import (
	"student-success-api/generator"
)

// Classifier predicts resultat_final for one feature set.
type Classifier interface {
	Predict(f Features) int
	Version() string
}

// ScoreClassifier applies the dataset's own outcome score to submitted
// features. It is the baseline until a trained model is plugged in.
type ScoreClassifier struct{}

func (ScoreClassifier) Predict(f Features) int {
	return generator.DeriveResultatFinal(
		generator.Score(f.MoyenneS2, f.Discipline, f.Satisfaction, f.NbModulesEchoues, f.TravailParallele),
	)
}

func (ScoreClassifier) Version() string { return "score-rule-v1" }

const (
	RecommendContinue  = "Bon niveau – Continuer les efforts"
	RecommendTutoring  = "Tutorats intensifs recommandés"
	RecommendReinforce = "Renforcement académique conseillé"
)

// Recommend turns a prediction into the advice shown next to it.
func Recommend(prediction, nbModulesEchoues int) string {
	switch {
	case prediction == 1:
		return RecommendContinue
	case nbModulesEchoues >= 3:
		return RecommendTutoring
	default:
		return RecommendReinforce
	}
}

// Prediction is a classifier output with its recommendation.
type Prediction struct {
	Prediction     int    `json:"prediction"`
	Recommendation string `json:"recommandation"`
	ModelVersion   string `json:"model_version"`
}

func PredictWith(c Classifier, f Features) Prediction {
	p := c.Predict(f)
	return Prediction{
		Prediction:     p,
		Recommendation: Recommend(p, f.NbModulesEchoues),
		ModelVersion:   c.Version(),
	}
}
