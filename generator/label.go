package generator

const (
	TravailOui = "Oui"
	TravailNon = "Non"

	successThreshold = 6.0
	passingAverage   = 10.0
)

// Score is the weighted outcome score. Weights and the threshold applied by
// DeriveResultatFinal are fixed so that generated datasets stay comparable.
func Score(moyenneS2, discipline, satisfaction float64, nbModulesEchoues int, travailParallele string) float64 {
	bonus := -0.1
	if travailParallele == TravailNon {
		bonus = 0.1
	}
	return 0.4*moyenneS2 +
		0.3*discipline +
		0.1*satisfaction +
		0.1*float64(maxModulesEchoues-nbModulesEchoues) +
		bonus
}

func DeriveResultatFinal(score float64) int {
	if score >= successThreshold {
		return 1
	}
	return 0
}

func DeriveReussiteGenerale(moyenneGenerale float64) int {
	if moyenneGenerale >= passingAverage {
		return 1
	}
	return 0
}
