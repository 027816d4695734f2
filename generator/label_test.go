package generator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScore(t *testing.T) {
	tests := []struct {
		name         string
		s2           float64
		discipline   float64
		satisfaction float64
		nb           int
		travail      string
		wantScore    float64
		wantResult   int
	}{
		{"strong student without job", 14, 5, 4, 0, TravailNon, 8.0, 1},
		{"weak student with job", 6, 1, 1, 4, TravailOui, 2.7, 0},
		{"job flips the bonus", 14, 5, 4, 0, TravailOui, 7.8, 1},
		{"average student", 10, 3, 3, 2, TravailNon, 5.5, 0},
		{"unknown job value counts as working", 12, 4, 4, 1, "unspecified", 6.6, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Score(tt.s2, tt.discipline, tt.satisfaction, tt.nb, tt.travail)
			assert.InDelta(t, tt.wantScore, got, 1e-9)
			assert.Equal(t, tt.wantResult, DeriveResultatFinal(got))
		})
	}
}

func TestDeriveResultatFinal(t *testing.T) {
	assert.Equal(t, 1, DeriveResultatFinal(8.0))
	assert.Equal(t, 1, DeriveResultatFinal(6.0))
	assert.Equal(t, 0, DeriveResultatFinal(5.999))
	assert.Equal(t, 0, DeriveResultatFinal(2.7))
}

func TestDeriveReussiteGenerale(t *testing.T) {
	assert.Equal(t, 1, DeriveReussiteGenerale(10))
	assert.Equal(t, 1, DeriveReussiteGenerale(14.25))
	assert.Equal(t, 0, DeriveReussiteGenerale(9.995))
}

func TestRecordScore(t *testing.T) {
	r := Record{
		MoyenneS2:        14,
		Discipline:       5,
		Satisfaction:     4,
		NbModulesEchoues: 0,
		TravailParallele: TravailNon,
	}
	assert.InDelta(t, 8.0, r.Score(), 1e-9)
	assert.Equal(t, 1, DeriveResultatFinal(r.Score()))
}
