package generator

import (
	"errors"
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

var ErrInvalidWeights = errors.New("invalid distribution weights")

// Categorical is a finite distribution over labelled outcomes.
type Categorical struct {
	Values  []string  `yaml:"values"`
	Weights []float64 `yaml:"weights"`
}

// IntCategorical is a finite distribution over integer outcomes.
type IntCategorical struct {
	Values  []int     `yaml:"values"`
	Weights []float64 `yaml:"weights"`
}

// Params holds the shared distribution parameters of a generation run.
// The normal-draw means and spreads of the academic attributes are fixed.
type Params struct {
	AgeMin           int            `yaml:"age_min"`
	AgeMax           int            `yaml:"age_max"`
	BacMin           float64        `yaml:"bac_min"`
	BacMax           float64        `yaml:"bac_max"`
	TypeBac          Categorical    `yaml:"type_bac"`
	Parcours         Categorical    `yaml:"parcours"`
	ModulesEchoues   IntCategorical `yaml:"nb_modules_echoues"`
	TravailParallele Categorical    `yaml:"travail_parallele"`
}

func DefaultParams() Params {
	return Params{
		AgeMin: 19,
		AgeMax: 31,
		BacMin: 11,
		BacMax: 18,
		TypeBac: Categorical{
			Values:  []string{"Mathématiques", "Sciences", "Technique", "Informatique"},
			Weights: []float64{0.25, 0.20, 0.15, 0.40},
		},
		Parcours: Categorical{
			Values:  []string{"Licence", "Cycle Ingénieur", "Master"},
			Weights: []float64{0.50, 0.20, 0.30},
		},
		ModulesEchoues: IntCategorical{
			Values:  []int{0, 1, 2, 3, 4},
			Weights: []float64{0.35, 0.30, 0.18, 0.12, 0.05},
		},
		TravailParallele: Categorical{
			Values:  []string{TravailOui, TravailNon},
			Weights: []float64{0.35, 0.65},
		},
	}
}

// LoadParams reads a YAML parameter file on top of DefaultParams. Keys
// missing from the file keep their default value.
func LoadParams(path string) (Params, error) {
	p := DefaultParams()
	data, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read params file: %w", err)
	}
	if err := yaml.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("parse params file: %w", err)
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

func (p Params) Validate() error {
	if p.AgeMin >= p.AgeMax {
		return fmt.Errorf("age range [%d, %d) is empty", p.AgeMin, p.AgeMax)
	}
	if p.BacMin > p.BacMax {
		return fmt.Errorf("bac range [%v, %v] is empty", p.BacMin, p.BacMax)
	}
	if err := checkWeights("type_bac", len(p.TypeBac.Values), p.TypeBac.Weights); err != nil {
		return err
	}
	if err := checkWeights("parcours", len(p.Parcours.Values), p.Parcours.Weights); err != nil {
		return err
	}
	if err := checkWeights("travail_parallele", len(p.TravailParallele.Values), p.TravailParallele.Weights); err != nil {
		return err
	}
	if err := checkWeights("nb_modules_echoues", len(p.ModulesEchoues.Values), p.ModulesEchoues.Weights); err != nil {
		return err
	}
	for _, v := range p.ModulesEchoues.Values {
		if v < minModulesEchoues || v > maxModulesEchoues {
			return fmt.Errorf("nb_modules_echoues value %d outside [%d, %d]", v, minModulesEchoues, maxModulesEchoues)
		}
	}
	return nil
}

func checkWeights(name string, n int, weights []float64) error {
	if n == 0 {
		return fmt.Errorf("%w: %s has no values", ErrInvalidWeights, name)
	}
	if len(weights) != n {
		return fmt.Errorf("%w: %s has %d values and %d weights", ErrInvalidWeights, name, n, len(weights))
	}
	total := 0.0
	for _, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("%w: %s weight %v", ErrInvalidWeights, name, w)
		}
		total += w
	}
	if total <= 0 {
		return fmt.Errorf("%w: %s weights sum to %v", ErrInvalidWeights, name, total)
	}
	return nil
}
