package classifier

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"student-success-api/generator"
)

// Unspecified replaces categorical attributes missing from a submitted record.
const Unspecified = "unspecified"

// legacyMoyenneGenerale is the column name older clients send for the
// general average.
const legacyMoyenneGenerale = "moyenne_generale"

var ErrInvalidRecord = errors.New("invalid student record")

// maxModulesEchoues bounds a submitted failed-modules count.
const maxModulesEchoues = 1000

// FeatureColumns is the model-facing column order: every dataset column
// except the two outcome labels.
var FeatureColumns = []string{
	generator.ColAge,
	generator.ColTypeBac,
	generator.ColParcours,
	generator.ColMoyenneBac,
	generator.ColMoyenneS1,
	generator.ColMoyenneS2,
	generator.ColMoyenneGenerale,
	generator.ColModulesEchoues,
	generator.ColHeuresTravail,
	generator.ColDiscipline,
	generator.ColSatisfaction,
	generator.ColTravailParallele,
}

var categoricalColumns = map[string]bool{
	generator.ColTypeBac:          true,
	generator.ColParcours:         true,
	generator.ColTravailParallele: true,
}

// Features is the input of a classifier. Discipline and satisfaction are
// real-valued because form and API clients may send fractional notes.
type Features struct {
	Age              float64 `json:"age"`
	TypeBac          string  `json:"type_bac"`
	Parcours         string  `json:"parcours"`
	MoyenneBac       float64 `json:"moyenne_bac"`
	MoyenneS1        float64 `json:"moyenne_s1"`
	MoyenneS2        float64 `json:"moyenne_s2"`
	MoyenneGenerale  float64 `json:"moyenne_generale_s1_s2"`
	NbModulesEchoues int     `json:"nb_modules_echoues"`
	HeuresTravail    float64 `json:"heures_travail_semaine"`
	Discipline       float64 `json:"discipline_note_sur_5"`
	Satisfaction     float64 `json:"satisfaction_parcours_note_sur_5"`
	TravailParallele string  `json:"travail_parallele"`
}

// FromRecord drops the outcome labels of a generated record.
func FromRecord(r generator.Record) Features {
	return Features{
		Age:              float64(r.Age),
		TypeBac:          r.TypeBac,
		Parcours:         r.Parcours,
		MoyenneBac:       r.MoyenneBac,
		MoyenneS1:        r.MoyenneS1,
		MoyenneS2:        r.MoyenneS2,
		MoyenneGenerale:  r.MoyenneGenerale,
		NbModulesEchoues: r.NbModulesEchoues,
		HeuresTravail:    r.HeuresTravail,
		Discipline:       float64(r.Discipline),
		Satisfaction:     float64(r.Satisfaction),
		TravailParallele: r.TravailParallele,
	}
}

// FromMap builds features from a loosely typed record. Absent columns get
// zero, or Unspecified for categorical columns. Present values of the wrong
// type are an error.
func FromMap(m map[string]any) (Features, error) {
	values := make(map[string]any, len(m))
	for k, v := range m {
		values[k] = v
	}
	if _, ok := values[generator.ColMoyenneGenerale]; !ok {
		if v, ok := values[legacyMoyenneGenerale]; ok {
			values[generator.ColMoyenneGenerale] = v
		}
	}

	var f Features
	num := map[string]*float64{
		generator.ColAge:             &f.Age,
		generator.ColMoyenneBac:      &f.MoyenneBac,
		generator.ColMoyenneS1:       &f.MoyenneS1,
		generator.ColMoyenneS2:       &f.MoyenneS2,
		generator.ColMoyenneGenerale: &f.MoyenneGenerale,
		generator.ColHeuresTravail:   &f.HeuresTravail,
		generator.ColDiscipline:      &f.Discipline,
		generator.ColSatisfaction:    &f.Satisfaction,
	}
	cat := map[string]*string{
		generator.ColTypeBac:          &f.TypeBac,
		generator.ColParcours:         &f.Parcours,
		generator.ColTravailParallele: &f.TravailParallele,
	}

	for _, col := range FeatureColumns {
		v, present := values[col]
		if !present || v == nil {
			if categoricalColumns[col] {
				*cat[col] = Unspecified
			}
			continue
		}
		if categoricalColumns[col] {
			s, ok := v.(string)
			if !ok {
				return Features{}, fmt.Errorf("%w: %s must be a string", ErrInvalidRecord, col)
			}
			if strings.TrimSpace(s) == "" {
				s = Unspecified
			}
			*cat[col] = s
			continue
		}
		n, err := toFloat(v)
		if err != nil {
			return Features{}, fmt.Errorf("%w: %s: %v", ErrInvalidRecord, col, err)
		}
		if col == generator.ColModulesEchoues {
			if n != math.Trunc(n) || n < 0 || n > maxModulesEchoues {
				return Features{}, fmt.Errorf("%w: %s must be a whole count, got %v", ErrInvalidRecord, col, v)
			}
			f.NbModulesEchoues = int(n)
			continue
		}
		*num[col] = n
	}
	return f, nil
}

// toFloat converts a loosely typed value to a finite number.
func toFloat(v any) (float64, error) {
	n, err := parseNumber(v)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, fmt.Errorf("non-finite value %v", v)
	}
	return n, nil
}

func parseNumber(v any) (float64, error) {
	switch x := v.(type) {
	case float64:
		return x, nil
	case float32:
		return float64(x), nil
	case int:
		return float64(x), nil
	case int64:
		return float64(x), nil
	case json.Number:
		return x.Float64()
	case string:
		if strings.TrimSpace(x) == "" {
			return 0, nil
		}
		return strconv.ParseFloat(strings.TrimSpace(x), 64)
	case bool:
		if x {
			return 1, nil
		}
		return 0, nil
	default:
		return 0, fmt.Errorf("unsupported value %v", v)
	}
}

// Observation is one row of an uploaded table. ResultatFinal is set only
// when the table carries the label column.
type Observation struct {
	Features      Features
	ResultatFinal *int
}

// ReadCSV parses a table with a header row. Outcome columns are optional
// and never fed to the classifier.
func ReadCSV(r io.Reader) ([]Observation, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff"))
	}

	var out []Observation
	for line := 2; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}
		m := make(map[string]any, len(header))
		for i, col := range header {
			if i < len(row) {
				m[col] = row[i]
			}
		}
		f, err := FromMap(m)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		obs := Observation{Features: f}
		if v, ok := m[generator.ColResultatFinal].(string); ok && v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w: resultat_final %q", line, ErrInvalidRecord, v)
			}
			obs.ResultatFinal = &n
		}
		out = append(out, obs)
	}
	return out, nil
}
