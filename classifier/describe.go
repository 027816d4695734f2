package classifier

import (
	"math"
	"sort"

	"student-success-api/generator"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// ColumnSummary is the per-column summary shown for an uploaded table.
type ColumnSummary struct {
	Column string  `json:"column"`
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
	Min    float64 `json:"min"`
	Q25    float64 `json:"q25"`
	Median float64 `json:"median"`
	Q75    float64 `json:"q75"`
	Max    float64 `json:"max"`
}

var numericColumns = []string{
	generator.ColAge,
	generator.ColMoyenneBac,
	generator.ColMoyenneS1,
	generator.ColMoyenneS2,
	generator.ColMoyenneGenerale,
	generator.ColModulesEchoues,
	generator.ColHeuresTravail,
	generator.ColDiscipline,
	generator.ColSatisfaction,
}

func (f Features) numeric(col string) float64 {
	switch col {
	case generator.ColAge:
		return f.Age
	case generator.ColMoyenneBac:
		return f.MoyenneBac
	case generator.ColMoyenneS1:
		return f.MoyenneS1
	case generator.ColMoyenneS2:
		return f.MoyenneS2
	case generator.ColMoyenneGenerale:
		return f.MoyenneGenerale
	case generator.ColModulesEchoues:
		return float64(f.NbModulesEchoues)
	case generator.ColHeuresTravail:
		return f.HeuresTravail
	case generator.ColDiscipline:
		return f.Discipline
	case generator.ColSatisfaction:
		return f.Satisfaction
	}
	return math.NaN()
}

// Describe summarizes every numeric feature column. Std is the sample
// standard deviation, reported as 0 for a single row.
func Describe(rows []Features) []ColumnSummary {
	if len(rows) == 0 {
		return []ColumnSummary{}
	}
	out := make([]ColumnSummary, 0, len(numericColumns))
	x := make([]float64, len(rows))
	for _, col := range numericColumns {
		for i, f := range rows {
			x[i] = f.numeric(col)
		}
		sorted := append([]float64(nil), x...)
		sort.Float64s(sorted)

		mean, std := stat.MeanStdDev(x, nil)
		if len(x) < 2 {
			std = 0
		}
		out = append(out, ColumnSummary{
			Column: col,
			Count:  len(x),
			Mean:   mean,
			Std:    std,
			Min:    floats.Min(x),
			Q25:    stat.Quantile(0.25, stat.LinInterp, sorted, nil),
			Median: stat.Quantile(0.5, stat.LinInterp, sorted, nil),
			Q75:    stat.Quantile(0.75, stat.LinInterp, sorted, nil),
			Max:    floats.Max(x),
		})
	}
	return out
}

// LabelCounts counts rows per resultat_final value, ignoring unlabelled rows.
func LabelCounts(obs []Observation) map[int]int {
	counts := map[int]int{}
	for _, o := range obs {
		if o.ResultatFinal != nil {
			counts[*o.ResultatFinal]++
		}
	}
	return counts
}
