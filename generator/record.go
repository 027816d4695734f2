package generator

import (
	"strconv"
)

// Column names of the dataset file, in file order.
const (
	ColAge              = "age"
	ColTypeBac          = "type_bac"
	ColParcours         = "parcours"
	ColMoyenneBac       = "moyenne_bac"
	ColMoyenneS1        = "moyenne_s1"
	ColMoyenneS2        = "moyenne_s2"
	ColMoyenneGenerale  = "moyenne_generale_s1_s2"
	ColModulesEchoues   = "nb_modules_echoues"
	ColHeuresTravail    = "heures_travail_semaine"
	ColDiscipline       = "discipline_note_sur_5"
	ColSatisfaction     = "satisfaction_parcours_note_sur_5"
	ColTravailParallele = "travail_parallele"
	ColReussiteGenerale = "reussite_generale"
	ColResultatFinal    = "resultat_final"
)

var Columns = []string{
	ColAge,
	ColTypeBac,
	ColParcours,
	ColMoyenneBac,
	ColMoyenneS1,
	ColMoyenneS2,
	ColMoyenneGenerale,
	ColModulesEchoues,
	ColHeuresTravail,
	ColDiscipline,
	ColSatisfaction,
	ColTravailParallele,
	ColReussiteGenerale,
	ColResultatFinal,
}

// Record is one synthesized student. Values are never mutated after Sample
// returns them.
type Record struct {
	Age              int     `json:"age"`
	TypeBac          string  `json:"type_bac"`
	Parcours         string  `json:"parcours"`
	MoyenneBac       float64 `json:"moyenne_bac"`
	MoyenneS1        float64 `json:"moyenne_s1"`
	MoyenneS2        float64 `json:"moyenne_s2"`
	MoyenneGenerale  float64 `json:"moyenne_generale_s1_s2"`
	NbModulesEchoues int     `json:"nb_modules_echoues"`
	HeuresTravail    float64 `json:"heures_travail_semaine"`
	Discipline       int     `json:"discipline_note_sur_5"`
	Satisfaction     int     `json:"satisfaction_parcours_note_sur_5"`
	TravailParallele string  `json:"travail_parallele"`
	ReussiteGenerale int     `json:"reussite_generale"`
	ResultatFinal    int     `json:"resultat_final"`
}

// Score recomputes the outcome score from the stored attributes.
func (r Record) Score() float64 {
	return Score(r.MoyenneS2, float64(r.Discipline), float64(r.Satisfaction), r.NbModulesEchoues, r.TravailParallele)
}

// Row formats the record in Columns order.
func (r Record) Row() []string {
	return []string{
		strconv.Itoa(r.Age),
		r.TypeBac,
		r.Parcours,
		FormatFloat(r.MoyenneBac),
		FormatFloat(r.MoyenneS1),
		FormatFloat(r.MoyenneS2),
		FormatFloat(r.MoyenneGenerale),
		strconv.Itoa(r.NbModulesEchoues),
		FormatFloat(r.HeuresTravail),
		strconv.Itoa(r.Discipline),
		strconv.Itoa(r.Satisfaction),
		r.TravailParallele,
		strconv.Itoa(r.ReussiteGenerale),
		strconv.Itoa(r.ResultatFinal),
	}
}

// FormatFloat writes the shortest representation that parses back to v.
func FormatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
