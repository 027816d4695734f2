package generator

import (
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

const (
	minModulesEchoues = 0
	maxModulesEchoues = 4

	// At or above this many failed modules both semester averages are capped.
	modulesCapThreshold = 3
	cappedAverage       = 9.0

	minAverage = 6.0
	maxAverage = 16.0
	averageSD  = 1.5
	bacOffset  = 0.5

	minHours = 0.0
	maxHours = 30.0
	hoursSD  = 4.0

	minNote = 1.0
	maxNote = 5.0
	noteSD  = 0.8
)

// Sampler draws student records from one random stream. A Sampler is not
// safe for concurrent use; give each goroutine its own.
type Sampler struct {
	params Params
	src    rand.Source
	rnd    *rand.Rand

	typeBac  distuv.Categorical
	parcours distuv.Categorical
	modules  distuv.Categorical
	travail  distuv.Categorical
}

// NewSource returns a seeded stream. Streams with the same seed and a
// different stream number are independent.
func NewSource(seed, stream uint64) rand.Source {
	return rand.NewPCG(seed, stream)
}

func NewSampler(p Params, src rand.Source) (*Sampler, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &Sampler{
		params:   p,
		src:      src,
		rnd:      rand.New(src),
		typeBac:  distuv.NewCategorical(p.TypeBac.Weights, src),
		parcours: distuv.NewCategorical(p.Parcours.Weights, src),
		modules:  distuv.NewCategorical(p.ModulesEchoues.Weights, src),
		travail:  distuv.NewCategorical(p.TravailParallele.Weights, src),
	}, nil
}

// Sample draws one record. The draw order is fixed:
//
//  1. age, type_bac, parcours (independent noise attributes)
//  2. moyenne_bac, then moyenne_s1 from bac, then moyenne_s2 from the clipped s1
//  3. nb_modules_echoues
//  4. the failed-modules cap on s1 and s2
//  5. moyenne_generale_s1_s2 and reussite_generale from the capped averages
//  6. heures_travail_semaine and discipline from the capped s2, satisfaction
//     from discipline
//  7. travail_parallele
//  8. resultat_final from the finished attribute set
//
// Every field after step 4 sees post-cap averages only.
func (s *Sampler) Sample() Record {
	var r Record

	r.Age = s.params.AgeMin + s.rnd.IntN(s.params.AgeMax-s.params.AgeMin)
	r.TypeBac = s.params.TypeBac.Values[int(s.typeBac.Rand())]
	r.Parcours = s.params.Parcours.Values[int(s.parcours.Rand())]

	r.MoyenneBac = round(s.uniform(s.params.BacMin, s.params.BacMax), 2)
	s1 := round(clip(s.normal(r.MoyenneBac-bacOffset, averageSD), minAverage, maxAverage), 2)
	s2 := round(clip(s.normal(s1, averageSD), minAverage, maxAverage), 2)
	r.NbModulesEchoues = s.params.ModulesEchoues.Values[int(s.modules.Rand())]

	r.MoyenneS1, r.MoyenneS2 = capAverages(r.NbModulesEchoues, s1, s2)

	r.MoyenneGenerale = (r.MoyenneS1 + r.MoyenneS2) / 2
	r.ReussiteGenerale = DeriveReussiteGenerale(r.MoyenneGenerale)

	r.HeuresTravail = round(clip(s.normal(8+(r.MoyenneS2-10)/2, hoursSD), minHours, maxHours), 1)
	r.Discipline = truncNote(s.normal(3.2+(r.MoyenneS2-10)/3, noteSD))
	r.Satisfaction = truncNote(s.normal(3.0+float64(r.Discipline)/4, noteSD))

	r.TravailParallele = s.params.TravailParallele.Values[int(s.travail.Rand())]

	r.ResultatFinal = DeriveResultatFinal(r.Score())
	return r
}

func (s *Sampler) normal(mu, sigma float64) float64 {
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: s.src}.Rand()
}

func (s *Sampler) uniform(lo, hi float64) float64 {
	return distuv.Uniform{Min: lo, Max: hi, Src: s.src}.Rand()
}

// capAverages applies the failed-modules rule to raw semester averages.
func capAverages(nbModulesEchoues int, s1, s2 float64) (float64, float64) {
	if nbModulesEchoues >= modulesCapThreshold {
		return math.Min(s1, cappedAverage), math.Min(s2, cappedAverage)
	}
	return s1, s2
}

// truncNote clips to [1, 5] and truncates toward zero. Truncation, not
// rounding, is what the reference datasets were produced with.
func truncNote(v float64) int {
	return int(math.Trunc(clip(v, minNote, maxNote)))
}

func clip(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, places int) float64 {
	p := math.Pow10(places)
	return math.Round(v*p) / p
}
