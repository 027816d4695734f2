package generator

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"student-success-api/metrics"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Generate draws n records from s, in order. n <= 0 yields an empty dataset.
func Generate(n int, s *Sampler) []Record {
	if n <= 0 {
		return []Record{}
	}
	records := make([]Record, n)
	for i := range records {
		records[i] = s.Sample()
	}
	return records
}

// GenerateParallel splits n records over workers independent streams derived
// from seed. Worker i owns stream i+1 and fills a contiguous chunk, so the
// result is identical for a fixed (seed, workers) pair.
func GenerateParallel(n, workers int, seed uint64, p Params) ([]Record, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if n <= 0 {
		return []Record{}, nil
	}
	if workers < 1 {
		workers = 1
	}
	if workers > n {
		workers = n
	}

	records := make([]Record, n)
	chunk := (n + workers - 1) / workers

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, n)
		if lo >= hi {
			break
		}
		stream := uint64(w) + 1
		g.Go(func() error {
			s, err := NewSampler(p, NewSource(seed, stream))
			if err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				records[i] = s.Sample()
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return records, nil
}

// Run is one generation run: a dataset plus what is needed to reproduce it.
type Run struct {
	ID        uuid.UUID
	Seed      uint64
	Workers   int
	CreatedAt time.Time
	Records   []Record
}

func NewRun(n, workers int, seed uint64, p Params) (*Run, error) {
	start := time.Now()
	records, err := GenerateParallel(n, workers, seed, p)
	if err != nil {
		return nil, fmt.Errorf("generate dataset: %w", err)
	}
	metrics.RecordsGenerated.Add(float64(len(records)))
	metrics.GenerationDuration.Observe(time.Since(start).Seconds())

	return &Run{
		ID:        uuid.New(),
		Seed:      seed,
		Workers:   workers,
		CreatedAt: start.UTC(),
		Records:   records,
	}, nil
}

// SuccessRate is the share of records with resultat_final = 1.
func (r *Run) SuccessRate() float64 {
	if len(r.Records) == 0 {
		return 0
	}
	ok := 0
	for _, rec := range r.Records {
		ok += rec.ResultatFinal
	}
	return float64(ok) / float64(len(r.Records))
}

// WriteCSV writes a header row and every record.
func WriteCSV(w io.Writer, records []Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range records {
		if err := cw.Write(r.Row()); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
