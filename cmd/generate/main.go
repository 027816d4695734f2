package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"student-success-api/config"
	"student-success-api/generator"
	"student-success-api/metrics"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const loadTable = "synthetic_students"

const createLoadTable = `
CREATE TABLE IF NOT EXISTS synthetic_students (
	run_id                            UUID             NOT NULL,
	row_num                           INTEGER          NOT NULL,
	age                               INTEGER          NOT NULL,
	type_bac                          TEXT             NOT NULL,
	parcours                          TEXT             NOT NULL,
	moyenne_bac                       DOUBLE PRECISION NOT NULL,
	moyenne_s1                        DOUBLE PRECISION NOT NULL,
	moyenne_s2                        DOUBLE PRECISION NOT NULL,
	moyenne_generale_s1_s2            DOUBLE PRECISION NOT NULL,
	nb_modules_echoues                INTEGER          NOT NULL,
	heures_travail_semaine            DOUBLE PRECISION NOT NULL,
	discipline_note_sur_5             INTEGER          NOT NULL,
	satisfaction_parcours_note_sur_5  INTEGER          NOT NULL,
	travail_parallele                 TEXT             NOT NULL,
	reussite_generale                 INTEGER          NOT NULL,
	resultat_final                    INTEGER          NOT NULL,
	PRIMARY KEY (run_id, row_num)
)`

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	gen := cfg.Generator

	params := generator.DefaultParams()
	if gen.ParamsFile != "" {
		params, err = generator.LoadParams(gen.ParamsFile)
		if err != nil {
			log.Fatalf("generator params: %v", err)
		}
	}

	run, err := generator.NewRun(gen.Size, gen.Workers, gen.Seed, params)
	if err != nil {
		log.Fatalf("%v", err)
	}
	log.Printf("generated run=%s size=%d seed=%d workers=%d", run.ID, len(run.Records), run.Seed, run.Workers)

	if err := writeDataset(gen.OutputPath, run.Records); err != nil {
		log.Fatalf("write dataset: %v", err)
	}
	log.Printf("dataset written to %s", gen.OutputPath)

	if gen.LoadDSN != "" {
		loaded, err := loadRun(ctx, gen.LoadDSN, run)
		if err != nil {
			log.Fatalf("bulk load: %v", err)
		}
		log.Printf("loaded %d rows into %s", loaded, loadTable)
	}

	s := summarize(run.Records)
	log.Printf("summary: rows=%d resultat_final=1 %.1f%% reussite_generale=1 %.1f%% mean moyenne_generale_s1_s2=%.2f capped(nb>=3)=%d",
		s.Rows, 100*s.SuccessRate, 100*s.ReussiteRate, s.MeanGenerale, s.HighFailures)
}

func writeDataset(path string, records []generator.Record) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := generator.WriteCSV(f, records); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func loadRun(ctx context.Context, dsn string, run *generator.Run) (int64, error) {
	connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	dbPool, err := pgxpool.New(connectCtx, dsn)
	if err != nil {
		return 0, fmt.Errorf("db pool init: %w", err)
	}
	defer dbPool.Close()

	if err := dbPool.Ping(connectCtx); err != nil {
		return 0, fmt.Errorf("db ping: %w", err)
	}
	if _, err := dbPool.Exec(ctx, createLoadTable); err != nil {
		return 0, fmt.Errorf("create %s: %w", loadTable, err)
	}

	n, err := dbPool.CopyFrom(ctx, pgx.Identifier{loadTable}, loadColumns(), pgx.CopyFromRows(copyRows(run)))
	if err != nil {
		return n, fmt.Errorf("copy into %s: %w", loadTable, err)
	}
	metrics.RecordsLoaded.Add(float64(n))
	return n, nil
}

func loadColumns() []string {
	return append([]string{"run_id", "row_num"}, generator.Columns...)
}

// copyRows lays out each record in loadColumns order.
func copyRows(run *generator.Run) [][]any {
	rows := make([][]any, len(run.Records))
	for i, r := range run.Records {
		rows[i] = []any{
			run.ID,
			i + 1,
			r.Age,
			r.TypeBac,
			r.Parcours,
			r.MoyenneBac,
			r.MoyenneS1,
			r.MoyenneS2,
			r.MoyenneGenerale,
			r.NbModulesEchoues,
			r.HeuresTravail,
			r.Discipline,
			r.Satisfaction,
			r.TravailParallele,
			r.ReussiteGenerale,
			r.ResultatFinal,
		}
	}
	return rows
}

type summary struct {
	Rows         int
	SuccessRate  float64
	ReussiteRate float64
	MeanGenerale float64
	HighFailures int
}

func summarize(records []generator.Record) summary {
	s := summary{Rows: len(records)}
	if len(records) == 0 {
		return s
	}
	var success, reussite int
	var total float64
	for _, r := range records {
		success += r.ResultatFinal
		reussite += r.ReussiteGenerale
		total += r.MoyenneGenerale
		if r.NbModulesEchoues >= 3 {
			s.HighFailures++
		}
	}
	n := float64(len(records))
	s.SuccessRate = float64(success) / n
	s.ReussiteRate = float64(reussite) / n
	s.MeanGenerale = total / n
	return s
}
