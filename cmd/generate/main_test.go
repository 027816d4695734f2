package main

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"

	"student-success-api/generator"

	"github.com/google/uuid"
)

func testRun(t *testing.T, n int) *generator.Run {
	t.Helper()
	run, err := generator.NewRun(n, 2, 42, generator.DefaultParams())
	if err != nil {
		t.Fatalf("NewRun: %v", err)
	}
	return run
}

func TestCopyRows(t *testing.T) {
	run := testRun(t, 5)
	rows := copyRows(run)
	cols := loadColumns()

	if len(rows) != 5 {
		t.Fatalf("len(rows) = %d, want 5", len(rows))
	}
	for i, row := range rows {
		if len(row) != len(cols) {
			t.Fatalf("row %d has %d values, want %d", i, len(row), len(cols))
		}
		if id, ok := row[0].(uuid.UUID); !ok || id != run.ID {
			t.Errorf("row %d run_id = %v, want %v", i, row[0], run.ID)
		}
		if row[1] != i+1 {
			t.Errorf("row %d row_num = %v, want %d", i, row[1], i+1)
		}
		if row[len(row)-1] != run.Records[i].ResultatFinal {
			t.Errorf("row %d resultat_final = %v, want %d", i, row[len(row)-1], run.Records[i].ResultatFinal)
		}
	}
}

func TestLoadColumns(t *testing.T) {
	cols := loadColumns()
	if cols[0] != "run_id" || cols[1] != "row_num" {
		t.Errorf("leading columns = %v", cols[:2])
	}
	if cols[len(cols)-1] != generator.ColResultatFinal {
		t.Errorf("last column = %q, want %q", cols[len(cols)-1], generator.ColResultatFinal)
	}
	// loadColumns must not alias the shared Columns slice.
	cols[2] = "mutated"
	if generator.Columns[0] != generator.ColAge {
		t.Errorf("generator.Columns mutated: %v", generator.Columns[0])
	}
}

func TestSummarize(t *testing.T) {
	t.Run("empty", func(t *testing.T) {
		s := summarize(nil)
		if s.Rows != 0 || s.SuccessRate != 0 || s.MeanGenerale != 0 {
			t.Errorf("summarize(nil) = %+v", s)
		}
	})

	t.Run("rates and mean", func(t *testing.T) {
		records := []generator.Record{
			{MoyenneGenerale: 12, ReussiteGenerale: 1, ResultatFinal: 1, NbModulesEchoues: 0},
			{MoyenneGenerale: 8, ReussiteGenerale: 0, ResultatFinal: 0, NbModulesEchoues: 3},
			{MoyenneGenerale: 10, ReussiteGenerale: 1, ResultatFinal: 0, NbModulesEchoues: 4},
			{MoyenneGenerale: 14, ReussiteGenerale: 1, ResultatFinal: 1, NbModulesEchoues: 1},
		}
		s := summarize(records)
		if s.Rows != 4 {
			t.Errorf("Rows = %d, want 4", s.Rows)
		}
		if math.Abs(s.SuccessRate-0.5) > 1e-9 {
			t.Errorf("SuccessRate = %v, want 0.5", s.SuccessRate)
		}
		if math.Abs(s.ReussiteRate-0.75) > 1e-9 {
			t.Errorf("ReussiteRate = %v, want 0.75", s.ReussiteRate)
		}
		if math.Abs(s.MeanGenerale-11) > 1e-9 {
			t.Errorf("MeanGenerale = %v, want 11", s.MeanGenerale)
		}
		if s.HighFailures != 2 {
			t.Errorf("HighFailures = %d, want 2", s.HighFailures)
		}
	})
}

func TestWriteDataset(t *testing.T) {
	run := testRun(t, 25)
	path := filepath.Join(t.TempDir(), "out", "dataset.csv")

	if err := writeDataset(path, run.Records); err != nil {
		t.Fatalf("writeDataset: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 26 {
		t.Fatalf("rows = %d, want header + 25", len(rows))
	}
	for i, col := range generator.Columns {
		if rows[0][i] != col {
			t.Errorf("header[%d] = %q, want %q", i, rows[0][i], col)
		}
	}
}
