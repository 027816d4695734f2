package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"student-success-api/classifier"
	"student-success-api/generator"
	"student-success-api/metrics"
	"student-success-api/models"

	"gorm.io/gorm"
)

// ExportColumns is the header of a store export: the model-facing columns
// framed by the row id and the stored prediction.
var ExportColumns = append(append([]string{"id"}, classifier.FeatureColumns...), "prediction")

// PredictionEvent is published on PredictionsChannel for every stored student.
type PredictionEvent struct {
	StudentID      uint      `json:"student_id"`
	Prediction     int       `json:"prediction"`
	Recommendation string    `json:"recommandation"`
	ModelVersion   string    `json:"model_version"`
	TS             time.Time `json:"ts"`
}

type StudentService struct {
	db         *gorm.DB
	classifier classifier.Classifier
	cache      *CacheService
	exportPath string
}

func NewStudentService(db *gorm.DB, clf classifier.Classifier, cache *CacheService, exportPath string) *StudentService {
	return &StudentService{db: db, classifier: clf, cache: cache, exportPath: exportPath}
}

func (s *StudentService) Classifier() classifier.Classifier {
	return s.classifier
}

// AddStudent completes a submitted record, predicts its outcome, stores it
// and refreshes the CSV export.
func (s *StudentService) AddStudent(ctx context.Context, payload map[string]any) (*models.Student, error) {
	f, err := classifier.FromMap(payload)
	if err != nil {
		metrics.StudentsFailed.Inc()
		return nil, err
	}
	pred := classifier.PredictWith(s.classifier, f)
	metrics.Predictions.WithLabelValues(strconv.Itoa(pred.Prediction)).Inc()

	student := NewStudentRow(f, pred)
	if err := s.db.WithContext(ctx).Create(&student).Error; err != nil {
		metrics.StudentsFailed.Inc()
		return nil, fmt.Errorf("store student: %w", err)
	}
	metrics.StudentsStored.Inc()

	if s.exportPath != "" {
		if _, err := s.ExportFile(ctx); err != nil {
			log.Printf("csv export after insert failed: %v", err)
		}
	}
	if err := s.cache.DeletePrefix(ctx, studentsKeyPrefix); err != nil {
		log.Printf("cache invalidation failed: %v", err)
	}
	event := PredictionEvent{
		StudentID:      student.ID,
		Prediction:     pred.Prediction,
		Recommendation: pred.Recommendation,
		ModelVersion:   pred.ModelVersion,
		TS:             student.CreatedAt,
	}
	if err := s.cache.Publish(ctx, PredictionsChannel, event); err != nil {
		log.Printf("publish prediction for student=%d failed: %v", student.ID, err)
	}

	return &student, nil
}

// NewStudentRow builds the stored row for a feature set and its prediction.
func NewStudentRow(f classifier.Features, pred classifier.Prediction) models.Student {
	return models.Student{
		Age:              f.Age,
		TypeBac:          f.TypeBac,
		Parcours:         f.Parcours,
		MoyenneBac:       f.MoyenneBac,
		MoyenneS1:        f.MoyenneS1,
		MoyenneS2:        f.MoyenneS2,
		MoyenneGenerale:  f.MoyenneGenerale,
		NbModulesEchoues: f.NbModulesEchoues,
		HeuresTravail:    f.HeuresTravail,
		Discipline:       f.Discipline,
		Satisfaction:     f.Satisfaction,
		TravailParallele: f.TravailParallele,
		Prediction:       pred.Prediction,
		ModelVersion:     pred.ModelVersion,
	}
}

// ListStudents returns up to limit rows with id > afterID, in id order.
func (s *StudentService) ListStudents(ctx context.Context, limit int, afterID uint) ([]models.Student, error) {
	var rows []models.Student
	err := s.db.WithContext(ctx).
		Where("id > ?", afterID).
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return rows, nil
}

// ExportCSV writes the whole store, in id order, as CSV.
func (s *StudentService) ExportCSV(ctx context.Context, w io.Writer) error {
	var rows []models.Student
	if err := s.db.WithContext(ctx).Order("id ASC").Find(&rows).Error; err != nil {
		return fmt.Errorf("load students: %w", err)
	}
	return WriteStudentsCSV(w, rows)
}

// ExportFile rewrites the export file. The file is replaced atomically so
// readers never see a partial export.
func (s *StudentService) ExportFile(ctx context.Context) (string, error) {
	if s.exportPath == "" {
		return "", fmt.Errorf("no export path configured")
	}
	dir := filepath.Dir(s.exportPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".export-*.csv")
	if err != nil {
		return "", fmt.Errorf("create temp export: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := s.ExportCSV(ctx, tmp); err != nil {
		tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close temp export: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.exportPath); err != nil {
		return "", fmt.Errorf("replace export: %w", err)
	}
	metrics.ExportsWritten.Inc()
	return s.exportPath, nil
}

func WriteStudentsCSV(w io.Writer, rows []models.Student) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ExportColumns); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for _, st := range rows {
		record := []string{
			strconv.FormatUint(uint64(st.ID), 10),
			generator.FormatFloat(st.Age),
			st.TypeBac,
			st.Parcours,
			generator.FormatFloat(st.MoyenneBac),
			generator.FormatFloat(st.MoyenneS1),
			generator.FormatFloat(st.MoyenneS2),
			generator.FormatFloat(st.MoyenneGenerale),
			strconv.Itoa(st.NbModulesEchoues),
			generator.FormatFloat(st.HeuresTravail),
			generator.FormatFloat(st.Discipline),
			generator.FormatFloat(st.Satisfaction),
			st.TravailParallele,
			strconv.Itoa(st.Prediction),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write student %d: %w", st.ID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
