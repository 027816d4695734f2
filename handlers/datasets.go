package handlers

import (
	"log"
	"math"
	"net/http"
	"strconv"

	"student-success-api/generator"
	"student-success-api/middleware"
	"student-success-api/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type DatasetsHandler struct {
	db      *gorm.DB
	params  generator.Params
	maxSize int
}

// NewDatasetsHandler serves generation requests with params. db may be nil,
// in which case runs are not recorded.
func NewDatasetsHandler(db *gorm.DB, params generator.Params, maxSize int) *DatasetsHandler {
	return &DatasetsHandler{db: db, params: params, maxSize: maxSize}
}

type GenerateRequest struct {
	Size    int     `json:"size"`
	Seed    *uint64 `json:"seed"`
	Workers int     `json:"workers"`
}

const defaultSeed = 42

// Generate draws a synthetic dataset and returns it as CSV. The run id and
// seed are echoed in response headers so the dataset can be reproduced.
func (h *DatasetsHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if h.maxSize > 0 && req.Size > h.maxSize {
		c.JSON(http.StatusBadRequest, gin.H{"error": "size exceeds " + strconv.Itoa(h.maxSize)})
		return
	}
	seed := uint64(defaultSeed)
	if req.Seed != nil {
		seed = *req.Seed
	}
	// Runs are recorded in a signed 64-bit column.
	if seed > math.MaxInt64 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "seed exceeds " + strconv.FormatInt(math.MaxInt64, 10)})
		return
	}
	if req.Workers < 1 {
		req.Workers = 1
	}

	run, err := generator.NewRun(req.Size, req.Workers, seed, h.params)
	if err != nil {
		log.Printf("dataset generation failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "dataset generation failed"})
		return
	}
	h.record(c, run)

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="dataset_reussite_etudiants_ISI.csv"`)
	c.Header("X-Dataset-Run-ID", run.ID.String())
	c.Header("X-Dataset-Seed", strconv.FormatUint(run.Seed, 10))
	c.Status(http.StatusOK)
	if err := generator.WriteCSV(c.Writer, run.Records); err != nil {
		log.Printf("dataset write failed run=%s: %v", run.ID, err)
	}
}

func (h *DatasetsHandler) record(c *gin.Context, run *generator.Run) {
	if h.db == nil {
		return
	}
	row := models.DatasetRun{
		ID:          run.ID.String(),
		Seed:        run.Seed,
		Size:        len(run.Records),
		Workers:     run.Workers,
		SuccessRate: run.SuccessRate(),
		CreatedAt:   run.CreatedAt,
	}
	if claims := middleware.CurrentClaims(c); claims != nil {
		row.RequestedBy = &claims.UserID
	}
	if err := h.db.WithContext(c.Request.Context()).Create(&row).Error; err != nil {
		log.Printf("record dataset run=%s failed: %v", run.ID, err)
	}
}
