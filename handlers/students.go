package handlers

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"student-success-api/classifier"
	"student-success-api/models"
	"student-success-api/services"

	"github.com/gin-gonic/gin"
)

// studentsListTTL bounds how long a page cached by a list that raced an
// insert can outlive the insert's invalidation.
const studentsListTTL = 10 * time.Second

type StudentsHandler struct {
	students *services.StudentService
	cache    *services.CacheService
}

func NewStudentsHandler(students *services.StudentService, cache *services.CacheService) *StudentsHandler {
	return &StudentsHandler{students: students, cache: cache}
}

// AddStudent stores one submitted record with its prediction.
func (h *StudentsHandler) AddStudent(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})
		return
	}

	student, err := h.students.AddStudent(c.Request.Context(), payload)
	if errors.Is(err, classifier.ErrInvalidRecord) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		log.Printf("add student failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store student"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":        "Étudiant ajouté avec succès",
		"prediction":     student.Prediction,
		"recommandation": classifier.Recommend(student.Prediction, student.NbModulesEchoues),
		"student":        student,
	})
}

func (h *StudentsHandler) ListStudents(c *gin.Context) {
	p := ParsePagination(c)
	cacheKey := services.StudentsListKey(p.Limit, p.AfterID)

	var cached CursorResponse
	if err := h.cache.Get(c.Request.Context(), cacheKey, &cached); err == nil {
		c.JSON(http.StatusOK, cached)
		return
	}

	rows, err := h.students.ListStudents(c.Request.Context(), p.Limit+1, p.AfterID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "database query failed"})
		return
	}

	resp := pageOf(rows, p.Limit)
	go h.cache.Set(context.Background(), cacheKey, resp, studentsListTTL)

	c.JSON(http.StatusOK, resp)
}

func pageOf(rows []models.Student, limit int) CursorResponse {
	hasMore := len(rows) > limit
	if hasMore {
		rows = rows[:limit]
	}
	if rows == nil {
		rows = []models.Student{}
	}

	var nextCursor string
	if hasMore && len(rows) > 0 {
		nextCursor = strconv.FormatUint(uint64(rows[len(rows)-1].ID), 10)
	}
	return CursorResponse{Data: rows, NextCursor: nextCursor, HasMore: hasMore}
}

// DownloadCSV streams the whole store as a CSV attachment.
func (h *StudentsHandler) DownloadCSV(c *gin.Context) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="etudiants.csv"`)
	c.Status(http.StatusOK)
	if err := h.students.ExportCSV(c.Request.Context(), c.Writer); err != nil {
		log.Printf("csv download failed: %v", err)
		c.AbortWithStatus(http.StatusInternalServerError)
	}
}

// WriteExport rewrites the export file on the server side.
func (h *StudentsHandler) WriteExport(c *gin.Context) {
	path, err := h.students.ExportFile(c.Request.Context())
	if err != nil {
		log.Printf("csv export failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Fichier CSV créé : %s", path), "csv": path})
}
