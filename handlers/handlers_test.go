package handlers

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"student-success-api/classifier"
	"student-success-api/config"
	"student-success-api/generator"
	"student-success-api/models"
	"student-success-api/services"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name      string
		query     string
		wantLimit int
		wantAfter uint
	}{
		{"defaults", "", DefaultLimit, 0},
		{"explicit", "?limit=10&after=42", 10, 42},
		{"limit capped", "?limit=5000", MaxLimit, 0},
		{"malformed values ignored", "?limit=abc&after=-3", DefaultLimit, 0},
		{"zero limit ignored", "?limit=0", DefaultLimit, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/"+tt.query, nil)
			p := ParsePagination(c)
			assert.Equal(t, tt.wantLimit, p.Limit)
			assert.Equal(t, tt.wantAfter, p.AfterID)
		})
	}
}

func TestPageOf(t *testing.T) {
	rows := []models.Student{{ID: 3}, {ID: 5}, {ID: 9}}

	full := pageOf(rows, 2)
	assert.True(t, full.HasMore)
	assert.Equal(t, "5", full.NextCursor)
	assert.Len(t, full.Data, 2)

	last := pageOf(rows, 3)
	assert.False(t, last.HasMore)
	assert.Empty(t, last.NextCursor)

	empty := pageOf(nil, 10)
	assert.NotNil(t, empty.Data)
	assert.Equal(t, []models.Student{}, empty.Data)
}

func newPredictRouter() *gin.Engine {
	h := NewPredictHandler(classifier.ScoreClassifier{})
	r := gin.New()
	r.POST("/predict", h.PredictOne)
	r.POST("/predict/batch", h.PredictBatch)
	return r
}

func TestPredictOne(t *testing.T) {
	r := newPredictRouter()

	t.Run("strong record", func(t *testing.T) {
		body := `{"age":21,"moyenne_s1":12,"moyenne_s2":14,"discipline_note_sur_5":5,
			"satisfaction_parcours_note_sur_5":4,"nb_modules_echoues":0,"travail_parallele":"Non"}`
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body)))
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Prediction     int                 `json:"prediction"`
			Recommendation string              `json:"recommandation"`
			ModelVersion   string              `json:"model_version"`
			Features       classifier.Features `json:"features"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 1, resp.Prediction)
		assert.Equal(t, classifier.RecommendContinue, resp.Recommendation)
		assert.Equal(t, "score-rule-v1", resp.ModelVersion)
		assert.Equal(t, 13.0, resp.Features.MoyenneGenerale, "general average derived from semesters")
		assert.Equal(t, classifier.Unspecified, resp.Features.TypeBac)
	})

	t.Run("explicit general average kept", func(t *testing.T) {
		body := `{"moyenne_s1":12,"moyenne_s2":14,"moyenne_generale":9.5}`
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body)))
		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Features classifier.Features `json:"features"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 9.5, resp.Features.MoyenneGenerale)
	})

	t.Run("weak record gets tutoring", func(t *testing.T) {
		body := `{"moyenne_s2":6,"discipline_note_sur_5":1,"satisfaction_parcours_note_sur_5":1,
			"nb_modules_echoues":4,"travail_parallele":"Oui"}`
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body)))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"prediction":0`)
		assert.Contains(t, w.Body.String(), classifier.RecommendTutoring)
	})

	for name, body := range map[string]string{
		"not an object":           `[1,2]`,
		"wrong type":              `{"type_bac":12}`,
		"malformed json":          `{"age":`,
		"nan average":             `{"moyenne_s2":"NaN","travail_parallele":"Non"}`,
		"infinite hours":          `{"heures_travail_semaine":"-Inf"}`,
		"fractional failed count": `{"nb_modules_echoues":1.5}`,
	} {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(body)))
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func uploadRequest(t *testing.T, field, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, "etudiants.csv")
	require.NoError(t, err)
	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/predict/batch", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestPredictBatch(t *testing.T) {
	r := newPredictRouter()

	t.Run("labelled table", func(t *testing.T) {
		table := "age,moyenne_s2,discipline_note_sur_5,satisfaction_parcours_note_sur_5,nb_modules_echoues,travail_parallele,resultat_final\n" +
			"21,14,5,4,0,Non,1\n" +
			"23,6,1,1,4,Oui,0\n"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, uploadRequest(t, "file", table))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		var resp batchResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Rows)
		assert.Equal(t, 0.5, resp.PredictedRate)
		require.NotNil(t, resp.Agreement)
		assert.Equal(t, 1.0, *resp.Agreement)
		assert.Equal(t, map[string]int{"0": 1, "1": 1}, resp.LabelCounts)
		require.Len(t, resp.Predictions, 2)
		assert.Equal(t, 1, resp.Predictions[0].Prediction)
		assert.Equal(t, classifier.RecommendTutoring, resp.Predictions[1].Recommendation)
		assert.NotEmpty(t, resp.Summary)
	})

	t.Run("unlabelled table", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, uploadRequest(t, "file", "age,moyenne_s2\n20,15\n"))
		require.Equal(t, http.StatusOK, w.Code)

		var resp batchResponse
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Nil(t, resp.Agreement)
		assert.Empty(t, resp.LabelCounts)
	})

	t.Run("non-finite cell", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, uploadRequest(t, "file", "age,moyenne_s2\n20,15\n21,NaN\n"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "line 3")
	})

	t.Run("bad label value", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, uploadRequest(t, "file", "age,resultat_final\n20,yes\n"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("missing upload", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, uploadRequest(t, "other", "age\n20\n"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func newDatasetsRouter() *gin.Engine {
	h := NewDatasetsHandler(nil, generator.DefaultParams(), 100)
	r := gin.New()
	r.POST("/datasets/generate", h.Generate)
	return r
}

func generateDataset(r *gin.Engine, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/datasets/generate", strings.NewReader(body)))
	return w
}

func TestGenerateDataset(t *testing.T) {
	r := newDatasetsRouter()

	t.Run("returns csv with run headers", func(t *testing.T) {
		w := generateDataset(r, `{"size":10,"seed":7,"workers":2}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Type"), "text/csv")
		assert.NotEmpty(t, w.Header().Get("X-Dataset-Run-ID"))
		assert.Equal(t, "7", w.Header().Get("X-Dataset-Seed"))

		rows, err := csv.NewReader(w.Body).ReadAll()
		require.NoError(t, err)
		require.Len(t, rows, 11)
		assert.Equal(t, generator.Columns, rows[0])
	})

	t.Run("same seed same dataset", func(t *testing.T) {
		a := generateDataset(r, `{"size":20,"seed":3,"workers":2}`)
		b := generateDataset(r, `{"size":20,"seed":3,"workers":2}`)
		require.Equal(t, http.StatusOK, a.Code)
		assert.Equal(t, a.Body.String(), b.Body.String())
		assert.NotEqual(t, a.Header().Get("X-Dataset-Run-ID"), b.Header().Get("X-Dataset-Run-ID"))
	})

	t.Run("default seed", func(t *testing.T) {
		w := generateDataset(r, `{"size":1}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "42", w.Header().Get("X-Dataset-Seed"))
	})

	t.Run("empty size gives header only", func(t *testing.T) {
		w := generateDataset(r, `{"size":0}`)
		require.Equal(t, http.StatusOK, w.Code)
		rows, err := csv.NewReader(w.Body).ReadAll()
		require.NoError(t, err)
		assert.Len(t, rows, 1)
	})

	t.Run("seed bounds", func(t *testing.T) {
		w := generateDataset(r, `{"size":1,"seed":9223372036854775807}`)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "9223372036854775807", w.Header().Get("X-Dataset-Seed"))

		w = generateDataset(r, `{"size":1,"seed":9223372036854775808}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Empty(t, w.Header().Get("X-Dataset-Run-ID"))
	})

	t.Run("size above limit", func(t *testing.T) {
		w := generateDataset(r, `{"size":101}`)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("invalid params", func(t *testing.T) {
		p := generator.DefaultParams()
		p.TypeBac.Weights = []float64{1}
		h := NewDatasetsHandler(nil, p, 100)
		rr := gin.New()
		rr.POST("/datasets/generate", h.Generate)
		w := generateDataset(rr, `{"size":5}`)
		assert.Equal(t, http.StatusInternalServerError, w.Code)
	})
}

func TestLivePredictionsAuth(t *testing.T) {
	authService := services.NewAuthService(config.JWTConfig{Secret: "test-secret", ExpiryHours: 1}, nil)
	r := gin.New()
	r.GET("/ws/live", LivePredictions(&services.CacheService{}, authService))

	token, err := authService.GenerateToken(1, "a@b.c", "user")
	require.NoError(t, err)

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"bad token", "?token=nope", http.StatusUnauthorized},
		{"no live feed without redis", "?token=" + token, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ws/live"+tt.query, nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}
