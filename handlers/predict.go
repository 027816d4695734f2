package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"student-success-api/classifier"
	"student-success-api/generator"
	"student-success-api/metrics"

	"github.com/gin-gonic/gin"
)

const maxUploadBytes = 32 << 20

type PredictHandler struct {
	classifier classifier.Classifier
}

func NewPredictHandler(clf classifier.Classifier) *PredictHandler {
	return &PredictHandler{classifier: clf}
}

type predictionResponse struct {
	classifier.Prediction
	Features classifier.Features `json:"features"`
}

// PredictOne scores a single form-filled record without storing it. When the
// form leaves out the general average it is derived from the two semesters.
func (h *PredictHandler) PredictOne(c *gin.Context) {
	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "request body must be a JSON object"})
		return
	}

	f, err := classifier.FromMap(payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !hasAny(payload, generator.ColMoyenneGenerale, "moyenne_generale") {
		f.MoyenneGenerale = (f.MoyenneS1 + f.MoyenneS2) / 2
	}

	p := classifier.PredictWith(h.classifier, f)
	metrics.Predictions.WithLabelValues(strconv.Itoa(p.Prediction)).Inc()
	c.JSON(http.StatusOK, predictionResponse{Prediction: p, Features: f})
}

func hasAny(m map[string]any, keys ...string) bool {
	for _, k := range keys {
		if _, ok := m[k]; ok {
			return true
		}
	}
	return false
}

type batchRow struct {
	Row            int    `json:"row"`
	Prediction     int    `json:"prediction"`
	Recommendation string `json:"recommandation"`
	ResultatFinal  *int   `json:"resultat_final,omitempty"`
}

type batchResponse struct {
	ModelVersion  string                     `json:"model_version"`
	Rows          int                        `json:"rows"`
	PredictedRate float64                    `json:"predicted_success_rate"`
	Summary       []classifier.ColumnSummary `json:"summary"`
	LabelCounts   map[string]int             `json:"label_counts,omitempty"`
	Agreement     *float64                   `json:"agreement,omitempty"`
	Predictions   []batchRow                 `json:"predictions"`
}

// PredictBatch scores every row of an uploaded CSV table (form field
// "file"). Outcome columns in the table are reported, never used as input.
func (h *PredictHandler) PredictBatch(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadBytes)

	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing CSV upload in form field \"file\""})
		return
	}
	file, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot read upload"})
		return
	}
	defer file.Close()

	obs, err := classifier.ReadCSV(file)
	if err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, classifier.ErrInvalidRecord) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.scoreBatch(obs))
}

func (h *PredictHandler) scoreBatch(obs []classifier.Observation) batchResponse {
	resp := batchResponse{
		ModelVersion: h.classifier.Version(),
		Rows:         len(obs),
		Predictions:  make([]batchRow, 0, len(obs)),
	}

	features := make([]classifier.Features, len(obs))
	success, labelled, agree := 0, 0, 0
	for i, o := range obs {
		features[i] = o.Features
		p := classifier.PredictWith(h.classifier, o.Features)
		metrics.Predictions.WithLabelValues(strconv.Itoa(p.Prediction)).Inc()
		success += p.Prediction
		if o.ResultatFinal != nil {
			labelled++
			if *o.ResultatFinal == p.Prediction {
				agree++
			}
		}
		resp.Predictions = append(resp.Predictions, batchRow{
			Row:            i + 1,
			Prediction:     p.Prediction,
			Recommendation: p.Recommendation,
			ResultatFinal:  o.ResultatFinal,
		})
	}

	resp.Summary = classifier.Describe(features)
	if len(obs) > 0 {
		resp.PredictedRate = float64(success) / float64(len(obs))
	}
	if labelled > 0 {
		resp.LabelCounts = map[string]int{}
		for label, n := range classifier.LabelCounts(obs) {
			resp.LabelCounts[strconv.Itoa(label)] = n
		}
		rate := float64(agree) / float64(labelled)
		resp.Agreement = &rate
	}
	return resp
}
