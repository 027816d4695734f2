package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"student-success-api/classifier"
	"student-success-api/config"
	"student-success-api/metrics"
	"student-success-api/models"
	"student-success-api/services"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// studentAdder is the part of StudentService the collector drives.
type studentAdder interface {
	AddStudent(ctx context.Context, payload map[string]any) (*models.Student, error)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var dialector gorm.Dialector = postgres.Open(cfg.Database.GetDSN())
	if cfg.Database.Driver == "sqlite" {
		dialector = sqlite.Open(cfg.Database.GetDSN())
	}
	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		log.Fatalf("db open failed: %v", err)
	}
	if err := db.AutoMigrate(&models.Student{}); err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}

	cache, err := services.NewCacheService(cfg.Redis)
	if err != nil {
		log.Printf("redis unavailable, skipping live feed: %v", err)
	}
	defer cache.Close()

	svc := services.NewStudentService(db, classifier.ScoreClassifier{}, cache, cfg.Export.Path)

	go serveHTTP(cfg.Metrics.Addr)

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTT.URL)
	opts.SetClientID("collector-" + time.Now().Format("20060102150405"))
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(2 * time.Second)
	opts.SetDefaultPublishHandler(func(client mqtt.Client, message mqtt.Message) {
		processMessage(ctx, svc, message.Payload())
	})
	opts.OnConnect = func(client mqtt.Client) {
		token := client.Subscribe(cfg.MQTT.Topic, 0, nil)
		token.Wait()
		if token.Error() != nil {
			log.Printf("mqtt subscribe error: %v", token.Error())
			return
		}
		log.Printf("collector subscribed to topic=%s", cfg.MQTT.Topic)
	}
	opts.OnConnectionLost = func(client mqtt.Client, err error) {
		log.Printf("mqtt connection lost: %v", err)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()
	token.Wait()
	if token.Error() != nil {
		log.Fatalf("mqtt connection failed: %v", token.Error())
	}

	log.Printf("collector running, mqtt=%s db=%s metrics=%s", cfg.MQTT.URL, cfg.Database.Driver, cfg.Metrics.Addr)

	<-ctx.Done()
	log.Printf("collector shutting down")
	client.Disconnect(250)
}

func serveHTTP(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	log.Printf("metrics server listening on %s", addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("metrics server failed: %v", err)
	}
}

// processMessage stores one student record received as a JSON object. It
// reports whether the record was stored. StudentService counts stored and
// rejected records.
func processMessage(ctx context.Context, svc studentAdder, payloadRaw []byte) bool {
	metrics.MessagesReceived.Inc()

	var payload map[string]any
	if err := json.Unmarshal(payloadRaw, &payload); err != nil || payload == nil {
		metrics.StudentsFailed.Inc()
		log.Printf("invalid payload: not a JSON object")
		return false
	}

	student, err := svc.AddStudent(ctx, payload)
	if errors.Is(err, classifier.ErrInvalidRecord) {
		log.Printf("rejected record: %v", err)
		return false
	}
	if err != nil {
		log.Printf("store failed: %v", err)
		return false
	}

	log.Printf("stored student=%d prediction=%d", student.ID, student.Prediction)
	return true
}
