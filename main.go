package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsgo_config "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/gin-gonic/gin"
	"github.com/peterbourgon/ff/v4"

	"github.com/asmitabhandari/smart-parking-system/internal/api"
	"github.com/asmitabhandari/smart-parking-system/internal/config"
	"github.com/asmitabhandari/smart-parking-system/internal/iot"
	"github.com/asmitabhandari/smart-parking-system/internal/ocr"
	"github.com/asmitabhandari/smart-parking-system/internal/repository/httpapi"
	"github.com/asmitabhandari/smart-parking-system/internal/service"
)

func main() {
	// 1. Load configuration
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		if errors.Is(err, ff.ErrHelp) {
			os.Exit(0)
		}
		log.Fatalf("Invalid configuration: %v", err)
	}
	gin.SetMode(cfg.GinMode)
	log.Println("Configuration loaded.")

	// 2. AWS SDK config, only when rekognition or the gate queue is enabled
	var awsSDKCfg aws.Config
	if cfg.NeedsAWS() {
		awsSDKCfg, err = awsgo_config.LoadDefaultConfig(context.TODO(), awsgo_config.WithRegion(cfg.AWSRegion))
		if err != nil {
			log.Fatalf("Cannot load AWS SDK config: %v", err)
		}
		log.Println("Loaded AWS SDK config for region:", cfg.AWSRegion)
	}

	// 3. OCR engine
	recognizer, err := newRecognizer(cfg, awsSDKCfg)
	if err != nil {
		log.Fatalf("Cannot initialize OCR engine %q: %v", cfg.OCREngine, err)
	}
	reader := ocr.NewReader(recognizer, ocr.Normalizer{
		MinLength:     cfg.MinPlateLength,
		Substitutions: !cfg.DisableSubstitutions,
	})
	defer reader.Close()
	log.Printf("OCR engine %q ready.", cfg.OCREngine)

	// 4. Recording service client
	records, err := httpapi.NewParkingRecordRepository(cfg.BackendURL,
		&http.Client{Timeout: cfg.BackendTimeout}, cfg.BackendRetries)
	if err != nil {
		log.Fatalf("Cannot create recording service client: %v", err)
	}
	log.Printf("Recording service at %s (timeout %s, retries %d).", cfg.BackendURL, cfg.BackendTimeout, cfg.BackendRetries)

	// 5. Services
	lprService := service.NewLPRService(reader)
	parkingService := service.NewParkingService(records)

	// 6. Gate camera consumer
	var wg sync.WaitGroup
	consumerCtx, cancelConsumer := context.WithCancel(context.Background())
	if cfg.SQSEventQueueURL == "" {
		log.Println("SQS event queue not configured, gate camera consumer disabled.")
	} else {
		consumer := iot.NewSQSConsumer(sqs.NewFromConfig(awsSDKCfg), cfg.SQSEventQueueURL,
			service.NewGateService(lprService, parkingService))
		wg.Add(1)
		go func() {
			defer wg.Done()
			consumer.Start(consumerCtx)
		}()
	}

	// 7. HTTP server
	router := api.SetupRouter(lprService, parkingService)
	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting AI Service on http://%s", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	cancelConsumer()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shut down: %v", err)
	}

	if cfg.SQSEventQueueURL != "" {
		c := make(chan struct{})
		go func() {
			defer close(c)
			wg.Wait()
		}()
		select {
		case <-c:
			log.Println("SQS consumer stopped.")
		case <-time.After(5 * time.Second):
			log.Println("SQS consumer did not stop in time.")
		}
	}

	log.Println("Server stopped.")
}

func newRecognizer(cfg *config.Config, awsSDKCfg aws.Config) (ocr.Recognizer, error) {
	switch cfg.OCREngine {
	case config.EngineTesseract:
		return ocr.NewTesseract(ocr.TesseractConfig{
			Language:       cfg.OCRLanguage,
			TessdataPrefix: cfg.TessdataPrefix,
		})
	case config.EngineRekognition:
		return ocr.NewRekognition(rekognition.NewFromConfig(awsSDKCfg)), nil
	case config.EngineOllama:
		return ocr.NewOllama(cfg.OllamaURL, cfg.OllamaModel, cfg.OllamaTimeout)
	default:
		return nil, fmt.Errorf("unknown OCR engine %q", cfg.OCREngine)
	}
}
