package config

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func setEnv(key, value string) {
	previous, had := os.LookupEnv(key)
	Expect(os.Setenv(key, value)).To(Succeed())
	DeferCleanup(func() {
		if had {
			os.Setenv(key, previous)
		} else {
			os.Unsetenv(key)
		}
	})
}

var _ = Describe("Load", func() {
	It("should use the defaults", func() {
		cfg, err := Load(nil)
		Expect(err).NotTo(HaveOccurred())

		Expect(cfg.Addr()).To(Equal("0.0.0.0:5000"))
		Expect(cfg.BackendURL).To(Equal("http://localhost:3000"))
		Expect(cfg.BackendTimeout).To(Equal(10 * time.Second))
		Expect(cfg.BackendRetries).To(Equal(1))
		Expect(cfg.OCREngine).To(Equal(EngineTesseract))
		Expect(cfg.MinPlateLength).To(Equal(4))
		Expect(cfg.DisableSubstitutions).To(BeFalse())
		Expect(cfg.SQSEventQueueURL).To(BeEmpty())
		Expect(cfg.NeedsAWS()).To(BeFalse())
	})

	It("should need AWS when the gate event queue is configured", func() {
		cfg, err := Load([]string{"--sqs-event-queue-url", "https://sqs.ap-southeast-1.amazonaws.com/123/gate-events"})
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.NeedsAWS()).To(BeTrue())
	})

	It("should read settings from the environment", func() {
		setEnv("AI_SERVICE_PORT", "8081")
		setEnv("AI_SERVICE_BACKEND_URL", "http://backend:3000")
		setEnv("AI_SERVICE_OCR_ENGINE", "ollama")

		cfg, err := Load(nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Port).To(Equal(8081))
		Expect(cfg.BackendURL).To(Equal("http://backend:3000"))
		Expect(cfg.OCREngine).To(Equal(EngineOllama))
	})

	It("should prefer flags over the environment", func() {
		setEnv("AI_SERVICE_PORT", "8081")

		cfg, err := Load([]string{"--port", "9000", "--disable-substitutions", "--tessdata-prefix", "/opt/tessdata"})
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg.Port).To(Equal(9000))
		Expect(cfg.DisableSubstitutions).To(BeTrue())
		Expect(cfg.TessdataPrefix).To(Equal("/opt/tessdata"))
	})

	It("should reject an unknown OCR engine", func() {
		_, err := Load([]string{"--ocr-engine", "easyocr"})
		Expect(err).To(MatchError(ContainSubstring("unknown OCR engine")))
	})

	It("should reject an unknown gin mode", func() {
		_, err := Load([]string{"--gin-mode", "prod"})
		Expect(err).To(MatchError(ContainSubstring("unknown gin mode")))
	})

	It("should reject a backend url without a host", func() {
		_, err := Load([]string{"--backend-url", "localhost"})
		Expect(err).To(MatchError(ContainSubstring("invalid backend url")))
	})
})

var _ = Describe("Validate", func() {
	var cfg Config

	BeforeEach(func() {
		cfg = Config{
			Host: "127.0.0.1", Port: 5000,
			BackendURL: "http://localhost:3000", BackendTimeout: time.Second,
			OCREngine: EngineRekognition, MinPlateLength: 4,
			GinMode: gin.ReleaseMode,
		}
	})

	It("should accept a complete config", func() {
		Expect(cfg.Validate()).To(Succeed())
	})

	It("should reject an out of range port", func() {
		cfg.Port = 70000
		Expect(cfg.Validate()).NotTo(Succeed())
	})

	It("should accept every gin mode", func() {
		for _, mode := range []string{gin.DebugMode, gin.ReleaseMode, gin.TestMode} {
			cfg.GinMode = mode
			Expect(cfg.Validate()).To(Succeed())
		}
	})

	It("should reject negative retries", func() {
		cfg.BackendRetries = -1
		Expect(cfg.Validate()).NotTo(Succeed())
	})
})
