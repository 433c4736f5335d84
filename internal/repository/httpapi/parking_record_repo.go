package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"github.com/asmitabhandari/smart-parking-system/internal/domain"
	"github.com/asmitabhandari/smart-parking-system/internal/repository"
)

const DefaultTimeout = 10 * time.Second

type httpParkingRecordRepository struct {
	url     *url.URL
	client  *http.Client
	retries int
}

// NewParkingRecordRepository talks to the recording service at baseURL.
// A nil client gets one with DefaultTimeout. retries bounds how many times a
// transport failure is retried; HTTP status replies are never retried.
func NewParkingRecordRepository(baseURL string, client *http.Client, retries int) (repository.ParkingRecordRepository, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid recording service url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid recording service url %q: scheme and host are required", baseURL)
	}
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	if retries < 0 {
		retries = 0
	}
	return &httpParkingRecordRepository{url: u, client: client, retries: retries}, nil
}

func (r *httpParkingRecordRepository) Save(ctx context.Context, assignment domain.ParkingAssignment) error {
	payload, err := json.Marshal(assignment)
	if err != nil {
		return fmt.Errorf("ParkingRecordRepository.Save: encode assignment: %w", err)
	}

	endpoint := r.url.JoinPath("/park").String()

	var response *http.Response
	for attempt := 0; ; attempt++ {
		response, err = r.post(ctx, endpoint, payload)
		if err == nil {
			break
		}
		if attempt >= r.retries || ctx.Err() != nil {
			return fmt.Errorf("ParkingRecordRepository.Save: %w", err)
		}
		log.Printf("ParkingRecordRepository: POST %s failed, retrying (%d/%d): %v", endpoint, attempt+1, r.retries, err)
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(response.Body, 1024))
		return fmt.Errorf("%w: status %d, body: %s", repository.ErrRecordRejected, response.StatusCode, bytes.TrimSpace(body))
	}
	_, _ = io.Copy(io.Discard, response.Body)
	return nil
}

func (r *httpParkingRecordRepository) post(ctx context.Context, endpoint string, payload []byte) (*http.Response, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Content-Type", "application/json")

	response, err := r.client.Do(request)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	return response, nil
}
