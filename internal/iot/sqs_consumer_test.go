package iot

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/asmitabhandari/smart-parking-system/internal/domain"
)

// stubQueue serves one batch per entry in batches, then blocks until cancelled.
type stubQueue struct {
	mu       sync.Mutex
	batches  [][]types.Message
	errs     []error
	deleted  []string
	delErrs  []error
	receives int
}

func (q *stubQueue) ReceiveMessage(ctx context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	q.mu.Lock()
	q.receives++
	if len(q.errs) > 0 {
		err := q.errs[0]
		q.errs = q.errs[1:]
		q.mu.Unlock()
		return nil, err
	}
	if len(q.batches) > 0 {
		batch := q.batches[0]
		q.batches = q.batches[1:]
		q.mu.Unlock()
		return &sqs.ReceiveMessageOutput{Messages: batch}, nil
	}
	q.mu.Unlock()
	<-ctx.Done()
	return nil, ctx.Err()
}

func (q *stubQueue) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.deleted = append(q.deleted, aws.ToString(params.ReceiptHandle))
	q.delErrs = append(q.delErrs, ctx.Err())
	return &sqs.DeleteMessageOutput{}, nil
}

func (q *stubQueue) deleteContextErrs() []error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]error(nil), q.delErrs...)
}

func (q *stubQueue) receiveCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.receives
}

func (q *stubQueue) deletedHandles() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.deleted...)
}

type stubGate struct {
	mu       sync.Mutex
	bodies   []string
	onHandle func()
}

func (g *stubGate) HandleGateEvent(_ context.Context, body string) (*domain.ParkingAssignment, error) {
	g.mu.Lock()
	g.bodies = append(g.bodies, body)
	onHandle := g.onHandle
	g.mu.Unlock()
	if onHandle != nil {
		onHandle()
	}

	switch body {
	case "bad":
		return nil, domain.NewDetectionError("Could not detect plate", nil)
	case "garbled":
		return nil, domain.NewValidationError("Invalid image", nil)
	case "backend-down":
		return nil, domain.NewUpstreamError("dial tcp 127.0.0.1:3000: connect: connection refused", nil)
	case "rejected":
		return nil, domain.NewUpstreamError("Failed to save", nil)
	case "ocr-crash":
		return nil, domain.NewUnexpectedError("tesseract: engine failure", errors.New("engine failure"))
	}
	return &domain.ParkingAssignment{Plate: "ABC1234"}, nil
}

func (g *stubGate) handled() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.bodies...)
}

var _ = Describe("SQSConsumer", func() {
	var (
		queue  *stubQueue
		gate   *stubGate
		ctx    context.Context
		cancel context.CancelFunc
		done   chan struct{}
	)

	start := func() {
		consumer := NewSQSConsumer(queue, "https://sqs.local/gate-events", gate)
		consumer.retryDelay = 10 * time.Millisecond
		done = make(chan struct{})
		go func() {
			defer close(done)
			consumer.Start(ctx)
		}()
	}

	BeforeEach(func() {
		queue = &stubQueue{}
		gate = &stubGate{}
		ctx, cancel = context.WithCancel(context.Background())
	})

	AfterEach(func() {
		cancel()
		Eventually(done).Should(BeClosed())
	})

	It("should handle a batch and delete every finished message", func() {
		queue.batches = [][]types.Message{{
			{MessageId: aws.String("m1"), ReceiptHandle: aws.String("r1"), Body: aws.String("good")},
			{MessageId: aws.String("m2"), ReceiptHandle: aws.String("r2"), Body: aws.String("bad")},
			{MessageId: aws.String("m3"), ReceiptHandle: aws.String("r3")},
		}}
		start()

		Eventually(queue.deletedHandles).Should(ConsistOf("r1", "r2", "r3"))
		Expect(gate.handled()).To(Equal([]string{"good", "bad"}))
	})

	It("should delete frames that can never be parked", func() {
		queue.batches = [][]types.Message{{
			{MessageId: aws.String("m1"), ReceiptHandle: aws.String("r1"), Body: aws.String("garbled")},
			{MessageId: aws.String("m2"), ReceiptHandle: aws.String("r2"), Body: aws.String("bad")},
		}}
		start()

		Eventually(queue.deletedHandles).Should(ConsistOf("r1", "r2"))
	})

	It("should leave frames in the queue when the recording service or OCR engine fails", func() {
		queue.batches = [][]types.Message{{
			{MessageId: aws.String("m1"), ReceiptHandle: aws.String("r1"), Body: aws.String("backend-down")},
			{MessageId: aws.String("m2"), ReceiptHandle: aws.String("r2"), Body: aws.String("rejected")},
			{MessageId: aws.String("m3"), ReceiptHandle: aws.String("r3"), Body: aws.String("ocr-crash")},
			{MessageId: aws.String("m4"), ReceiptHandle: aws.String("r4"), Body: aws.String("good")},
		}}
		start()

		Eventually(queue.deletedHandles).Should(ConsistOf("r4"))
		Eventually(queue.receiveCount).Should(BeNumerically(">=", 2))
		Expect(gate.handled()).To(Equal([]string{"backend-down", "rejected", "ocr-crash", "good"}))
		Expect(queue.deletedHandles()).To(ConsistOf("r4"))
	})

	It("should still delete a parked frame when shutdown begins during handling", func() {
		gate.onHandle = func() { cancel() }
		queue.batches = [][]types.Message{{
			{MessageId: aws.String("m1"), ReceiptHandle: aws.String("r1"), Body: aws.String("good")},
		}}
		start()

		Eventually(done).Should(BeClosed())
		Expect(queue.deletedHandles()).To(ConsistOf("r1"))
		Expect(queue.deleteContextErrs()).To(ConsistOf(BeNil()))
	})

	It("should keep polling after a receive error", func() {
		queue.errs = []error{errors.New("throttled")}
		queue.batches = [][]types.Message{{
			{MessageId: aws.String("m1"), ReceiptHandle: aws.String("r1"), Body: aws.String("good")},
		}}
		start()

		Eventually(queue.deletedHandles).Should(ConsistOf("r1"))
	})

	It("should stop when the context is cancelled", func() {
		start()
		cancel()
		Eventually(done).Should(BeClosed())
	})
})
