// Package iot receives frames from gate cameras over SQS.
package iot

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"github.com/asmitabhandari/smart-parking-system/internal/domain"
)

// MessageAPI is the part of the SQS client the consumer uses.
type MessageAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// GateEventHandler processes one message body.
type GateEventHandler interface {
	HandleGateEvent(ctx context.Context, body string) (*domain.ParkingAssignment, error)
}

type SQSConsumer struct {
	sqsClient     MessageAPI
	queueURL      string
	handler       GateEventHandler
	retryDelay    time.Duration
	deleteTimeout time.Duration
}

func NewSQSConsumer(client MessageAPI, queueURL string, handler GateEventHandler) *SQSConsumer {
	return &SQSConsumer{
		sqsClient:     client,
		queueURL:      queueURL,
		handler:       handler,
		retryDelay:    5 * time.Second,
		deleteTimeout: 5 * time.Second,
	}
}

// Start long-polls the queue until ctx is cancelled. A message is deleted
// once handled, unless it failed on the recording service or the OCR engine;
// those stay in the queue and come back after the visibility timeout.
func (c *SQSConsumer) Start(ctx context.Context) {
	log.Printf("SQS Consumer: listening on queue %s", c.queueURL)
	for {
		select {
		case <-ctx.Done():
			log.Println("SQS Consumer: context cancelled, stopping.")
			return
		default:
		}

		if err := c.poll(ctx); err != nil {
			if ctx.Err() != nil {
				log.Println("SQS Consumer: context cancelled, stopping.")
				return
			}
			log.Printf("SQS Consumer: error receiving messages: %v", err)
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				log.Println("SQS Consumer: context cancelled while waiting for retry.")
				return
			}
		}
	}
}

func (c *SQSConsumer) poll(ctx context.Context) error {
	result, err := c.sqsClient.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            &c.queueURL,
		MaxNumberOfMessages: 10,
		WaitTimeSeconds:     20,
		VisibilityTimeout:   60,
	})
	if err != nil {
		return err
	}

	if len(result.Messages) > 0 {
		log.Printf("SQS Consumer: received %d message(s)", len(result.Messages))
	}

	for _, message := range result.Messages {
		id := messageID(message.MessageId)
		if message.Body == nil {
			log.Println("SQS Consumer: empty message body, deleting.")
		} else if assignment, err := c.handler.HandleGateEvent(ctx, *message.Body); err != nil {
			appErr := domain.AsError(err)
			if retryable(err) {
				log.Printf("SQS Consumer: message %s failed (%s), leaving it for redelivery: %s", id, appErr.Kind, err)
				continue
			}
			log.Printf("SQS Consumer: message %s failed (%s): %s", id, appErr.Kind, err)
		} else {
			log.Printf("SQS Consumer: message %s parked plate %s", id, assignment.Plate)
		}
		c.deleteMessage(ctx, message.ReceiptHandle)
	}
	return nil
}

// retryable reports whether a failed frame may succeed on a later delivery.
// Unreadable frames and frames without a plate are final; a failed
// recording call or engine error is not.
func retryable(err error) bool {
	return errors.Is(err, domain.ErrUpstream) || errors.Is(err, domain.ErrUnexpected)
}

// deleteMessage runs detached from ctx so a shutdown right after a frame was
// parked does not leave it in the queue to be parked again.
func (c *SQSConsumer) deleteMessage(ctx context.Context, receiptHandle *string) {
	if receiptHandle == nil {
		log.Println("SQS Consumer: missing receipt handle, cannot delete message.")
		return
	}
	delCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.deleteTimeout)
	defer cancel()
	_, delErr := c.sqsClient.DeleteMessage(delCtx, &sqs.DeleteMessageInput{
		QueueUrl:      &c.queueURL,
		ReceiptHandle: receiptHandle,
	})
	if delErr != nil {
		log.Printf("SQS Consumer: error deleting message: %v", delErr)
	}
}

func messageID(id *string) string {
	if id == nil {
		return "<unknown>"
	}
	return *id
}
