package sqs

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMessageBody = `{"action":"update","outcome":"rolled_back","product_id":"7","name":"Pen","price":1.5,"error":"remote update 7: status 500"}`

// mockSQSConsumerClient is a mock implementation of the SQS client for consumer testing.
type mockSQSConsumerClient struct {
	receiveMessageFunc func(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	deleteMessageFunc  func(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

func (m *mockSQSConsumerClient) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	if m.receiveMessageFunc != nil {
		return m.receiveMessageFunc(ctx, params, optFns...)
	}
	return &sqs.ReceiveMessageOutput{Messages: []types.Message{}}, nil
}

func (m *mockSQSConsumerClient) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	if m.deleteMessageFunc != nil {
		return m.deleteMessageFunc(ctx, params, optFns...)
	}
	return &sqs.DeleteMessageOutput{}, nil
}

func TestConsumer_processMessage(t *testing.T) {
	t.Run("successful message processing", func(t *testing.T) {
		// given
		var handled MutationMessage
		consumer := NewConsumer(nil, testQueueURL, func(_ context.Context, msg MutationMessage) error {
			handled = msg
			return nil
		})
		message := types.Message{
			Body:          aws.String(testMessageBody),
			ReceiptHandle: aws.String("test-receipt-handle"),
		}

		// when
		err := consumer.processMessage(context.Background(), message)

		// then
		require.NoError(t, err)
		assert.Equal(t, "update", handled.Action)
		assert.Equal(t, OutcomeRolledBack, handled.Outcome)
		assert.Equal(t, "7", handled.ProductID)
	})

	t.Run("nil message body", func(t *testing.T) {
		consumer := NewConsumer(nil, testQueueURL, nil)

		err := consumer.processMessage(context.Background(), types.Message{ReceiptHandle: aws.String("test-receipt-handle")})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "message body is nil")
	})

	t.Run("invalid JSON message body", func(t *testing.T) {
		consumer := NewConsumer(nil, testQueueURL, nil)

		err := consumer.processMessage(context.Background(), types.Message{Body: aws.String(`{"invalid json`)})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to unmarshal message")
	})

	t.Run("handler error", func(t *testing.T) {
		consumer := NewConsumer(nil, testQueueURL, func(context.Context, MutationMessage) error {
			return errors.New("boom")
		})

		err := consumer.processMessage(context.Background(), types.Message{Body: aws.String(testMessageBody)})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to handle message")
	})
}

func TestConsumer_deleteMessage(t *testing.T) {
	t.Run("successful message deletion", func(t *testing.T) {
		mockClient := &mockSQSConsumerClient{
			deleteMessageFunc: func(_ context.Context, params *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
				assert.Equal(t, testQueueURL, *params.QueueUrl)
				assert.Equal(t, "test-receipt-handle", *params.ReceiptHandle)
				return &sqs.DeleteMessageOutput{}, nil
			},
		}
		consumer := NewConsumer(mockClient, testQueueURL, nil)

		err := consumer.deleteMessage(context.Background(), types.Message{ReceiptHandle: aws.String("test-receipt-handle")})

		require.NoError(t, err)
	})

	t.Run("error deleting message", func(t *testing.T) {
		mockClient := &mockSQSConsumerClient{
			deleteMessageFunc: func(_ context.Context, _ *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
				return nil, errors.New("failed to delete")
			},
		}
		consumer := NewConsumer(mockClient, testQueueURL, nil)

		err := consumer.deleteMessage(context.Background(), types.Message{ReceiptHandle: aws.String("test-receipt-handle")})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to delete message")
	})
}

func TestConsumer_receiveMessages(t *testing.T) {
	t.Run("receives, processes and deletes messages", func(t *testing.T) {
		// given
		deleted := 0
		mockClient := &mockSQSConsumerClient{
			receiveMessageFunc: func(_ context.Context, params *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
				assert.Equal(t, testQueueURL, *params.QueueUrl)
				assert.Equal(t, int32(10), params.MaxNumberOfMessages)
				assert.Equal(t, int32(20), params.WaitTimeSeconds)
				return &sqs.ReceiveMessageOutput{
					Messages: []types.Message{
						{Body: aws.String(testMessageBody), ReceiptHandle: aws.String("test-receipt-handle")},
					},
				}, nil
			},
			deleteMessageFunc: func(_ context.Context, _ *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
				deleted++
				return &sqs.DeleteMessageOutput{}, nil
			},
		}
		consumer := NewConsumer(mockClient, testQueueURL, nil)

		// when
		err := consumer.receiveMessages(context.Background())

		// then
		require.NoError(t, err)
		assert.Equal(t, 1, deleted)
	})

	t.Run("handles receive message error", func(t *testing.T) {
		mockClient := &mockSQSConsumerClient{
			receiveMessageFunc: func(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
				return nil, errors.New("failed to receive")
			},
		}
		consumer := NewConsumer(mockClient, testQueueURL, nil)

		err := consumer.receiveMessages(context.Background())

		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to receive messages")
	})

	t.Run("keeps messages that fail processing", func(t *testing.T) {
		deleted := 0
		mockClient := &mockSQSConsumerClient{
			receiveMessageFunc: func(_ context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
				return &sqs.ReceiveMessageOutput{
					Messages: []types.Message{{Body: aws.String(`{"invalid json`), ReceiptHandle: aws.String("h")}},
				}, nil
			},
			deleteMessageFunc: func(_ context.Context, _ *sqs.DeleteMessageInput, _ ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
				deleted++
				return &sqs.DeleteMessageOutput{}, nil
			},
		}
		consumer := NewConsumer(mockClient, testQueueURL, nil)

		err := consumer.receiveMessages(context.Background())

		// processing errors are logged but don't stop the consumer
		require.NoError(t, err)
		assert.Zero(t, deleted)
	})
}

func TestConsumer_Start_StopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mockClient := &mockSQSConsumerClient{
		receiveMessageFunc: func(ctx context.Context, _ *sqs.ReceiveMessageInput, _ ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	consumer := NewConsumer(mockClient, testQueueURL, nil)

	done := make(chan error, 1)
	go func() { done <- consumer.Start(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("consumer did not stop after cancel")
	}
}
