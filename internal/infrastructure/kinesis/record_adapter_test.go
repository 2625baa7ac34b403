package kinesis

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/example/ec-shop/internal/notification"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEventJSON(t *testing.T, id, eventType string) []byte {
	t.Helper()
	event := notification.Event{
		ID:         id,
		Type:       eventType,
		OccurredAt: time.Now().UTC(),
		Data:       json.RawMessage(`{"order_id":"order-1"}`),
	}
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return data
}

func TestConvertFromKinesisRecord(t *testing.T) {
	t.Run("valid record", func(t *testing.T) {
		record := events.KinesisEventRecord{
			EventID: "kinesis-event-1",
			Kinesis: events.KinesisRecord{
				Data: validEventJSON(t, "event-123", notification.EventOrderPlaced),
			},
		}

		event, err := ConvertFromKinesisRecord(record)
		require.NoError(t, err)
		require.NotNil(t, event)
		assert.Equal(t, "event-123", event.ID)
		assert.Equal(t, notification.EventOrderPlaced, event.Type)
		assert.JSONEq(t, `{"order_id":"order-1"}`, string(event.Data))
	})

	t.Run("invalid JSON", func(t *testing.T) {
		record := events.KinesisEventRecord{
			EventID: "kinesis-event-2",
			Kinesis: events.KinesisRecord{
				Data: []byte("not json"),
			},
		}

		event, err := ConvertFromKinesisRecord(record)
		assert.Error(t, err)
		assert.Nil(t, event)
	})

	t.Run("missing required fields", func(t *testing.T) {
		record := events.KinesisEventRecord{
			EventID: "kinesis-event-3",
			Kinesis: events.KinesisRecord{
				Data: []byte(`{"occurred_at":"2026-01-15T10:30:00Z"}`),
			},
		}

		event, err := ConvertFromKinesisRecord(record)
		assert.Error(t, err)
		assert.Nil(t, event)
	})
}

func TestBatchConvertFromKinesisEvent(t *testing.T) {
	t.Run("batch conversion with mixed results", func(t *testing.T) {
		kinesisEvent := events.KinesisEvent{
			Records: []events.KinesisEventRecord{
				{EventID: "1", Kinesis: events.KinesisRecord{Data: validEventJSON(t, "event-1", notification.EventOrderPlaced)}},
				{EventID: "2", Kinesis: events.KinesisRecord{Data: []byte("invalid json")}},
				{EventID: "3", Kinesis: events.KinesisRecord{Data: validEventJSON(t, "event-3", notification.EventOrderStatusChanged)}},
			},
		}

		eventList, errs := BatchConvertFromKinesisEvent(kinesisEvent)

		require.Len(t, eventList, 2)
		assert.Len(t, errs, 1)
		assert.Equal(t, "event-1", eventList[0].ID)
		assert.Equal(t, "event-3", eventList[1].ID)
	})
}
