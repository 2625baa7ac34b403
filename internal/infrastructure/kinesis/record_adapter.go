package kinesis

import (
	"encoding/json"
	"fmt"

	"github.com/aws/aws-lambda-go/events"
	"github.com/example/ec-shop/internal/notification"
)

// ConvertFromKinesisRecord decodes one Kinesis record into a notification
// event. In AWS the notification topic is mirrored to a Kinesis stream and
// records carry the same JSON envelope the Kafka consumer sees.
func ConvertFromKinesisRecord(record events.KinesisEventRecord) (*notification.Event, error) {
	var event notification.Event
	if err := json.Unmarshal(record.Kinesis.Data, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notification event: %w", err)
	}

	if event.ID == "" || event.Type == "" {
		return nil, fmt.Errorf("missing required fields: id=%s, type=%s", event.ID, event.Type)
	}

	return &event, nil
}

// BatchConvertFromKinesisEvent converts all records from a Kinesis event.
// Returns successfully converted events and any errors encountered.
func BatchConvertFromKinesisEvent(kinesisEvent events.KinesisEvent) ([]*notification.Event, []error) {
	var eventList []*notification.Event
	var errors []error

	for _, record := range kinesisEvent.Records {
		event, err := ConvertFromKinesisRecord(record)
		if err != nil {
			errors = append(errors, fmt.Errorf("record %s: %w", record.EventID, err))
			continue
		}
		eventList = append(eventList, event)
	}

	return eventList, errors
}
