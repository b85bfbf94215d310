package saga_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/robertarktes/hotel-booking-saga/internal/saga"
)

func TestMessage_DecodesBodyByType(t *testing.T) {
	txID := uuid.New()
	raw := `{
		"messageId": 3,
		"transactionId": "` + txID.String() + `",
		"messageType": "HotelRequest",
		"state": "Begin",
		"creationDate": "2025-06-01T10:00:00Z",
		"body": {
			"hotelName": "Grand Meridian",
			"roomType": "Double Deluxe",
			"bookFrom": "2025-06-10T00:00:00Z",
			"bookTo": "2025-06-12T00:00:00Z"
		}
	}`

	var msg saga.Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	body, ok := msg.Body.(saga.HotelRequest)
	if !ok {
		t.Fatalf("expected HotelRequest body, got %T", msg.Body)
	}
	if body.HotelName != "Grand Meridian" || body.RoomType != "Double Deluxe" {
		t.Errorf("body fields lost: %+v", body)
	}
	if msg.MessageID != 3 || msg.TransactionID != txID || msg.State != saga.StateBegin {
		t.Errorf("envelope fields lost: %+v", msg)
	}
}

func TestMessage_UnknownTypeFailsDecoding(t *testing.T) {
	raw := `{"messageId":1,"messageType":"FlightRequest","state":"Begin","body":{}}`
	var msg saga.Message
	if err := json.Unmarshal([]byte(raw), &msg); err == nil {
		t.Fatal("expected error for unknown message type")
	}
}

func TestMessage_NullBodyAllowed(t *testing.T) {
	raw := `{"messageId":1,"messageType":"OrderReply","state":"HotelTimedRollback","body":null}`
	var msg saga.Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if msg.Body != nil {
		t.Errorf("expected nil body, got %T", msg.Body)
	}
}

func TestMessage_RoundTrip(t *testing.T) {
	in := saga.Message{
		MessageID:     7,
		TransactionID: uuid.New(),
		MessageType:   saga.TypeHotelRequest,
		State:         saga.StateBegin,
		CreationDate:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
		Body: saga.HotelRequest{
			HotelName: "Baltic Pearl",
			RoomType:  "Apartment",
			BookFrom:  time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
			BookTo:    time.Date(2025, 7, 8, 0, 0, 0, 0, time.UTC),
		},
	}

	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var out saga.Message
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Body != in.Body {
		t.Errorf("body changed across the wire: %+v vs %+v", out.Body, in.Body)
	}
}
