package saga

import (
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
)

// MessageType identifies the payload carried by a message.
type MessageType string

const (
	TypeHotelRequest   MessageType = "HotelRequest"
	TypePaymentRequest MessageType = "PaymentRequest"
	TypePaymentReply   MessageType = "PaymentReply"
	TypeOrderReply     MessageType = "OrderReply"
)

// State is the saga state tag the orchestrator routes on.
type State string

const (
	StateBegin              State = "Begin"
	StatePaymentAccept      State = "PaymentAccept"
	StatePaymentFailed      State = "PaymentFailed"
	StateHotelTimedAccept   State = "HotelTimedAccept"
	StateHotelTimedFail     State = "HotelTimedFail"
	StateHotelTimedRollback State = "HotelTimedRollback"
	StateHotelFullAccept    State = "HotelFullAccept"
	StateHotelFullFail      State = "HotelFullFail"
)

// Body is the payload union of a message, keyed by MessageType.
type Body interface {
	isBody()
}

// HotelRequest asks this participant to hold a room for a stay.
type HotelRequest struct {
	HotelName string    `json:"hotelName"`
	RoomType  string    `json:"roomType"`
	BookFrom  time.Time `json:"bookFrom"`
	BookTo    time.Time `json:"bookTo"`
}

type PaymentRequest struct{}

type PaymentReply struct{}

type OrderReply struct{}

func (HotelRequest) isBody()   {}
func (PaymentRequest) isBody() {}
func (PaymentReply) isBody()   {}
func (OrderReply) isBody()     {}

// Message is one saga hop between this participant and the orchestrator.
// MessageID increases by one on every hop this participant produces;
// TransactionID never changes for the life of the saga.
type Message struct {
	MessageID     int         `json:"messageId"`
	TransactionID uuid.UUID   `json:"transactionId"`
	MessageType   MessageType `json:"messageType"`
	State         State       `json:"state"`
	CreationDate  time.Time   `json:"creationDate"`
	Body          Body        `json:"body,omitempty"`
}

type wireMessage struct {
	MessageID     int             `json:"messageId"`
	TransactionID uuid.UUID       `json:"transactionId"`
	MessageType   MessageType     `json:"messageType"`
	State         State           `json:"state"`
	CreationDate  time.Time       `json:"creationDate"`
	Body          json.RawMessage `json:"body,omitempty"`
}

// UnmarshalJSON decodes the envelope first and then the body by message type,
// so handlers can match on concrete body types instead of casting maps.
func (m *Message) UnmarshalJSON(data []byte) error {
	var wire wireMessage
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	m.MessageID = wire.MessageID
	m.TransactionID = wire.TransactionID
	m.MessageType = wire.MessageType
	m.State = wire.State
	m.CreationDate = wire.CreationDate
	m.Body = nil

	if len(wire.Body) == 0 || string(wire.Body) == "null" {
		return nil
	}

	switch wire.MessageType {
	case TypeHotelRequest:
		var body HotelRequest
		if err := json.Unmarshal(wire.Body, &body); err != nil {
			return errors.Wrap(err, "decode hotel request body")
		}
		m.Body = body
	case TypePaymentRequest:
		var body PaymentRequest
		if err := json.Unmarshal(wire.Body, &body); err != nil {
			return errors.Wrap(err, "decode payment request body")
		}
		m.Body = body
	case TypePaymentReply:
		var body PaymentReply
		if err := json.Unmarshal(wire.Body, &body); err != nil {
			return errors.Wrap(err, "decode payment reply body")
		}
		m.Body = body
	case TypeOrderReply:
		var body OrderReply
		if err := json.Unmarshal(wire.Body, &body); err != nil {
			return errors.Wrap(err, "decode order reply body")
		}
		m.Body = body
	default:
		return errors.Newf("unknown message type %q", wire.MessageType)
	}
	return nil
}
