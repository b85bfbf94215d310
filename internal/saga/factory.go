package saga

import "time"

// Reply builds the outgoing hop for an incoming message: the message id is
// incremented by one, state and type are replaced, the creation date is
// refreshed and the body is swapped for the payload matching the new type.
// The transaction id is carried over untouched.
func Reply(in Message, state State, messageType MessageType) Message {
	return Message{
		MessageID:     in.MessageID + 1,
		TransactionID: in.TransactionID,
		MessageType:   messageType,
		State:         state,
		CreationDate:  time.Now(),
		Body:          emptyBody(messageType),
	}
}

func emptyBody(messageType MessageType) Body {
	switch messageType {
	case TypeHotelRequest:
		return HotelRequest{}
	case TypePaymentRequest:
		return PaymentRequest{}
	case TypePaymentReply:
		return PaymentReply{}
	case TypeOrderReply:
		return OrderReply{}
	}
	return nil
}
