package mongo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/robertarktes/hotel-booking-saga/internal/observability"
	"github.com/robertarktes/hotel-booking-saga/internal/saga"
	"go.mongodb.org/mongo-driver/mongo"
)

// AuditLogger keeps a best-effort trail of saga decisions. Holds are hard
// deleted from storage on rollback and reclamation, so this collection is
// the only history of what the participant decided.
type AuditLogger struct {
	coll   *mongo.Collection
	logger observability.Logger
}

func NewAuditLogger(db *mongo.Database, logger observability.Logger) *AuditLogger {
	return &AuditLogger{
		coll:   db.Collection("saga_decisions"),
		logger: logger,
	}
}

type decisionDoc struct {
	TransactionID string    `bson:"transaction_id"`
	InState       string    `bson:"in_state"`
	OutState      string    `bson:"out_state"`
	Timestamp     time.Time `bson:"timestamp"`
}

// Decision records one handled message. Failures are logged and swallowed;
// auditing must never delay or fail a reply.
func (a *AuditLogger) Decision(ctx context.Context, transactionID uuid.UUID, inState, outState saga.State) {
	doc := decisionDoc{
		TransactionID: transactionID.String(),
		InState:       string(inState),
		OutState:      string(outState),
		Timestamp:     time.Now(),
	}
	if _, err := a.coll.InsertOne(ctx, doc); err != nil {
		a.logger.WithError(err).WithField("transaction_id", transactionID).Warn("audit insert failed")
	}
}
