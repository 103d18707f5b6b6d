package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/sdegypt/diychach/internal/database"
	"github.com/sdegypt/diychach/internal/stats"
)

// Relay fans persisted chat events out to the participants' live
// connections. Delivery is best-effort and at-most-once: offline
// participants and full send queues are skipped, never queued or
// retried.
type Relay struct {
	registry *Registry
	db       database.Repository
	log      *log.Logger
	stats    stats.StatsProvider
}

func NewRelay(logger *log.Logger, db database.Repository, registry *Registry, su stats.StatsProvider) *Relay {
	return &Relay{
		registry: registry,
		db:       db,
		log:      logger,
		stats:    su,
	}
}

// RelayMessage pushes an already-persisted message event to sender
// and receiver. The relay never writes to storage. When sender and
// receiver resolve to the same connection the event is emitted
// twice, matching what two separate lookups deliver.
func (rl *Relay) RelayMessage(ev *MessageEvent) {
	msg := &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Message: ev,
	}

	rl.stats.Incr(metricMessagesRelayed)
	rl.emit(ev.SenderId, msg)
	rl.emit(ev.ReceiverId, msg)
}

// RelayDelete deletes a persisted message and announces the
// deletion to both participants. The message is read before the
// delete because the participant ids are unrecoverable once the row
// is gone. A missing message is a legitimate no-op: a concurrent
// delete may have won the race.
func (rl *Relay) RelayDelete(ctx context.Context, messageId int64) error {
	msg, err := rl.db.GetChatMessage(ctx, messageId)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		return fmt.Errorf("get message %d: %w", messageId, err)
	}

	deleted, err := rl.db.DeleteChatMessage(ctx, messageId)
	if err != nil {
		return fmt.Errorf("delete message %d: %w", messageId, err)
	}
	if !deleted {
		return nil
	}

	rl.stats.Incr(metricDeletesRelayed)

	notice := &ServerMessage{
		BaseMessage: BaseMessage{
			Timestamp: Now(),
		},
		Deleted: &Deleted{MessageId: messageId},
	}
	rl.emit(msg.SenderId, notice)
	rl.emit(msg.ReceiverId, notice)

	return nil
}

func (rl *Relay) emit(accountId int, msg *ServerMessage) {
	conn, ok := rl.registry.AddressOf(accountId)
	if !ok {
		return
	}

	if !conn.Queue(msg) {
		rl.stats.Incr(metricMessagesDropped)
		rl.log.Printf("dropping message for account %d, send queue full", accountId)
	}
}
