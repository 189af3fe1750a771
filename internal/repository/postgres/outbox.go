package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/entity"
	"github.com/egannguyen/go-kafka-ecommerce/storefront/internal/repository"
)

type outbox struct {
	db *sql.DB
}

// NewOutbox creates a new Outbox backed by the outbox_events table.
func NewOutbox(db *sql.DB) repository.Outbox {
	return &outbox{db: db}
}

func (s *outbox) Append(ctx context.Context, streamID string, streamType string, events []entity.Event) error {
	if len(events) == 0 {
		return nil
	}

	return NewTxManager(s.db).WithTransaction(ctx, func(ctx context.Context) error {
		tx := txFrom(ctx)
		stmt, err := tx.PrepareContext(ctx, "INSERT INTO outbox_events (id, stream_id, stream_type, event_type, payload, created_at) VALUES ($1, $2, $3, $4, $5, $6)")
		if err != nil {
			return fmt.Errorf("failed to prepare insert statement: %w", err)
		}
		defer stmt.Close()

		now := time.Now().UTC()
		for _, event := range events {
			payload, err := json.Marshal(event)
			if err != nil {
				return fmt.Errorf("failed to marshal event %s: %w", event.EventType(), err)
			}

			_, err = stmt.ExecContext(ctx, uuid.NewString(), streamID, streamType, event.EventType(), payload, now)
			if err != nil {
				return fmt.Errorf("failed to insert event %s: %w", event.EventType(), err)
			}
		}
		return nil
	})
}

func (s *outbox) Pending(ctx context.Context, limit int) ([]entity.EventRecord, error) {
	query := "SELECT id, stream_id, stream_type, event_type, payload, created_at FROM outbox_events WHERE published_at IS NULL ORDER BY created_at, id"
	args := []any{}
	if limit > 0 {
		query += " LIMIT $1"
		args = append(args, limit)
	}

	rows, err := conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to load pending events: %w", err)
	}
	defer rows.Close()

	events := make([]entity.EventRecord, 0)
	for rows.Next() {
		var record entity.EventRecord
		if err := rows.Scan(&record.ID, &record.StreamID, &record.StreamType, &record.EventType, &record.Payload, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event record: %w", err)
		}
		events = append(events, record)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating event rows: %w", err)
	}
	return events, nil
}

func (s *outbox) MarkPublished(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := conn(ctx, s.db).ExecContext(ctx,
		"UPDATE outbox_events SET published_at = NOW() WHERE id = ANY($1)", pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to mark events published: %w", err)
	}
	return nil
}
