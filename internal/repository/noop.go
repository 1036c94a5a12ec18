package repository

import (
	"context"

	"GoldPredict/internal/domain/models"
)

// NoopPublisher drops events. Used when Kafka is disabled.
type NoopPublisher struct{}

func (NoopPublisher) PublishSettled(context.Context, []models.SettlementEvent) error { return nil }

// NoopArchive drops snapshots. Used when ClickHouse is disabled.
type NoopArchive struct{}

func (NoopArchive) Append(context.Context, models.Quote, *models.PriceRecord) error { return nil }
