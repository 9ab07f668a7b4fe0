// Package ports - EventPublisher для публикации domain events.
//
// SOLID Principles:
// - DIP: Application не знает о Kafka/RabbitMQ деталях
// - OCP: Можно заменить Kafka на другую систему без изменения use cases
// - ISP: Простой интерфейс с одним методом
//
// Pattern: Publisher/Subscriber (Observer на уровне инфраструктуры)
package ports

import (
	"context"

	"github.com/wallethub/eventcore/internal/domain/events"
)

// EventPublisher определяет контракт для публикации domain events.
//
// Реализации могут быть:
// - Kafka (Phase 6 - production)
// - In-memory (тесты)
// - RabbitMQ (альтернатива)
// - Database Outbox + Poller (для гарантий доставки)
type EventPublisher interface {
	// Publish публикует одно событие.
	//
	// Behaviour:
	// - Асинхронная публикация (не блокирует)
	// - At-least-once delivery (может быть дубликаты)
	// - Consumers должны быть идемпотентными!
	//
	// Example:
	//   event := events.NewWalletCredited(walletID, amount, txID, balance)
	//   err := publisher.Publish(ctx, event)
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch публикует несколько событий за один вызов.
	// Более эффективно для множественных событий.
	//
	// Важно: Если один event не удаётся опубликовать, вся batch должна провалиться
	// (атомарность на уровне batch).
	//
	// Example:
	//   events := []events.DomainEvent{
	//       events.NewWalletCredited(...),
	//       events.NewTransactionCompleted(...),
	//   }
	//   err := publisher.PublishBatch(ctx, events)
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// EventSubscriber определяет контракт для подписки на события (consumers).
// Будет использоваться в Phase 6 для обработчиков событий.
//
// Пока оставляем как placeholder для архитектуры.
type EventSubscriber interface {
	// Subscribe регистрирует обработчик для типа события.
	//
	// eventType: например, "wallet.credited"
	// handler: функция-обработчик
	//
	// Example:
	//   subscriber.Subscribe("wallet.credited", func(ctx context.Context, event events.DomainEvent) error {
	//       walletCredited := event.(*events.WalletCredited)
	//       // Отправить уведомление пользователю
	//       return notificationService.Send(walletCredited.WalletID, ...)
	//   })
	Subscribe(eventType string, handler EventHandler) error

	// Start начинает потребление событий (blocking call).
	// Обычно запускается в отдельной горутине.
	Start(ctx context.Context) error

	// Stop останавливает потребление.
	Stop(ctx context.Context) error
}

// EventHandler - функция-обработчик события.
type EventHandler func(ctx context.Context, event events.DomainEvent) error

// The transactional-outbox contract itself now lives in OutboxStore
// (outbox_store.go): a plain (id, event_type, payload, correlation_id,
// sent) record rather than a reconstructed DomainEvent, since the
// dispatcher only ever needs the bytes and the type symbol to build an
// envelope - it never rehydrates a concrete Go event type.
