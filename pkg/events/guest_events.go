package events

import "time"

// Ledger telemetry events. Quota rejections and migrations are published so
// downstream telemetry can tell quota pressure apart from capacity failures.
const (
	TypeGuestLimitReached = "GUEST_LIMIT_REACHED"
	TypeGuestMigrated     = "GUEST_MIGRATED"
)

func NewGuestLimitReached(sessionKey string, messageCount, limit int) Event {
	return BaseEvent{
		Type: TypeGuestLimitReached,
		Data: map[string]interface{}{
			"session_key":   sessionKey,
			"message_count": messageCount,
			"limit":         limit,
		},
		OccurredAt: time.Now(),
	}
}

func NewGuestMigrated(sessionKey, userId string, migratedCount int64) Event {
	return BaseEvent{
		Type: TypeGuestMigrated,
		Data: map[string]interface{}{
			"session_key":    sessionKey,
			"user_id":        userId,
			"migrated_count": migratedCount,
		},
		OccurredAt: time.Now(),
	}
}
