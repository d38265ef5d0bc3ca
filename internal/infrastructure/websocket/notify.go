package websocket

import (
	"expressivart/internal/infrastructure/realtime"
)

// NotificationData is the payload of a notification frame.
type NotificationData struct {
	Change realtime.Change `json:"change"`
}

// Notify pushes every change on table to the open connections of the users
// named by userColumns. Users without a connection are skipped.
func (m *Manager) Notify(sub realtime.Subscriber, table string, userColumns ...string) (*realtime.Subscription, error) {
	filter := realtime.Filter{Table: table, Event: realtime.EventAll}
	return sub.Subscribe(filter, func(change realtime.Change) {
		payload, err := Encode(Frame{Type: FrameNotification}, NotificationData{Change: change})
		if err != nil {
			m.log.Error().Err(err).Str("table", table).Msg("notification encode failed")
			return
		}

		seen := make(map[string]bool, len(userColumns))
		for _, column := range userColumns {
			userID := change.Columns[column]
			if userID == "" || seen[userID] {
				continue
			}
			seen[userID] = true
			m.SendToUser(userID, payload)
		}
	}, func(err error) {
		m.log.Error().Err(err).Str("table", table).Msg("notifications stopped")
	})
}
