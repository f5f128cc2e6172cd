package streams

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/jimdaga/vendorhub/internal/store"
)

// HandleChange returns a handler relaying changes made by other processes
// into the local subscription bus. Changes from origin itself are skipped.
func HandleChange(s *store.Store, origin string, logger *slog.Logger) func(ChangeEvent) error {
	return func(ev ChangeEvent) error {
		if ev.Origin == origin {
			return nil
		}

		action := store.Action(ev.Action)
		if action != store.ActionPut && action != store.ActionDelete {
			logger.Warn("Ignoring change with unknown action", "action", ev.Action, "table", ev.Table)
			return nil
		}

		err := s.Relay(store.Event{
			Action: action,
			Table:  ev.Table,
			Data:   RemoteChange{Origin: ev.Origin, ID: ev.ID, Record: ev.Record},
		})
		if errors.Is(err, store.ErrUnknownTable) {
			// A newer process may declare tables this one does not know
			logger.Warn("Ignoring change for unknown table", "table", ev.Table)
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to relay change: %w", err)
		}

		logger.Debug("Relayed remote change", "origin", ev.Origin, "table", ev.Table, "action", ev.Action, "id", ev.ID)
		return nil
	}
}
