package session

import (
	"go.uber.org/zap"
)

// Open loads the active profile from file into a new store.
func Open(file *ActiveFile) (*Store, error) {
	id, err := file.Load()
	if err != nil {
		return nil, err
	}
	return NewStore(id), nil
}

// Persist mirrors every change of store into file: an id is written, ""
// removes the file. Each notification writes the store's value at the
// time of writing, so the file ends up matching the store even when
// notifications overlap. Failures are logged; the in-memory value stays
// authoritative for the running program.
func Persist(store *Store, file *ActiveFile, logger *zap.Logger) (stop func()) {
	return store.Subscribe(func(string) {
		id, err := file.writeLatest(store.ActiveProfileID)
		if err != nil {
			logger.Error("persisting active profile", zap.String("id", id), zap.Error(err))
			return
		}
		logger.Debug("active profile persisted", zap.String("id", id))
	})
}
