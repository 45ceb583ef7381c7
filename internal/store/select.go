package store

// MemoryPath selects the in-memory store in place of a snapshot file.
const MemoryPath = ":memory:"

// Select picks the store implementation for the configured settings:
// postgres when a database URL is set, the in-memory store for MemoryPath,
// and the JSON file store otherwise.
func Select(databaseURL, roomsFile string) (Store, error) {
	if databaseURL != "" {
		return NewPostgresStore(databaseURL)
	}
	if roomsFile == MemoryPath {
		return NewMemStore(), nil
	}
	return NewFileStore(roomsFile), nil
}
