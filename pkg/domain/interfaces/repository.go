package interfaces

// Repository defines the interface for data persistence
type Repository interface {
	User() UserRepository
	Connection() ConnectionRepository
	Contact() ContactRepository

	// Close releases the underlying client, if any
	Close() error
}
