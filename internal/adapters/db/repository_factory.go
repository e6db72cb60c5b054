package db

import (
	"foundly-match-service/internal/ports/outbound"
)

// RepositoryFactory creates and manages all database repositories
type RepositoryFactory struct {
	conn *Connection
}

// NewRepositoryFactory creates a new repository factory
func NewRepositoryFactory(conn *Connection) *RepositoryFactory {
	return &RepositoryFactory{conn: conn}
}

// GetItemRepository returns the item repository
func (f *RepositoryFactory) GetItemRepository() outbound.ItemRepository {
	return NewItemRepository(f.conn)
}

// GetNotificationRepository returns the notification repository
func (f *RepositoryFactory) GetNotificationRepository() outbound.NotificationRepository {
	return NewNotificationRepository(f.conn)
}

// GetUserRepository returns the user repository
func (f *RepositoryFactory) GetUserRepository() outbound.UserRepository {
	return NewUserRepository(f.conn)
}

// GetAllRepositories returns all repositories in a struct for easy dependency injection
func (f *RepositoryFactory) GetAllRepositories() struct {
	ItemRepository         outbound.ItemRepository
	NotificationRepository outbound.NotificationRepository
	UserRepository         outbound.UserRepository
} {
	return struct {
		ItemRepository         outbound.ItemRepository
		NotificationRepository outbound.NotificationRepository
		UserRepository         outbound.UserRepository
	}{
		ItemRepository:         f.GetItemRepository(),
		NotificationRepository: f.GetNotificationRepository(),
		UserRepository:         f.GetUserRepository(),
	}
}
