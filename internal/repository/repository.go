package repository

import "lockout_web/internal/storage"

type Repositories struct {
	Room RoomRepository
}

func NewRepositories(db *storage.PostgresDB) *Repositories {
	return &Repositories{
		Room: NewRoomRepository(db),
	}
}
