package repository

import "github.com/invorya/invoice-api/internal/domain/entity"

// UserRepository define el puerto de persistencia para User (DIP).
// GetByID, GetByEmail y GetByUsernameOrEmail retornan (nil, nil) si no existe.
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id string) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	GetByUsernameOrEmail(username, email string) (*entity.User, error)
}
