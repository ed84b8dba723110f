package inmemdb

import (
	"context"

	"github.com/trezcool/darasa/core/user"
)

type userRepository struct {
	db *userTable
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	if _, taken := repo.db.byEmail[usr.Email]; taken {
		return user.User{}, user.ErrEmailExists
	}
	usr.PasswordHash = append([]byte(nil), usr.PasswordHash...)
	repo.db.table[usr.ID] = &usr
	repo.db.byEmail[usr.Email] = usr.ID
	return usr, nil
}

func (repo *userRepository) GetUserByID(_ context.Context, id string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if usr, ok := repo.db.table[id]; ok {
		return copyUser(usr), nil
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) GetUserByEmail(_ context.Context, email string) (user.User, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	if id, ok := repo.db.byEmail[email]; ok {
		return copyUser(repo.db.table[id]), nil
	}
	return user.User{}, user.ErrNotFound
}

func copyUser(usr *user.User) user.User {
	cp := *usr
	cp.PasswordHash = append([]byte(nil), usr.PasswordHash...)
	return cp
}
