package storage

import (
	"errors"

	"storyframe-ai/internal/types"

	"gorm.io/gorm"
)

func CreateUser(user *types.User) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Create(user).Error
}

func GetUserById(id int64) (*types.User, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var user types.User
	if err := DB.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUserByUsername(username string) (*types.User, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var user types.User
	if err := DB.Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func GetUserByEmail(email string) (*types.User, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var user types.User
	if err := DB.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByLogin matches the login identifier against username or email.
func GetUserByLogin(login string) (*types.User, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	var user types.User
	err := DB.Where("username = ? OR email = ?", login, login).First(&user).Error
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func SaveUser(user *types.User) error {
	if DB == nil {
		return errors.New("database not initialized")
	}
	return DB.Save(user).Error
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
