package repositories

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"biblioteca/internal/models"
)

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) List(db *gorm.DB) ([]models.User, error) {
	if db == nil {
		db = r.db
	}
	var users []models.User
	if err := db.Order("id_usuario").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) GetByID(db *gorm.DB, id int64) (*models.User, error) {
	if db == nil {
		db = r.db
	}
	var user models.User
	if err := db.First(&user, "id_usuario = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) GetByUsername(db *gorm.DB, username string) (*models.User, error) {
	if db == nil {
		db = r.db
	}
	var user models.User
	if err := db.First(&user, "nome_usuario = ?", username).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Create(db *gorm.DB, user *models.User) error {
	if db == nil {
		db = r.db
	}
	return db.Omit(clause.Associations).Create(user).Error
}

// UpdateProfile overwrites the name, email and contact fields. The credential is left alone.
func (r *userRepository) UpdateProfile(db *gorm.DB, id int64, user *models.User) error {
	if db == nil {
		db = r.db
	}
	return db.Model(&models.User{}).
		Where("id_usuario = ?", id).
		Updates(map[string]interface{}{
			"nome_usuario": user.Username,
			"email":        user.Email,
			"telefone":     user.Phone,
			"cep":          user.PostalCode,
			"rua":          user.Street,
			"cidade":       user.City,
			"estado":       user.State,
			"bairro":       user.District,
			"numero":       user.Number,
		}).Error
}

func (r *userRepository) Delete(db *gorm.DB, id int64) (bool, error) {
	if db == nil {
		db = r.db
	}
	res := db.Delete(&models.User{}, "id_usuario = ?", id)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *userRepository) UnlinkLoans(db *gorm.DB, userID int64) error {
	if db == nil {
		db = r.db
	}
	return db.Where("fk_id_usuario = ?", userID).Delete(&models.UserLoan{}).Error
}
