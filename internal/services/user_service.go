package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"gorm.io/gorm"

	"biblioteca/internal/models"
	"biblioteca/internal/passwords"
	"biblioteca/internal/repositories"
)

// UserService manages user records and checks login credentials.
type UserService interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id int64) (*models.User, error)
	CreateUser(ctx context.Context, in UserInput) (*models.User, error)
	UpdateUser(ctx context.Context, id int64, in UserInput) error
	DeleteUser(ctx context.Context, id int64) error
	Login(ctx context.Context, username, password string) (*models.User, error)
}

// UserInput carries the writable user fields. Password is ignored on update.
type UserInput struct {
	Username   string
	Email      string
	Password   string
	Phone      string
	PostalCode string
	Street     string
	City       string
	State      string
	District   string
	Number     string
}

func (in UserInput) apply(u *models.User) {
	u.Username = strings.TrimSpace(in.Username)
	u.Email = strings.TrimSpace(in.Email)
	u.Phone = in.Phone
	u.PostalCode = in.PostalCode
	u.Street = in.Street
	u.City = in.City
	u.State = in.State
	u.District = in.District
	u.Number = in.Number
}

type userService struct {
	db       *gorm.DB
	userRepo repositories.UserRepository
	loanRepo repositories.LoanRepository
	log      *slog.Logger
}

func NewUserService(db *gorm.DB, userRepo repositories.UserRepository, loanRepo repositories.LoanRepository, log *slog.Logger) UserService {
	return &userService{db: db, userRepo: userRepo, loanRepo: loanRepo, log: log}
}

func (s *userService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.userRepo.List(s.db.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *userService) GetUser(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.userRepo.GetByID(s.db.WithContext(ctx), id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user %d: %w", id, err)
	}
	return u, nil
}

// CreateUser stores a new user with a bcrypt hash of the password.
func (s *userService) CreateUser(ctx context.Context, in UserInput) (*models.User, error) {
	if strings.TrimSpace(in.Username) == "" || in.Password == "" {
		return nil, ErrInvalidUser
	}
	hash, err := passwords.Hash(in.Password)
	if err != nil {
		if errors.Is(err, passwords.ErrTooLong) {
			return nil, fmt.Errorf("%w: %w", ErrInvalidUser, err)
		}
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &models.User{PasswordHash: hash}
	in.apply(u)
	if err := s.userRepo.Create(s.db.WithContext(ctx), u); err != nil {
		if repositories.IsUniqueViolation(err) {
			return nil, ErrUsernameTaken
		}
		s.log.Error("create user failed", "username", u.Username, "err", err)
		return nil, fmt.Errorf("insert user: %w", err)
	}
	s.log.Info("user created", "user_id", u.ID, "username", u.Username)
	return u, nil
}

func (s *userService) UpdateUser(ctx context.Context, id int64, in UserInput) error {
	if strings.TrimSpace(in.Username) == "" {
		return ErrInvalidUser
	}
	var patch models.User
	in.apply(&patch)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.userRepo.GetByID(tx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("load user: %w", err)
		}
		if err := s.userRepo.UpdateProfile(tx, id, &patch); err != nil {
			if repositories.IsUniqueViolation(err) {
				return ErrUsernameTaken
			}
			s.log.Error("update user failed", "user_id", id, "err", err)
			return fmt.Errorf("update user: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("user updated", "user_id", id)
	return nil
}

// DeleteUser removes a user who has no open loans. Links to closed loans are
// dropped with the user; the loan rows themselves stay.
func (s *userService) DeleteUser(ctx context.Context, id int64) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.userRepo.GetByID(tx, id); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrUserNotFound
			}
			return fmt.Errorf("load user: %w", err)
		}
		open, err := s.loanRepo.CountOpenByUser(tx, id)
		if err != nil {
			return fmt.Errorf("count open loans: %w", err)
		}
		if open > 0 {
			s.log.Warn("delete user refused: open loans", "user_id", id, "open_loans", open)
			return ErrUserHasOpenLoans
		}
		if err := s.userRepo.UnlinkLoans(tx, id); err != nil {
			return fmt.Errorf("unlink closed loans: %w", err)
		}
		deleted, err := s.userRepo.Delete(tx, id)
		if err != nil {
			return fmt.Errorf("delete user: %w", err)
		}
		if !deleted {
			return ErrUserNotFound
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("user deleted", "user_id", id)
	return nil
}

// Login returns the user when username and password match. Every kind of
// mismatch yields ErrInvalidCredentials.
func (s *userService) Login(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.userRepo.GetByUsername(s.db.WithContext(ctx), username)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			passwords.Burn(password)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	if !passwords.Check(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}
