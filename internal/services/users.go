package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"pingcrm-backend/internal/auth"
	"pingcrm-backend/internal/db"
	"pingcrm-backend/internal/filestore"
	"pingcrm-backend/internal/models"
	"pingcrm-backend/internal/natsbus"
	"pingcrm-backend/internal/storage"
	"pingcrm-backend/internal/validation"
)

// Demo user guard messages.
const (
	MsgDemoUpdate = "Updating the demo user is not allowed."
	MsgDemoDelete = "Deleting the demo user is not allowed."
)

// UserInput is submitted by the user create and edit forms.
type UserInput struct {
	FirstName   string `json:"first_name" validate:"required,max=25"`
	LastName    string `json:"last_name" validate:"required,max=25"`
	Email       string `json:"email" validate:"required,max=50,email"`
	Password    string `json:"password"`
	Owner       bool   `json:"owner"`
	RemovePhoto bool   `json:"remove_photo"`
}

// UserService manages the users of an account.
type UserService struct {
	base
	photos    *Photos
	demoEmail string
}

// NewUserService returns a UserService. Updates and deletes of the user
// with demoEmail are refused.
func NewUserService(d Deps, files filestore.Store, demoEmail string) *UserService {
	return &UserService{
		base:      newBase(d, "users"),
		photos:    NewPhotos(files),
		demoEmail: demoEmail,
	}
}

func (s *UserService) isDemo(u *models.User) bool {
	return s.demoEmail != "" && strings.EqualFold(u.Email, s.demoEmail)
}

// List returns the users of the actor's account.
func (s *UserService) List(ctx context.Context, actor *models.User, f models.Filters) ([]models.User, error) {
	return s.store.ListUsers(ctx, actor.AccountID, f)
}

// Get returns a user of the actor's account, trashed or not.
func (s *UserService) Get(ctx context.Context, actor *models.User, id int64) (*models.User, error) {
	return s.store.GetUser(ctx, actor.AccountID, id)
}

func (s *UserService) validate(ctx context.Context, store *storage.Storage, in UserInput, exceptID int64, photo *multipart.FileHeader) (validation.Errors, error) {
	errs := validation.Struct(in)
	if _, ok := errs["email"]; !ok {
		taken, err := store.EmailTaken(ctx, in.Email, exceptID)
		if err != nil {
			return nil, err
		}
		if taken {
			errs.Add("email", "The email has already been taken.")
		}
	}
	if photo != nil {
		if _, err := s.photos.Sniff(photo); err != nil {
			errs.Add("photo", err.Error())
		}
	}
	return errs, nil
}

func password(in string) (sql.NullString, error) {
	if in == "" {
		return sql.NullString{}, nil
	}
	hash, err := auth.HashPassword(in)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("hash password: %w", err)
	}
	return sql.NullString{String: hash, Valid: true}, nil
}

// Create adds a user to the actor's account with an optional photo.
func (s *UserService) Create(ctx context.Context, actor *models.User, in UserInput, photo *multipart.FileHeader) (*models.User, error) {
	errs, err := s.validate(ctx, s.store, in, 0, photo)
	if err != nil {
		return nil, err
	}
	if err := errs.Err(); err != nil {
		return nil, err
	}

	pw, err := password(in.Password)
	if err != nil {
		return nil, err
	}
	u := &models.User{
		AccountID: actor.AccountID,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Password:  pw,
		Owner:     in.Owner,
	}

	if photo != nil {
		if u.PhotoPath, err = s.photos.Store(ctx, actor.AccountID, photo); err != nil {
			return nil, err
		}
	}

	if err := s.store.CreateUser(ctx, u); err != nil {
		s.photos.Remove(ctx, u.PhotoPath, s.logger)
		if errors.Is(err, db.ErrDuplicateKey) {
			return nil, validation.Errors{"email": "The email has already been taken."}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.publish(ctx, u.AccountID, natsbus.EntityUser, u.ID, natsbus.ActionCreated, actor.ID)
	return u, nil
}

// Update saves the edit form of a user. A blank password keeps the current
// one. A new photo replaces the old one, and RemovePhoto drops it.
func (s *UserService) Update(ctx context.Context, actor *models.User, id int64, in UserInput, photo *multipart.FileHeader) (*models.User, error) {
	var (
		u        *models.User
		oldPhoto string
		newPhoto string
	)
	err := s.dbx.TransactionContext(ctx, func(tx *db.Tx) error {
		store := s.store.WithTx(tx)
		var err error
		u, err = store.GetUser(ctx, actor.AccountID, id)
		if err != nil {
			return err
		}
		if s.isDemo(u) {
			return &GuardError{Message: MsgDemoUpdate}
		}

		errs, err := s.validate(ctx, store, in, u.ID, photo)
		if err != nil {
			return err
		}
		if err := errs.Err(); err != nil {
			return err
		}

		u.FirstName, u.LastName, u.Email, u.Owner = in.FirstName, in.LastName, in.Email, in.Owner
		if in.Password != "" {
			if u.Password, err = password(in.Password); err != nil {
				return err
			}
		}

		switch {
		case photo != nil:
			if newPhoto, err = s.photos.Store(ctx, actor.AccountID, photo); err != nil {
				return err
			}
			oldPhoto, u.PhotoPath = u.PhotoPath, newPhoto
		case in.RemovePhoto:
			oldPhoto, u.PhotoPath = u.PhotoPath, ""
		}

		if err := store.UpdateUser(ctx, u); err != nil {
			if errors.Is(err, db.ErrDuplicateKey) {
				return validation.Errors{"email": "The email has already been taken."}
			}
			return fmt.Errorf("update user: %w", err)
		}
		return nil
	})
	if err != nil {
		s.photos.Remove(ctx, newPhoto, s.logger)
		return nil, err
	}

	s.photos.Remove(ctx, oldPhoto, s.logger)
	s.publish(ctx, u.AccountID, natsbus.EntityUser, u.ID, natsbus.ActionUpdated, actor.ID)
	return u, nil
}

// Delete trashes a user.
func (s *UserService) Delete(ctx context.Context, actor *models.User, id int64) error {
	u, err := s.store.GetUser(ctx, actor.AccountID, id)
	if err != nil {
		return err
	}
	if s.isDemo(u) {
		return &GuardError{Message: MsgDemoDelete}
	}
	if err := s.store.DeleteUser(ctx, actor.AccountID, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	s.publish(ctx, u.AccountID, natsbus.EntityUser, u.ID, natsbus.ActionDeleted, actor.ID)
	return nil
}

// Restore brings a trashed user back.
func (s *UserService) Restore(ctx context.Context, actor *models.User, id int64) error {
	if err := s.store.RestoreUser(ctx, actor.AccountID, id); err != nil {
		return err
	}
	s.publish(ctx, actor.AccountID, natsbus.EntityUser, id, natsbus.ActionRestored, actor.ID)
	return nil
}
