package services

import (
	"context"
	"errors"
	"fmt"

	"pingcrm-backend/internal/models"
	"pingcrm-backend/internal/natsbus"
	"pingcrm-backend/internal/storage"
	"pingcrm-backend/internal/validation"
)

// ContactInput is submitted by the contact forms.
type ContactInput struct {
	FirstName      string `json:"first_name" validate:"required,max=25"`
	LastName       string `json:"last_name" validate:"required,max=25"`
	OrganizationID *int64 `json:"organization_id"`
	Email          string `json:"email" validate:"omitempty,max=50,email"`
	Phone          string `json:"phone" validate:"omitempty,max=50"`
	Address        string `json:"address" validate:"omitempty,max=150"`
	City           string `json:"city" validate:"omitempty,max=50"`
	Region         string `json:"region" validate:"omitempty,max=50"`
	Country        string `json:"country" validate:"omitempty,max=2"`
	PostalCode     string `json:"postal_code" validate:"omitempty,max=25"`
}

func (in ContactInput) apply(c *models.Contact) {
	c.OrganizationID = in.OrganizationID
	c.FirstName, c.LastName = in.FirstName, in.LastName
	c.Email, c.Phone, c.Address = in.Email, in.Phone, in.Address
	c.City, c.Region, c.Country, c.PostalCode = in.City, in.Region, in.Country, in.PostalCode
}

// ContactService manages the contacts of an account.
type ContactService struct {
	base
}

// NewContactService returns a ContactService.
func NewContactService(d Deps) *ContactService {
	return &ContactService{base: newBase(d, "contacts")}
}

// List returns one page of the actor's contacts with their organizations.
func (s *ContactService) List(ctx context.Context, actor *models.User, f models.Filters, page int) (models.Page[models.Contact], error) {
	return s.store.ListContacts(ctx, actor.AccountID, f, page, 0)
}

// Get returns a contact of the actor's account, trashed or not.
func (s *ContactService) Get(ctx context.Context, actor *models.User, id int64) (*models.Contact, error) {
	return s.store.GetContact(ctx, actor.AccountID, id)
}

// validate checks the form and that the organization belongs to the
// actor's account.
func (s *ContactService) validate(ctx context.Context, actor *models.User, in ContactInput) error {
	errs := validation.Struct(in)
	if in.OrganizationID != nil {
		_, err := s.store.GetOrganization(ctx, actor.AccountID, *in.OrganizationID)
		switch {
		case errors.Is(err, storage.ErrNotFound):
			errs.Add("organization_id", "The selected organization id is invalid.")
		case err != nil:
			return err
		}
	}
	return errs.Err()
}

// Create adds a contact to the actor's account.
func (s *ContactService) Create(ctx context.Context, actor *models.User, in ContactInput) (*models.Contact, error) {
	if err := s.validate(ctx, actor, in); err != nil {
		return nil, err
	}
	c := &models.Contact{AccountID: actor.AccountID}
	in.apply(c)
	if err := s.store.CreateContact(ctx, c); err != nil {
		return nil, fmt.Errorf("create contact: %w", err)
	}
	s.publish(ctx, c.AccountID, natsbus.EntityContact, c.ID, natsbus.ActionCreated, actor.ID)
	return c, nil
}

// Update saves the edit form of a contact.
func (s *ContactService) Update(ctx context.Context, actor *models.User, id int64, in ContactInput) (*models.Contact, error) {
	c, err := s.store.GetContact(ctx, actor.AccountID, id)
	if err != nil {
		return nil, err
	}
	if err := s.validate(ctx, actor, in); err != nil {
		return nil, err
	}
	in.apply(c)
	if err := s.store.UpdateContact(ctx, c); err != nil {
		return nil, fmt.Errorf("update contact: %w", err)
	}
	s.publish(ctx, c.AccountID, natsbus.EntityContact, c.ID, natsbus.ActionUpdated, actor.ID)
	return c, nil
}

// Delete trashes a contact.
func (s *ContactService) Delete(ctx context.Context, actor *models.User, id int64) error {
	if err := s.store.DeleteContact(ctx, actor.AccountID, id); err != nil {
		return err
	}
	s.publish(ctx, actor.AccountID, natsbus.EntityContact, id, natsbus.ActionDeleted, actor.ID)
	return nil
}

// Restore brings a trashed contact back.
func (s *ContactService) Restore(ctx context.Context, actor *models.User, id int64) error {
	if err := s.store.RestoreContact(ctx, actor.AccountID, id); err != nil {
		return err
	}
	s.publish(ctx, actor.AccountID, natsbus.EntityContact, id, natsbus.ActionRestored, actor.ID)
	return nil
}
