package services

import (
	"context"
	"fmt"

	"pingcrm-backend/internal/models"
	"pingcrm-backend/internal/natsbus"
)

// OrganizationInput is submitted by the organization forms.
type OrganizationInput struct {
	Name       string `json:"name" validate:"required,max=100"`
	Email      string `json:"email" validate:"omitempty,max=50,email"`
	Phone      string `json:"phone" validate:"omitempty,max=50"`
	Address    string `json:"address" validate:"omitempty,max=150"`
	City       string `json:"city" validate:"omitempty,max=50"`
	Region     string `json:"region" validate:"omitempty,max=50"`
	Country    string `json:"country" validate:"omitempty,max=2"`
	PostalCode string `json:"postal_code" validate:"omitempty,max=25"`
}

func (in OrganizationInput) apply(o *models.Organization) {
	o.Name, o.Email, o.Phone = in.Name, in.Email, in.Phone
	o.Address, o.City, o.Region = in.Address, in.City, in.Region
	o.Country, o.PostalCode = in.Country, in.PostalCode
}

// OrganizationService manages the organizations of an account.
type OrganizationService struct {
	base
}

// NewOrganizationService returns an OrganizationService.
func NewOrganizationService(d Deps) *OrganizationService {
	return &OrganizationService{base: newBase(d, "organizations")}
}

// List returns one page of the actor's organizations.
func (s *OrganizationService) List(ctx context.Context, actor *models.User, f models.Filters, page int) (models.Page[models.Organization], error) {
	return s.store.ListOrganizations(ctx, actor.AccountID, f, page, 0)
}

// Refs returns the organizations offered by the contact forms.
func (s *OrganizationService) Refs(ctx context.Context, actor *models.User) ([]models.OrganizationRef, error) {
	return s.store.ListOrganizationRefs(ctx, actor.AccountID)
}

// Get returns an organization with its active contacts.
func (s *OrganizationService) Get(ctx context.Context, actor *models.User, id int64) (*models.Organization, []models.Contact, error) {
	o, err := s.store.GetOrganization(ctx, actor.AccountID, id)
	if err != nil {
		return nil, nil, err
	}
	contacts, err := s.store.ListOrganizationContacts(ctx, actor.AccountID, id)
	if err != nil {
		return nil, nil, err
	}
	return o, contacts, nil
}

// Create adds an organization to the actor's account.
func (s *OrganizationService) Create(ctx context.Context, actor *models.User, in OrganizationInput) (*models.Organization, error) {
	if err := validationErr(in); err != nil {
		return nil, err
	}
	o := &models.Organization{AccountID: actor.AccountID}
	in.apply(o)
	if err := s.store.CreateOrganization(ctx, o); err != nil {
		return nil, fmt.Errorf("create organization: %w", err)
	}
	s.publish(ctx, o.AccountID, natsbus.EntityOrganization, o.ID, natsbus.ActionCreated, actor.ID)
	return o, nil
}

// Update saves the edit form of an organization.
func (s *OrganizationService) Update(ctx context.Context, actor *models.User, id int64, in OrganizationInput) (*models.Organization, error) {
	o, err := s.store.GetOrganization(ctx, actor.AccountID, id)
	if err != nil {
		return nil, err
	}
	if err := validationErr(in); err != nil {
		return nil, err
	}
	in.apply(o)
	if err := s.store.UpdateOrganization(ctx, o); err != nil {
		return nil, fmt.Errorf("update organization: %w", err)
	}
	s.publish(ctx, o.AccountID, natsbus.EntityOrganization, o.ID, natsbus.ActionUpdated, actor.ID)
	return o, nil
}

// Delete trashes an organization.
func (s *OrganizationService) Delete(ctx context.Context, actor *models.User, id int64) error {
	if err := s.store.DeleteOrganization(ctx, actor.AccountID, id); err != nil {
		return err
	}
	s.publish(ctx, actor.AccountID, natsbus.EntityOrganization, id, natsbus.ActionDeleted, actor.ID)
	return nil
}

// Restore brings a trashed organization back.
func (s *OrganizationService) Restore(ctx context.Context, actor *models.User, id int64) error {
	if err := s.store.RestoreOrganization(ctx, actor.AccountID, id); err != nil {
		return err
	}
	s.publish(ctx, actor.AccountID, natsbus.EntityOrganization, id, natsbus.ActionRestored, actor.ID)
	return nil
}
