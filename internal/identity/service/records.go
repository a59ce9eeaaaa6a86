package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aussiebroadwan/foodcar/internal/identity/domain"
	"github.com/aussiebroadwan/foodcar/internal/identity/store"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// profileFields are the user editable parts of a record.
type profileFields struct {
	Name  string `validate:"omitempty,max=80"`
	Email string `validate:"omitempty,email,max=254"`
}

func validateProfile(name, email string) error {
	err := validate.Struct(profileFields{Name: name, Email: email})
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	for _, fe := range verrs {
		if fe.Field() == "Email" {
			return ErrInvalidEmail
		}
	}
	return fmt.Errorf("%w: %s failed %s", ErrInvalidRecord, strings.ToLower(verrs[0].Field()), verrs[0].Tag())
}

// RecordService owns the profile records keyed by identity id.
type RecordService struct {
	Store store.Store
	Now   func() time.Time
}

func (s *RecordService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

func (s *RecordService) Get(ctx context.Context, id string) (domain.Record, error) {
	rec, err := s.Store.Records().GetRecord(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return domain.Record{}, ErrNotFound
	}
	if err != nil {
		return domain.Record{}, fmt.Errorf("failed to load record: %w", err)
	}
	return rec, nil
}

// Put writes rec. With createOnly an existing record is left untouched and
// ErrAlreadyExists is returned.
func (s *RecordService) Put(ctx context.Context, rec domain.Record, createOnly bool) (domain.Record, error) {
	if err := validateRecord(&rec); err != nil {
		return domain.Record{}, err
	}

	now := s.now()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	if createOnly {
		err := s.Store.Records().CreateRecord(ctx, rec)
		if errors.Is(err, store.ErrAlreadyExists) {
			return domain.Record{}, ErrAlreadyExists
		}
		if err != nil {
			return domain.Record{}, fmt.Errorf("failed to create record: %w", err)
		}
		return rec, nil
	}

	if err := s.Store.Records().PutRecord(ctx, rec); err != nil {
		return domain.Record{}, fmt.Errorf("failed to save record: %w", err)
	}
	return s.Get(ctx, rec.ID)
}

func validateRecord(rec *domain.Record) error {
	rec.ID = strings.TrimSpace(rec.ID)
	rec.Name = strings.TrimSpace(rec.Name)
	rec.Email = strings.TrimSpace(rec.Email)
	if rec.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidRecord)
	}
	return validateProfile(rec.Name, rec.Email)
}

// UpdateUserInput holds the editable profile fields. Empty fields are left
// as they are.
type UpdateUserInput struct {
	Name  string
	Email string
	Phone string
}

// UpdateUser edits the caller's own record. The identity's email follows the
// record so later sessions report it.
func (s *RecordService) UpdateUser(ctx context.Context, id string, in UpdateUserInput) (domain.Record, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)

	if in.Name == "" && in.Email == "" && in.Phone == "" {
		return domain.Record{}, ErrNoFields
	}
	if err := validateProfile(in.Name, in.Email); err != nil {
		return domain.Record{}, err
	}
	if in.Phone != "" {
		p, err := domain.NormalizePhone(in.Phone)
		if err != nil {
			return domain.Record{}, ErrInvalidPhone
		}
		in.Phone = p
	}

	var out domain.Record
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		rec, err := tx.Records().GetRecord(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load record: %w", err)
		}

		if in.Name != "" {
			rec.Name = in.Name
		}
		if in.Phone != "" {
			rec.Phone = in.Phone
		}
		if in.Email != "" && in.Email != rec.Email {
			rec.Email = in.Email
			if err := tx.Identities().UpdateIdentityEmail(ctx, id, in.Email); err != nil && !errors.Is(err, store.ErrNotFound) {
				return fmt.Errorf("failed to update identity email: %w", err)
			}
		}
		rec.UpdatedAt = s.now()

		if err := tx.Records().PutRecord(ctx, rec); err != nil {
			return fmt.Errorf("failed to save record: %w", err)
		}
		out = rec
		return nil
	})
	if err != nil {
		return domain.Record{}, err
	}
	return out, nil
}
