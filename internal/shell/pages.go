package shell

import (
	"context"
	"errors"
	"fmt"

	"github.com/aussiebroadwan/foodcar/pkg/phoneauth"
)

func (s *Shell) home(ctx context.Context) (string, error) {
	id := s.session.State().Identity
	if id == nil {
		return PathLogin, nil
	}
	fmt.Fprintf(s.out, "\n== FoodCar ==\nSigned in as %s\n", displayName(*id))

	for {
		line, err := s.readLine(ctx, "[profile] [logout] [quit]: ")
		if err != nil {
			return "", err
		}
		switch line {
		case "":
		case "profile":
			return PathProfile, nil
		case "logout":
			return s.logout(ctx)
		default:
			fmt.Fprintln(s.out, "Unknown command")
		}
	}
}

func (s *Shell) profile(ctx context.Context) (string, error) {
	id := s.session.State().Identity
	if id == nil {
		return PathLogin, nil
	}

	fmt.Fprintln(s.out, "\n== Profile ==")
	rec, err := s.account.GetRecord(ctx, id.ID)
	switch {
	case errors.Is(err, phoneauth.ErrRecordNotFound):
		rec = phoneauth.DefaultRecord(*id)
	case err != nil:
		s.alert(&phoneauth.RecordStoreError{Op: "get", Err: err})
		rec = phoneauth.DefaultRecord(*id)
	}
	printRecord(s, rec)

	for {
		line, err := s.readLine(ctx, "[edit] [logout] [back]: ")
		if err != nil {
			return "", err
		}
		switch line {
		case "":
		case "back":
			return PathHome, nil
		case "logout":
			return s.logout(ctx)
		case "edit":
			updated, err := s.editProfile(ctx, *id)
			if err != nil {
				return "", err
			}
			if updated != nil {
				printRecord(s, *updated)
				id = s.session.State().Identity
				if id == nil {
					return PathLogin, nil
				}
			}
		default:
			fmt.Fprintln(s.out, "Unknown command")
		}
	}
}

// editProfile asks for the new values and saves them. Blank answers keep
// the stored value. It returns the saved record, or nil when nothing was
// saved.
func (s *Shell) editProfile(ctx context.Context, id phoneauth.Identity) (*phoneauth.ProfileRecord, error) {
	name, err := s.readLine(ctx, "Name (blank keeps): ")
	if err != nil {
		return nil, err
	}
	email, err := s.readLine(ctx, "Email (blank keeps): ")
	if err != nil {
		return nil, err
	}
	phone, err := s.readLine(ctx, "Phone (10 digits, blank keeps): ")
	if err != nil {
		return nil, err
	}

	rec, err := s.account.UpdateUser(ctx, id.Token, phoneauth.ProfileUpdate{
		Name:  name,
		Email: email,
		Phone: phoneauth.DigitsOnly(phone, 0),
	})
	if err != nil {
		s.alert(err)
		return nil, nil
	}

	s.session.Login(phoneauth.Identity{
		ID:        id.ID,
		Phone:     rec.Phone,
		Email:     rec.Email,
		Name:      rec.Name,
		AvatarURL: rec.AvatarURL,
		Token:     id.Token,
	})
	fmt.Fprintln(s.out, "Profile updated")
	return &rec, nil
}

func printRecord(s *Shell, rec phoneauth.ProfileRecord) {
	fmt.Fprintf(s.out, "Name:  %s\nEmail: %s\nPhone: %s\n", rec.Name, rec.Email, rec.Phone)
}
