package phoneauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

func (c *SDKClient) token() (string, error) {
	c.authMu.Lock()
	defer c.authMu.Unlock()
	switch {
	case c.confirmed != nil && c.confirmed.Token != "":
		return c.confirmed.Token, nil
	case c.current != nil && c.current.Token != "":
		return c.current.Token, nil
	default:
		return "", ErrNotSignedIn
	}
}

func recordFromBody(b RecordBody) ProfileRecord {
	return ProfileRecord{ID: b.ID, Phone: b.Phone, Name: b.Name, Email: b.Email, AvatarURL: b.ProfileURL}
}

func recordToBody(r ProfileRecord) RecordBody {
	return RecordBody{ID: r.ID, Phone: r.Phone, Name: r.Name, Email: r.Email, ProfileURL: r.AvatarURL}
}

// GetRecord reads the signed in identity's record.
func (c *SDKClient) GetRecord(ctx context.Context, id string) (ProfileRecord, error) {
	token, err := c.token()
	if err != nil {
		return ProfileRecord{}, err
	}

	resp, err := c.do(ctx, http.MethodGet, "/v1/records/"+url.PathEscape(id), token, nil, nil)
	if err != nil {
		return ProfileRecord{}, err
	}
	var out RecordBody
	if err := decodeJSON(resp, &out, http.StatusOK); err != nil {
		var se *ServiceError
		if errors.As(err, &se) && se.StatusCode == http.StatusNotFound {
			return ProfileRecord{}, ErrRecordNotFound
		}
		return ProfileRecord{}, err
	}
	return recordFromBody(out), nil
}

// PutRecord writes rec. createOnly sends If-None-Match: * so an existing
// record is never replaced.
func (c *SDKClient) PutRecord(ctx context.Context, rec ProfileRecord, createOnly bool) error {
	token, err := c.token()
	if err != nil {
		return err
	}

	var headers map[string]string
	want := http.StatusOK
	if createOnly {
		headers = map[string]string{"If-None-Match": "*"}
		want = http.StatusCreated
	}

	resp, err := c.do(ctx, http.MethodPut, "/v1/records/"+url.PathEscape(rec.ID), token, recordToBody(rec), headers)
	if err != nil {
		return err
	}
	if err := decodeJSON(resp, nil, want); err != nil {
		var se *ServiceError
		if errors.As(err, &se) && se.StatusCode == http.StatusPreconditionFailed {
			return ErrRecordExists
		}
		return err
	}
	return nil
}

// ProfileUpdate holds the fields the profile editor may change. Empty
// fields are left alone.
type ProfileUpdate struct {
	Name  string
	Email string
	Phone string
}

// Empty reports whether no field is set.
func (u ProfileUpdate) Empty() bool {
	return strings.TrimSpace(u.Name) == "" && strings.TrimSpace(u.Email) == "" && strings.TrimSpace(u.Phone) == ""
}

// UpdateUser calls PUT /auth/update-user with token as the identity proof.
// A ten digit phone is sent in E.164. Any non-2xx answer comes back as an
// *APIError holding the raw body.
func (c *SDKClient) UpdateUser(ctx context.Context, token string, u ProfileUpdate) (ProfileRecord, error) {
	if u.Empty() {
		return ProfileRecord{}, &ValidationError{Field: "profile", Reason: "enter at least one field"}
	}
	phone := strings.TrimSpace(u.Phone)
	if ValidatePhone(phone) == nil {
		phone = CountryPrefix + phone
	}

	resp, err := c.do(ctx, http.MethodPut, "/auth/update-user", token, UpdateUserRequest{
		Name:  strings.TrimSpace(u.Name),
		Email: strings.TrimSpace(u.Email),
		Phone: phone,
	}, nil)
	if err != nil {
		return ProfileRecord{}, err
	}

	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return ProfileRecord{}, fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return ProfileRecord{}, &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}

	var out RecordBody
	if err := json.Unmarshal(body, &out); err != nil {
		return ProfileRecord{}, fmt.Errorf("failed to decode response: %w", err)
	}
	return recordFromBody(out), nil
}
