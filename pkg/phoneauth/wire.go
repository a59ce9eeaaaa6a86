package phoneauth

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aussiebroadwan/foodcar/pkg/httpx"
)

// Error codes returned in the "error" field of failed responses.
const (
	CodeInvalidRequest    = "invalid_request"
	CodeInvalidPhone      = "invalid_phone"
	CodeChallengeRejected = "challenge_rejected"
	CodeRateLimited       = "rate_limited"
	CodeInvalidCode       = "invalid_code"
	CodeExpired           = "expired"
	CodeInvalidToken      = "invalid_token"
	CodeAccessDenied      = "access_denied"
	CodeNotFound          = "not_found"
	CodeAlreadyExists     = "already_exists"
	CodeUnavailable       = "temporarily_unavailable"
	CodeServerError       = "server_error"
)

// ErrorResponse is the body of every failed response.
type ErrorResponse struct {
	Error       string `json:"error"`
	Description string `json:"error_description"`
}

// ServiceError is an error response from the identity service. Handlers
// write the predefined values; the SDK decodes them back.
type ServiceError struct {
	StatusCode  int    `json:"-"`
	Code        string `json:"error"`
	Description string `json:"error_description"`
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Description)
}

func (e *ServiceError) WriteError(w http.ResponseWriter) {
	httpx.WriteError(w, e.StatusCode, e.Code, e.Description)
}

// NewServiceError is for one-off descriptions.
func NewServiceError(status int, code, description string) *ServiceError {
	return &ServiceError{StatusCode: status, Code: code, Description: description}
}

var (
	ErrInvalidRequest    = NewServiceError(http.StatusBadRequest, CodeInvalidRequest, "the request is malformed or missing required fields")
	ErrInvalidPhoneResp  = NewServiceError(http.StatusBadRequest, CodeInvalidPhone, "phone number must be E.164")
	ErrChallengeResp     = NewServiceError(http.StatusForbidden, CodeChallengeRejected, "challenge token is unknown, expired or used up")
	ErrInvalidCodeResp   = NewServiceError(http.StatusUnauthorized, CodeInvalidCode, "the code is incorrect")
	ErrExpiredResp       = NewServiceError(http.StatusGone, CodeExpired, "the verification has expired or was already used")
	ErrInvalidTokenResp  = NewServiceError(http.StatusUnauthorized, CodeInvalidToken, "the identity token is missing, invalid or expired")
	ErrNotFoundResp      = NewServiceError(http.StatusNotFound, CodeNotFound, "not found")
	ErrAlreadyExistsResp = NewServiceError(http.StatusPreconditionFailed, CodeAlreadyExists, "the record already exists")
	ErrUnavailableResp   = NewServiceError(http.StatusServiceUnavailable, CodeUnavailable, "the code could not be delivered, try again later")
	ErrServerErrorResp   = NewServiceError(http.StatusInternalServerError, CodeServerError, "internal server error")
)

type ChallengeRequest struct {
	ContainerID string `json:"container_id"`
}

type ChallengeResponse struct {
	ChallengeToken string    `json:"challenge_token"`
	ExpiresAt      time.Time `json:"expires_at"`
}

type SendCodeRequest struct {
	Phone          string `json:"phone"`
	ChallengeToken string `json:"challenge_token"`
}

type SendCodeResponse struct {
	VerificationID string    `json:"verification_id"`
	ExpiresAt      time.Time `json:"expires_at"`
}

type ConfirmCodeRequest struct {
	VerificationID string `json:"verification_id"`
	Code           string `json:"code"`
}

type IdentityResponse struct {
	ID    string `json:"id"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

type ConfirmCodeResponse struct {
	IDToken   string           `json:"id_token"`
	TokenType string           `json:"token_type"`
	ExpiresIn int              `json:"expires_in"`
	Identity  IdentityResponse `json:"identity"`
}

// RecordBody is the wire form of a ProfileRecord.
type RecordBody struct {
	ID         string `json:"id"`
	Phone      string `json:"phone"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	ProfileURL string `json:"profile_url"`
}

type UpdateUserRequest struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

type DevCodeResponse struct {
	VerificationID string `json:"verification_id"`
	Code           string `json:"code"`
}

// HealthResponse is returned by /livez and /readyz.
type HealthResponse struct {
	Status  string        `json:"status"`
	Uptime  string        `json:"uptime"`
	Version string        `json:"version"`
	Checks  *HealthChecks `json:"checks,omitempty"`
}

type HealthChecks struct {
	Database string `json:"database"`
	Signer   string `json:"signer"`
}

func decodeServiceError(status int, body []byte) (*ServiceError, bool) {
	var se ServiceError
	if err := json.Unmarshal(body, &se); err != nil || se.Code == "" {
		return nil, false
	}
	se.StatusCode = status
	return &se, true
}
