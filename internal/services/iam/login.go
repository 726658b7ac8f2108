package iam

import (
	"context"
	"errors"

	"github.com/aylalah/ag-rms-sub000/internal/apperr"
	"github.com/aylalah/ag-rms-sub000/internal/db/models"
	"github.com/aylalah/ag-rms-sub000/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

// AuditSink is the slice of the audit recorder the login flow needs.
// Declared here to keep the dependency narrow and mockable.
type AuditSink interface {
	RecordLogin(ctx context.Context, p *Principal)
}

// LoginService verifies contact credentials and issues session tokens.
type LoginService struct {
	contacts repository.RecordRepository[models.Contact]
	decoder  *Decoder
	audits   AuditSink
}

// NewLoginService creates a new login service
func NewLoginService(contacts repository.RecordRepository[models.Contact], decoder *Decoder, audits AuditSink) *LoginService {
	return &LoginService{contacts: contacts, decoder: decoder, audits: audits}
}

// LoginResult carries the issued token and the authenticated contact.
type LoginResult struct {
	Token   string          `json:"token"`
	Contact *models.Contact `json:"contact"`
}

// Login checks the credentials for a loginable contact and returns a signed
// token. All credential failures collapse to the same message so the
// response does not leak which part was wrong.
func (s *LoginService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	contact, err := s.contacts.FindOne(ctx, map[string]any{"email": email})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperr.New(apperr.KindUnauthenticated, "invalid email or password")
		}
		return nil, apperr.Wrap(apperr.KindInternal, err, "login failed")
	}

	if !contact.CanLogin || contact.PasswordHash == "" {
		return nil, apperr.New(apperr.KindUnauthenticated, "invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(contact.PasswordHash), []byte(password)); err != nil {
		return nil, apperr.New(apperr.KindUnauthenticated, "invalid email or password")
	}

	principal := &Principal{
		ID:    contact.ID,
		Role:  contact.Role,
		Email: contact.Email,
		Name:  contact.FullName(),
	}

	token, err := s.decoder.Sign(principal)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, err, "login failed")
	}

	if s.audits != nil {
		s.audits.RecordLogin(ctx, principal)
	}

	contact.PasswordHash = ""
	return &LoginResult{Token: token, Contact: contact}, nil
}
