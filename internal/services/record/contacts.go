package record

import (
	"context"
	"fmt"
	"log"
	"slices"

	"github.com/aylalah/ag-rms-sub000/internal/apperr"
	"github.com/aylalah/ag-rms-sub000/internal/db/models"
	"github.com/aylalah/ag-rms-sub000/internal/repository"
	"github.com/aylalah/ag-rms-sub000/internal/services/audit"
	"github.com/aylalah/ag-rms-sub000/internal/services/iam"
	"github.com/aylalah/ag-rms-sub000/internal/services/notify"
	"github.com/aylalah/ag-rms-sub000/internal/telemetry"
	"golang.org/x/crypto/bcrypt"
)

// NewContactService wires the contact entity and its conditional emails:
// a welcome email when a loginable contact is created, and a credentials
// email only when an update actually supplies a new password. Changing
// name or phone alone never triggers mail.
func NewContactService(
	repo repository.RecordRepository[models.Contact],
	policy *iam.Policy,
	audits *audit.Recorder,
	mailer notify.Mailer,
) (*Service[models.Contact], error) {
	desc := Descriptor[models.Contact]{
		Table:        "contacts",
		Singular:     "contact",
		Plural:       "contacts",
		CreateRule:   iam.Allow(iam.RoleAdmin, iam.RoleHOD),
		UpdateRule:   iam.Allow(iam.RoleAdmin, iam.RoleHOD),
		DeleteRule:   iam.Allow(iam.RoleAdmin),
		BaseIncludes: []string{"Client"},

		// The plaintext password exists only for the outbound email; it must
		// never reach the durable trail.
		AuditSnapshot: func(rec *models.Contact) any {
			copied := *rec
			copied.Password = ""
			return &copied
		},

		PreCreate: func(_ context.Context, rec *models.Contact) error {
			if rec.Role == "" {
				rec.Role = iam.RoleClient
			}
			if !rec.CanLogin {
				return nil
			}
			if rec.Password == "" {
				rec.Password = iam.GeneratePassword(10)
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(rec.Password), bcrypt.DefaultCost)
			if err != nil {
				return apperr.Wrap(apperr.KindInternal, err, "could not prepare contact credentials")
			}
			rec.PasswordHash = string(hash)
			return nil
		},

		PostCreate: func(ctx context.Context, rec *models.Contact) {
			if !rec.CanLogin || rec.Password == "" {
				return
			}
			msg := notify.Message{
				To:      rec.Email,
				Subject: "Welcome to the ratings portal",
				HTML: fmt.Sprintf(
					"<p>Hello %s,</p><p>An account has been created for you.</p><p>Email: %s<br>Password: %s</p>",
					rec.FullName(), rec.Email, rec.Password),
			}
			if err := mailer.Send(ctx, msg); err != nil {
				log.Printf("contacts: failed to send welcome email to %s: %v", rec.Email, err)
				return
			}
			telemetry.EmailsSentTotal.WithLabelValues("welcome").Inc()
		},

		PreUpdate: func(_ context.Context, _, next *models.Contact, fields []string) ([]string, error) {
			if !slices.Contains(fields, "password") || next.Password == "" {
				return nil, nil
			}
			hash, err := bcrypt.GenerateFromPassword([]byte(next.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, apperr.Wrap(apperr.KindInternal, err, "could not prepare contact credentials")
			}
			next.PasswordHash = string(hash)
			return []string{"password_hash"}, nil
		},

		PostUpdate: func(ctx context.Context, prev, next *models.Contact, fields []string) {
			// Credentials are re-sent only when the password field itself
			// changed with a value supplied.
			if !slices.Contains(fields, "password") || next.Password == "" {
				return
			}
			email := next.Email
			if email == "" {
				email = prev.Email
			}
			name := next.FullName()
			if name == "" {
				name = prev.FullName()
			}
			msg := notify.Message{
				To:      email,
				Subject: "Your login credentials were updated",
				HTML: fmt.Sprintf(
					"<p>Hello %s,</p><p>Your password has been changed.</p><p>Email: %s<br>Password: %s</p>",
					name, email, next.Password),
			}
			if err := mailer.Send(ctx, msg); err != nil {
				log.Printf("contacts: failed to send credentials email to %s: %v", email, err)
				return
			}
			telemetry.EmailsSentTotal.WithLabelValues("credentials").Inc()
		},
	}
	return NewService(desc, repo, policy, audits)
}
