package record

import (
	"context"
	"errors"
	"slices"

	"github.com/aylalah/ag-rms-sub000/internal/apperr"
	"github.com/aylalah/ag-rms-sub000/internal/db/models"
	"github.com/aylalah/ag-rms-sub000/internal/repository"
	"github.com/aylalah/ag-rms-sub000/internal/services/audit"
	"github.com/aylalah/ag-rms-sub000/internal/services/iam"
)

// NewRatingService wires the rating entity. A rating is unique per
// (year, client): the first writer wins and a duplicate attempt fails with
// a domain conflict before any write happens. Status changes follow the
// explicit lifecycle on models.RatingStatus.
func NewRatingService(
	repo repository.RecordRepository[models.Rating],
	policy *iam.Policy,
	audits *audit.Recorder,
) (*Service[models.Rating], error) {
	desc := Descriptor[models.Rating]{
		Table:        "ratings",
		Singular:     "rating",
		Plural:       "ratings",
		CreateRule:   iam.Allow(iam.RoleAdmin, iam.RoleHOD, iam.RoleAnalyst),
		UpdateRule:   iam.Allow(iam.RoleAdmin, iam.RoleHOD, iam.RoleAnalyst),
		DeleteRule:   iam.Allow(iam.RoleAdmin),
		BaseIncludes: []string{"Client", "Methodology", "Questionnaire"},

		PreCreate: func(ctx context.Context, rec *models.Rating) error {
			if rec.Year == 0 || rec.ClientID == "" {
				return apperr.New(apperr.KindValidation, "year and client are required")
			}
			_, err := repo.FindOne(ctx, map[string]any{"year": rec.Year, "client_id": rec.ClientID})
			if err == nil {
				return apperr.New(apperr.KindConflict, "a rating for this client and year already exists")
			}
			if !errors.Is(err, repository.ErrNotFound) {
				return apperr.Wrap(apperr.KindInternal, err, "could not check for existing rating")
			}
			if rec.Status == "" {
				rec.Status = models.RatingStatusPending
			}
			return nil
		},

		PreUpdate: func(_ context.Context, prev, next *models.Rating, fields []string) ([]string, error) {
			if !slices.Contains(fields, "status") || next.Status == prev.Status {
				return nil, nil
			}
			if !prev.Status.CanTransitionTo(next.Status) {
				return nil, apperr.New(apperr.KindConflict,
					"a %s rating cannot move to %s", prev.Status, next.Status)
			}
			if next.Status == models.RatingStatusConcluded {
				merged := mergedRating(prev, next, fields)
				if !merged.ReadyToConclude() {
					return nil, apperr.New(apperr.KindConflict,
						"a rating needs an issue date, expiry date, rating class and a final report before it can be concluded")
				}
			}
			return nil, nil
		},
	}
	return NewService(desc, repo, policy, audits)
}

// mergedRating evaluates conclusion readiness against the record as it will
// look after the update: submitted fields win, everything else comes from
// the stored record.
func mergedRating(prev, next *models.Rating, fields []string) *models.Rating {
	merged := *prev
	if slices.Contains(fields, "issueDate") {
		merged.IssueDate = next.IssueDate
	}
	if slices.Contains(fields, "expiryDate") {
		merged.ExpiryDate = next.ExpiryDate
	}
	if slices.Contains(fields, "ratingClass") {
		merged.RatingClass = next.RatingClass
	}
	if slices.Contains(fields, "reports") {
		merged.Reports = next.Reports
	}
	return &merged
}

// NewMethodologyService wires the methodology entity.
func NewMethodologyService(
	repo repository.RecordRepository[models.Methodology],
	policy *iam.Policy,
	audits *audit.Recorder,
) (*Service[models.Methodology], error) {
	desc := Descriptor[models.Methodology]{
		Table:      "methodologies",
		Singular:   "methodology",
		Plural:     "methodologies",
		CreateRule: iam.Allow(iam.RoleAdmin, iam.RoleHOD),
		UpdateRule: iam.Allow(iam.RoleAdmin, iam.RoleHOD),
		DeleteRule: iam.Allow(iam.RoleAdmin),
	}
	return NewService(desc, repo, policy, audits)
}

// NewQuestionnaireService wires the questionnaire entity.
func NewQuestionnaireService(
	repo repository.RecordRepository[models.Questionnaire],
	policy *iam.Policy,
	audits *audit.Recorder,
) (*Service[models.Questionnaire], error) {
	desc := Descriptor[models.Questionnaire]{
		Table:      "questionnaires",
		Singular:   "questionnaire",
		Plural:     "questionnaires",
		CreateRule: iam.Allow(iam.RoleAdmin, iam.RoleHOD),
		UpdateRule: iam.Allow(iam.RoleAdmin, iam.RoleHOD),
		DeleteRule: iam.Allow(iam.RoleAdmin),
	}
	return NewService(desc, repo, policy, audits)
}
