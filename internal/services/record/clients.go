package record

import (
	"context"

	"github.com/aylalah/ag-rms-sub000/internal/db/models"
	"github.com/aylalah/ag-rms-sub000/internal/pagination"
	"github.com/aylalah/ag-rms-sub000/internal/repository"
	"github.com/aylalah/ag-rms-sub000/internal/services/audit"
	"github.com/aylalah/ag-rms-sub000/internal/services/forms"
	"github.com/aylalah/ag-rms-sub000/internal/services/iam"
)

// NewClientService wires the client entity. The form decorations pull the
// industry choice list from the industry repository and mint a password for
// the new-client form.
func NewClientService(
	repo repository.RecordRepository[models.Client],
	industries repository.RecordRepository[models.Industry],
	policy *iam.Policy,
	audits *audit.Recorder,
) (*Service[models.Client], error) {
	desc := Descriptor[models.Client]{
		Table:        "clients",
		Singular:     "client",
		Plural:       "clients",
		CreateRule:   iam.Allow(iam.RoleAdmin, iam.RoleHOD),
		UpdateRule:   iam.Allow(iam.RoleAdmin, iam.RoleHOD),
		DeleteRule:   iam.Allow(iam.RoleAdmin),
		BaseIncludes: []string{"Industry", "Contacts"},
		Decorate: map[string]func(ctx context.Context) (any, error){
			"industry": func(ctx context.Context) (any, error) {
				result, err := industries.List(ctx, pagination.Request{Limit: 200, OrderBy: "name ASC"})
				if err != nil {
					return nil, err
				}
				choices := make([]forms.Choice, 0, len(result.Docs))
				for _, ind := range result.Docs {
					choices = append(choices, forms.Choice{ID: ind.ID, Name: ind.Name})
				}
				return choices, nil
			},
			"password": func(context.Context) (any, error) {
				return iam.GeneratePassword(10), nil
			},
		},
	}
	return NewService(desc, repo, policy, audits)
}

// NewIndustryService wires the industry entity.
func NewIndustryService(
	repo repository.RecordRepository[models.Industry],
	policy *iam.Policy,
	audits *audit.Recorder,
) (*Service[models.Industry], error) {
	desc := Descriptor[models.Industry]{
		Table:      "industries",
		Singular:   "industry",
		Plural:     "industries",
		CreateRule: iam.Allow(iam.RoleAdmin, iam.RoleHOD),
		UpdateRule: iam.Allow(iam.RoleAdmin, iam.RoleHOD),
		DeleteRule: iam.Allow(iam.RoleAdmin),
	}
	return NewService(desc, repo, policy, audits)
}
