package services

import (
	"context"
	"errors"
	"strings"

	"github.com/justsurfingit/goodjob-api/internal/apperrors"
	"github.com/justsurfingit/goodjob-api/internal/models"
	"github.com/justsurfingit/goodjob-api/internal/store"
)

// CompanyMatcher resolves what a user typed as the company into a company
// reference.
type CompanyMatcher struct {
	Store store.CatalogStore
}

func NewCompanyMatcher(s store.CatalogStore) *CompanyMatcher {
	return &CompanyMatcher{Store: s}
}

// Match resolves a company.
//
// A given id must name a registered company, whose name is then used. A
// query is compared with registered names (upper-cased) and tax ids: exactly
// one hit fills in id and name, anything else keeps the upper-cased query as
// the name with no id.
func (m *CompanyMatcher) Match(ctx context.Context, id, query string) (models.CompanyRef, error) {
	if id != "" {
		company, err := m.Store.FindCompanyByID(ctx, id)
		if errors.Is(err, apperrors.ErrNotFound) {
			return models.CompanyRef{}, apperrors.Invalid("company id %s is not a registered company", id)
		}
		if err != nil {
			return models.CompanyRef{}, unexpected("find company", err)
		}
		return models.CompanyRef{ID: company.ID, Name: company.Name}, nil
	}

	query = strings.ToUpper(strings.TrimSpace(query))
	if query == "" {
		return models.CompanyRef{}, apperrors.Invalid("company is required")
	}

	companies, err := m.Store.FindCompaniesByNameOrID(ctx, query)
	if err != nil {
		return models.CompanyRef{}, unexpected("find companies", err)
	}
	if len(companies) == 1 {
		return models.CompanyRef{ID: companies[0].ID, Name: companies[0].Name}, nil
	}
	return models.CompanyRef{Name: query}, nil
}
