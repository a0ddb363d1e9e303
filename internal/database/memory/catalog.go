package memory

import (
	"context"
	"math/rand/v2"
	"sort"
	"strings"

	"github.com/justsurfingit/goodjob-api/internal/apperrors"
	"github.com/justsurfingit/goodjob-api/internal/models"
)

// keywordWindow is how many recent searches feed the keyword ranking.
const keywordWindow = 10000

func (s *Store) FindCompanyByID(_ context.Context, id string) (*models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, c := range s.companies {
		if c.ID == id {
			return &c, nil
		}
	}
	return nil, apperrors.ErrNotFound
}

func (s *Store) FindCompaniesByNameOrID(_ context.Context, query string) ([]models.Company, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.Company
	for _, c := range s.companies {
		if c.Name == query || c.ID == query {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *Store) SearchCompanies(_ context.Context, nameContains string) ([]models.CompanyRef, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[models.CompanyRef]struct{})
	out := []models.CompanyRef{}
	for _, w := range s.workings {
		if !w.IsVisible() || !strings.Contains(w.CompanyName, nameContains) {
			continue
		}
		ref := w.Company()
		if _, ok := seen[ref]; ok {
			continue
		}
		seen[ref] = struct{}{}
		out = append(out, ref)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Store) CompanyHasData(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, w := range s.workings {
		if w.IsVisible() && w.CompanyName == name {
			return true, nil
		}
	}
	for _, e := range s.experiences {
		if e.IsVisible() && e.CompanyName == name {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) CompanyNamesHavingData(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make(map[string]struct{})
	for _, w := range s.workings {
		if w.IsVisible() {
			names[w.CompanyName] = struct{}{}
		}
	}
	for _, e := range s.experiences {
		if e.IsVisible() {
			names[e.CompanyName] = struct{}{}
		}
	}
	return sortedKeys(names), nil
}

func (s *Store) PopularCompanyNames(_ context.Context, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	type pair struct{ company, jobTitle string }
	perPair := make(map[pair]int)
	for _, w := range s.workings {
		if w.IsVisible() && w.EstimatedMonthlyWage != nil {
			perPair[pair{w.CompanyName, w.JobTitle}]++
		}
	}
	titles := make(map[string]int)
	for p, n := range perPair {
		if n >= 3 {
			titles[p.company]++
		}
	}
	var names []string
	for company, n := range titles {
		if n >= 3 {
			names = append(names, company)
		}
	}
	sort.Strings(names)
	return sample(names, limit), nil
}

func (s *Store) SearchJobTitles(_ context.Context, nameContains string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make(map[string]struct{})
	for _, w := range s.workings {
		if w.IsVisible() && strings.Contains(w.JobTitle, nameContains) {
			names[w.JobTitle] = struct{}{}
		}
	}
	return sortedKeys(names), nil
}

func (s *Store) JobTitleHasData(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, w := range s.workings {
		if w.IsVisible() && w.JobTitle == name {
			return true, nil
		}
	}
	return false, nil
}

func (s *Store) JobTitleNamesHavingData(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make(map[string]struct{})
	for _, w := range s.workings {
		if w.IsVisible() {
			names[w.JobTitle] = struct{}{}
		}
	}
	for _, e := range s.experiences {
		if e.IsVisible() {
			names[e.JobTitle] = struct{}{}
		}
	}
	return sortedKeys(names), nil
}

func (s *Store) PopularJobTitles(_ context.Context, limit int) ([]models.JobTitleCount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[string]int)
	for _, w := range s.workings {
		if w.IsVisible() && w.EstimatedMonthlyWage != nil {
			counts[w.JobTitle]++
		}
	}
	var out []models.JobTitleCount
	for name, n := range counts {
		if n >= 5 {
			out = append(out, models.JobTitleCount{Name: name, Count: n})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return sample(out, limit), nil
}

func (s *Store) MonthlyWages(_ context.Context, jobTitle string) ([]float64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wages := []float64{}
	for _, w := range s.workings {
		if w.IsVisible() && w.JobTitle == jobTitle && w.EstimatedMonthlyWage != nil {
			wages = append(wages, *w.EstimatedMonthlyWage)
		}
	}
	sort.Float64s(wages)
	return wages, nil
}

func (s *Store) ListJobTitles(_ context.Context, nameContains string, offset, limit int) ([]models.JobTitle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.JobTitle
	for _, t := range s.jobTitles {
		if strings.Contains(t.Name, nameContains) {
			out = append(out, t)
		}
	}
	return page(out, offset, limit), nil
}

func (s *Store) AddCompanyKeyword(_ context.Context, word string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := models.CompanyKeyword{ID: uint(len(s.companyKeywords) + 1), Word: word}
	s.stamp(&k.CreatedAt)
	s.companyKeywords = append(s.companyKeywords, k)
	return nil
}

func (s *Store) AddJobTitleKeyword(_ context.Context, word string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := models.JobTitleKeyword{ID: uint(len(s.jobTitleKeywords) + 1), Word: word}
	s.stamp(&k.CreatedAt)
	s.jobTitleKeywords = append(s.jobTitleKeywords, k)
	return nil
}

func (s *Store) TopCompanyKeywords(_ context.Context, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	words := make([]string, 0, len(s.companyKeywords))
	for _, k := range s.companyKeywords {
		words = append(words, k.Word)
	}
	return topWords(words, limit), nil
}

func (s *Store) TopJobTitleKeywords(_ context.Context, limit int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	words := make([]string, 0, len(s.jobTitleKeywords))
	for _, k := range s.jobTitleKeywords {
		words = append(words, k.Word)
	}
	return topWords(words, limit), nil
}

// topWords ranks the most recent words by frequency, ties broken by the word.
func topWords(words []string, limit int) []string {
	if len(words) > keywordWindow {
		words = words[len(words)-keywordWindow:]
	}
	counts := make(map[string]int)
	for _, w := range words {
		counts[w]++
	}
	out := make([]string, 0, len(counts))
	for w := range counts {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool {
		if counts[out[i]] != counts[out[j]] {
			return counts[out[i]] > counts[out[j]]
		}
		return out[i] < out[j]
	})
	return page(out, 0, limit)
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func sample[T any](items []T, n int) []T {
	rand.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
	if n < len(items) {
		items = items[:max(n, 0)]
	}
	if items == nil {
		return []T{}
	}
	return items
}
