package graph

import (
	"context"
	"slices"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/justsurfingit/goodjob-api/internal/models"
	"github.com/justsurfingit/goodjob-api/internal/services"
)

// BatchFunc loads the values of many keys at once. Keys missing from the
// result resolve to the zero value.
type BatchFunc[V any] func(ctx context.Context, keys []string) (map[string]V, error)

// Loader collects the keys requested while one level of a query is being
// resolved and fetches them with a single BatchFunc call when the first
// result is needed. Results are cached for the life of the loader, which is
// one request.
type Loader[V any] struct {
	fetch BatchFunc[V]

	mu      sync.Mutex
	pending []string
	done    map[string]V
	flight  singleflight.Group
}

func NewLoader[V any](fetch BatchFunc[V]) *Loader[V] {
	return &Loader[V]{fetch: fetch, done: make(map[string]V)}
}

// Prime stores a value for key without fetching it.
func (l *Loader[V]) Prime(key string, v V) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.done[key]; !ok {
		l.done[key] = v
	}
}

// Load queues key and returns a thunk that yields its value. Calling the
// thunk dispatches every queued key.
func (l *Loader[V]) Load(ctx context.Context, key string) func() (V, error) {
	l.mu.Lock()
	if _, ok := l.done[key]; !ok && !slices.Contains(l.pending, key) {
		l.pending = append(l.pending, key)
	}
	l.mu.Unlock()

	return func() (V, error) {
		for {
			l.mu.Lock()
			v, ok := l.done[key]
			l.mu.Unlock()
			if ok {
				return v, nil
			}
			if _, err, _ := l.flight.Do("dispatch", func() (any, error) {
				return nil, l.dispatch(ctx)
			}); err != nil {
				var zero V
				return zero, err
			}
		}
	}
}

func (l *Loader[V]) dispatch(ctx context.Context) error {
	l.mu.Lock()
	keys := l.pending
	l.pending = nil
	l.mu.Unlock()
	if len(keys) == 0 {
		return nil
	}

	values, err := l.fetch(ctx, keys)
	if err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	for _, k := range keys {
		l.done[k] = values[k]
	}
	return nil
}

// Loaders are the per-request loaders behind Company and JobTitle fields.
type Loaders struct {
	WorkingsByCompany              *Loader[[]models.SalaryWorkTime]
	WorkingsByJobTitle             *Loader[[]models.SalaryWorkTime]
	WorkExperiencesByCompany       *Loader[[]models.Experience]
	WorkExperiencesByJobTitle      *Loader[[]models.Experience]
	InterviewExperiencesByCompany  *Loader[[]models.Experience]
	InterviewExperiencesByJobTitle *Loader[[]models.Experience]
}

func experiencesBy(typ string, fetch func(context.Context, string, []string) (map[string][]models.Experience, error)) BatchFunc[[]models.Experience] {
	return func(ctx context.Context, names []string) (map[string][]models.Experience, error) {
		return fetch(ctx, typ, names)
	}
}

func NewLoaders(catalog *services.CatalogService) *Loaders {
	return &Loaders{
		WorkingsByCompany:              NewLoader(catalog.SalaryWorkTimesByCompanies),
		WorkingsByJobTitle:             NewLoader(catalog.SalaryWorkTimesByJobTitles),
		WorkExperiencesByCompany:       NewLoader(experiencesBy(models.ExperienceTypeWork, catalog.ExperiencesByCompanies)),
		WorkExperiencesByJobTitle:      NewLoader(experiencesBy(models.ExperienceTypeWork, catalog.ExperiencesByJobTitles)),
		InterviewExperiencesByCompany:  NewLoader(experiencesBy(models.ExperienceTypeInterview, catalog.ExperiencesByCompanies)),
		InterviewExperiencesByJobTitle: NewLoader(experiencesBy(models.ExperienceTypeInterview, catalog.ExperiencesByJobTitles)),
	}
}

type loadersKey struct{}

func withLoaders(ctx context.Context, l *Loaders) context.Context {
	return context.WithValue(ctx, loadersKey{}, l)
}

func loadersFrom(ctx context.Context) *Loaders {
	l, _ := ctx.Value(loadersKey{}).(*Loaders)
	return l
}
