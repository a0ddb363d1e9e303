// Package graph serves the GraphQL API on top of the services.
package graph

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/graphql-go/graphql"
	"go.uber.org/zap"

	"github.com/justsurfingit/goodjob-api/internal/apperrors"
	"github.com/justsurfingit/goodjob-api/internal/dtos"
	"github.com/justsurfingit/goodjob-api/internal/middleware"
	"github.com/justsurfingit/goodjob-api/internal/models"
	"github.com/justsurfingit/goodjob-api/internal/services"
)

// Services are what the resolvers call into.
type Services struct {
	Experiences *services.ExperienceService
	Workings    *services.SalaryWorkTimeService
	Catalog     *services.CatalogService
	Auth        *services.AuthService
}

type builder struct {
	svc    Services
	logger *zap.Logger

	company                  *graphql.Object
	jobTitle                 *graphql.Object
	jobAverageSalary         *graphql.Object
	salaryWorkTimeStatistics *graphql.Object
	salaryWorkTime           *graphql.Object
	experience               *graphql.Interface
	workExperience           *graphql.Object
	interviewExperience      *graphql.Object
	internExperience         *graphql.Object
	user                     *graphql.Object
}

// Schema is the executable GraphQL schema.
type Schema struct {
	schema  graphql.Schema
	catalog *services.CatalogService
}

func NewSchema(svc Services, logger *zap.Logger) (*Schema, error) {
	b := &builder{svc: svc, logger: logger}
	b.defineTypes()
	schema, err := graphql.NewSchema(graphql.SchemaConfig{
		Query:    b.query(),
		Mutation: b.mutation(),
		Types:    []graphql.Type{b.workExperience, b.interviewExperience, b.internExperience},
	})
	if err != nil {
		return nil, fmt.Errorf("build graphql schema: %w", err)
	}
	return &Schema{schema: schema, catalog: svc.Catalog}, nil
}

// Request is a GraphQL request as posted by clients.
type Request struct {
	Query         string         `json:"query" form:"query"`
	Variables     map[string]any `json:"variables"`
	OperationName string         `json:"operationName" form:"operationName"`
}

// Execute runs one request with fresh loaders.
func (s *Schema) Execute(ctx context.Context, req Request) *graphql.Result {
	return graphql.Do(graphql.Params{
		Schema:         s.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        withLoaders(ctx, NewLoaders(s.catalog)),
	})
}

type metaKey struct{}

// WithRequestMeta attaches the client address used in insert logs.
func WithRequestMeta(ctx context.Context, meta services.RequestMeta) context.Context {
	return context.WithValue(ctx, metaKey{}, meta)
}

func metaFrom(ctx context.Context) services.RequestMeta {
	meta, _ := ctx.Value(metaKey{}).(services.RequestMeta)
	return meta
}

// resolve hides internal failures from clients and logs them. It also
// covers thunks returned for batched fields.
func (b *builder) resolve(fn graphql.FieldResolveFn) graphql.FieldResolveFn {
	return func(p graphql.ResolveParams) (any, error) {
		v, err := fn(p)
		if err != nil {
			return nil, b.public(p, err)
		}
		if deferred, ok := v.(func() (any, error)); ok {
			return func() (any, error) {
				v, err := deferred()
				if err != nil {
					return nil, b.public(p, err)
				}
				return v, nil
			}, nil
		}
		return v, nil
	}
}

func (b *builder) public(p graphql.ResolveParams, err error) error {
	if httpErr, ok := apperrors.As(err); ok && httpErr.Status < 500 {
		return &apperrors.HTTPError{Code: httpErr.Code, Status: httpErr.Status, Message: httpErr.Message}
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		return apperrors.NotFound("not found")
	}
	b.logger.Error("graphql resolver failed", zap.String("field", p.Info.FieldName), zap.Error(err))
	return apperrors.Internal("internal server error", nil)
}

func requireUser(ctx context.Context) (*models.User, error) {
	user := middleware.UserFrom(ctx)
	if user == nil {
		return nil, apperrors.Unauthorized("Unauthorized")
	}
	return user, nil
}

// decodeInput copies a GraphQL input object into a request DTO through its
// JSON tags.
func decodeInput(input any, dst any) error {
	raw, err := json.Marshal(input)
	if err != nil {
		return apperrors.Invalid("input is not valid")
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperrors.Invalid("input is not valid")
	}
	return nil
}

func stringArg(p graphql.ResolveParams, name string) string {
	s, _ := p.Args[name].(string)
	return s
}

func intArg(p graphql.ResolveParams, name string) int {
	n, _ := p.Args[name].(int)
	return n
}

func inputOf(p graphql.ResolveParams) map[string]any {
	in, _ := p.Args["input"].(map[string]any)
	return in
}

func companies(names []string) []companyRef {
	out := make([]companyRef, len(names))
	for i, n := range names {
		out[i] = companyRef{Name: n}
	}
	return out
}

func jobTitles(names []string) []jobTitleRef {
	out := make([]jobTitleRef, len(names))
	for i, n := range names {
		out[i] = jobTitleRef{Name: n}
	}
	return out
}

func nameArg(name string) graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{name: &graphql.ArgumentConfig{Type: nonNull(graphql.String)}}
}

func limitArg(def int) graphql.FieldConfigArgument {
	return graphql.FieldConfigArgument{"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: def}}
}

func (b *builder) query() *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Query",
		Fields: graphql.Fields{
			"experience": &graphql.Field{
				Type: b.experience,
				Args: graphql.FieldConfigArgument{"id": &graphql.ArgumentConfig{Type: nonNull(graphql.ID)}},
				Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
					e, err := b.svc.Experiences.Get(p.Context, stringArg(p, "id"))
					if err != nil || e == nil {
						return nil, err
					}
					return e, nil
				}),
			},
			"popular_experiences": &graphql.Field{
				Type: listOf(b.experience),
				Args: graphql.FieldConfigArgument{
					"returnNumber": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 3},
					"sampleNumber": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
				},
				Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
					rows, err := b.svc.Experiences.Popular(p.Context, intArg(p, "returnNumber"), intArg(p, "sampleNumber"))
					if err != nil {
						return nil, err
					}
					return pointers(rows), nil
				}),
			},
			"salary_work_times": &graphql.Field{
				Description: "Visible salary and work time reports, newest first.",
				Type:        listOf(b.salaryWorkTime),
				Args: graphql.FieldConfigArgument{
					"start": &graphql.ArgumentConfig{Type: nonNull(graphql.Int)},
					"limit": &graphql.ArgumentConfig{Type: nonNull(graphql.Int)},
				},
				Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
					rows, err := b.svc.Workings.Latest(p.Context, intArg(p, "start"), intArg(p, "limit"))
					if err != nil {
						return nil, err
					}
					return pointers(rows), nil
				}),
			},
			"salary_work_time_count": &graphql.Field{
				Type: nonNull(graphql.Int),
				Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
					return b.svc.Workings.Count(p.Context)
				}),
			},
			"search_companies": &graphql.Field{
				Type: listOf(b.company),
				Args: nameArg("query"),
				Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
					refs, err := b.svc.Catalog.SearchCompanies(p.Context, stringArg(p, "query"))
					if err != nil {
						return nil, err
					}
					names := make([]string, len(refs))
					for i, r := range refs {
						names[i] = r.Name
					}
					return companies(names), nil
				}),
			},
			"company": &graphql.Field{
				Type: b.company,
				Args: nameArg("name"),
				Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
					c, err := b.svc.Catalog.Company(p.Context, stringArg(p, "name"))
					if err != nil || c == nil {
						return nil, err
					}
					return companyRef{Name: c.Name}, nil
				}),
			},
			"companies_having_data": &graphql.Field{
				Type: listOf(b.company),
				Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
					names, err := b.svc.Catalog.CompaniesHavingData(p.Context)
					if err != nil {
						return nil, err
					}
					return companies(names), nil
				}),
			},
			"popular_companies": &graphql.Field{
				Type: listOf(b.company),
				Args: limitArg(5),
				Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
					names, err := b.svc.Catalog.PopularCompanies(p.Context, intArg(p, "limit"))
					if err != nil {
						return nil, err
					}
					return companies(names), nil
				}),
			},
			"search_job_titles": &graphql.Field{
				Type: listOf(b.jobTitle),
				Args: nameArg("query"),
				Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
					names, err := b.svc.Catalog.SearchJobTitles(p.Context, stringArg(p, "query"))
					if err != nil {
						return nil, err
					}
					return jobTitles(names), nil
				}),
			},
			"job_title": &graphql.Field{
				Type: b.jobTitle,
				Args: nameArg("name"),
				Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
					name, err := b.svc.Catalog.JobTitle(p.Context, stringArg(p, "name"))
					if err != nil || name == nil {
						return nil, err
					}
					return jobTitleRef{Name: *name}, nil
				}),
			},
			"job_titles_having_data": &graphql.Field{
				Type: listOf(b.jobTitle),
				Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
					names, err := b.svc.Catalog.JobTitlesHavingData(p.Context)
					if err != nil {
						return nil, err
					}
					return jobTitles(names), nil
				}),
			},
			"popular_job_titles": &graphql.Field{
				Type: listOf(b.jobTitle),
				Args: limitArg(5),
				Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
					counts, err := b.svc.Catalog.PopularJobTitles(p.Context, intArg(p, "limit"))
					if err != nil {
						return nil, err
					}
					out := make([]jobTitleRef, len(counts))
					for i, c := range counts {
						out[i] = jobTitleRef{Name: c.Name}
					}
					return out, nil
				}),
			},
			"company_keywords": &graphql.Field{
				Type: listOf(graphql.String),
				Args: limitArg(5),
				Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
					return b.svc.Catalog.CompanyKeywords(p.Context, intArg(p, "limit"))
				}),
			},
			"job_title_keywords": &graphql.Field{
				Type: listOf(graphql.String),
				Args: limitArg(5),
				Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
					return b.svc.Catalog.JobTitleKeywords(p.Context, intArg(p, "limit"))
				}),
			},
			"me": &graphql.Field{
				Type: nonNull(b.user),
				Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
					return requireUser(p.Context)
				}),
			},
		},
	})
}

func payload(name string, fields graphql.Fields) *graphql.Object {
	return graphql.NewObject(graphql.ObjectConfig{Name: name, Fields: fields})
}

func (b *builder) mutation() *graphql.Object {
	input := func(t *graphql.InputObject) graphql.FieldConfigArgument {
		return graphql.FieldConfigArgument{"input": &graphql.ArgumentConfig{Type: nonNull(t)}}
	}
	loginPayload := payload("LoginPayload", graphql.Fields{
		"user":  &graphql.Field{Type: nonNull(b.user)},
		"token": &graphql.Field{Type: nonNull(graphql.String)},
	})
	login := func(fn func(ctx context.Context, credential string) (*models.User, string, error), key string) graphql.FieldResolveFn {
		return b.resolve(func(p graphql.ResolveParams) (any, error) {
			credential, _ := inputOf(p)[key].(string)
			user, token, err := fn(p.Context, credential)
			if err != nil {
				return nil, err
			}
			return map[string]any{"user": user, "token": token}, nil
		})
	}

	return graphql.NewObject(graphql.ObjectConfig{
		Name: "Mutation",
		Fields: graphql.Fields{
			"createWorkExperience": &graphql.Field{
				Type: nonNull(payload("CreateWorkExperiencePayload", graphql.Fields{
					"success":    &graphql.Field{Type: nonNull(graphql.Boolean)},
					"experience": &graphql.Field{Type: nonNull(b.workExperience)},
				})),
				Args: input(createWorkExperienceInput),
				Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
					user, err := requireUser(p.Context)
					if err != nil {
						return nil, err
					}
					var req dtos.WorkExperienceRequest
					if err := decodeInput(inputOf(p), &req); err != nil {
						return nil, err
					}
					e, err := b.svc.Experiences.CreateWorkExperience(p.Context, user, &req, metaFrom(p.Context))
					if err != nil {
						return nil, err
					}
					return map[string]any{"success": true, "experience": e}, nil
				}),
			},
			"createInterviewExperience": &graphql.Field{
				Type: nonNull(payload("CreateInterviewExperiencePayload", graphql.Fields{
					"success":    &graphql.Field{Type: nonNull(graphql.Boolean)},
					"experience": &graphql.Field{Type: nonNull(b.interviewExperience)},
				})),
				Args: input(createInterviewExperienceInput),
				Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
					user, err := requireUser(p.Context)
					if err != nil {
						return nil, err
					}
					var req dtos.InterviewExperienceRequest
					if err := decodeInput(inputOf(p), &req); err != nil {
						return nil, err
					}
					e, err := b.svc.Experiences.CreateInterviewExperience(p.Context, user, &req, metaFrom(p.Context))
					if err != nil {
						return nil, err
					}
					return map[string]any{"success": true, "experience": e}, nil
				}),
			},
			"changeExperienceStatus": &graphql.Field{
				Type: nonNull(payload("ChangeExperienceStatusPayload", graphql.Fields{
					"experience": &graphql.Field{Type: nonNull(b.experience)},
				})),
				Args: input(changeExperienceStatusInput),
				Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
					in := inputOf(p)
					id, _ := in["id"].(string)
					status, _ := in["status"].(string)
					e, err := b.svc.Experiences.ChangeStatus(p.Context, middleware.UserFrom(p.Context), id, status)
					if err != nil {
						return nil, err
					}
					return map[string]any{"experience": e}, nil
				}),
			},
			"viewExperiences": &graphql.Field{
				Type: nonNull(payload("ViewExperiencesPayload", graphql.Fields{
					"success": &graphql.Field{Type: nonNull(graphql.Boolean)},
				})),
				Args: input(viewExperiencesInput),
				Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
					raw, _ := inputOf(p)["experience_ids"].([]any)
					ids := make([]string, 0, len(raw))
					for _, id := range raw {
						if s, ok := id.(string); ok {
							ids = append(ids, s)
						}
					}
					if err := b.svc.Experiences.View(p.Context, ids); err != nil {
						return nil, err
					}
					return map[string]any{"success": true}, nil
				}),
			},
			"changeSalaryWorkTimeStatus": &graphql.Field{
				Type: nonNull(payload("ChangeSalaryWorkTimeStatusPayload", graphql.Fields{
					"salary_work_time": &graphql.Field{Type: nonNull(b.salaryWorkTime)},
				})),
				Args: input(changeSalaryWorkTimeStatusInput),
				Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
					in := inputOf(p)
					id, _ := in["id"].(string)
					status, _ := in["status"].(string)
					w, err := b.svc.Workings.ChangeStatus(p.Context, middleware.UserFrom(p.Context), id, status)
					if err != nil {
						return nil, err
					}
					return map[string]any{"salary_work_time": w}, nil
				}),
			},
			"facebookLogin": &graphql.Field{
				Description: "Login with a Facebook client side access token.",
				Type:        nonNull(loginPayload),
				Args:        input(facebookLoginInput),
				Resolve:     login(b.svc.Auth.LoginFacebook, "accessToken"),
			},
			"googleLogin": &graphql.Field{
				Description: "Login with a Google client side id token.",
				Type:        nonNull(loginPayload),
				Args:        input(googleLoginInput),
				Resolve:     login(b.svc.Auth.LoginGoogle, "idToken"),
			},
			"sendVerifyEmail": &graphql.Field{
				Type: nonNull(payload("SendVerifyEmailPayload", graphql.Fields{
					"status": &graphql.Field{Type: nonNull(graphql.String)},
				})),
				Args: input(sendVerifyEmailInput),
				Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
					in := inputOf(p)
					email, _ := in["email"].(string)
					redirect, _ := in["redirect_url"].(string)
					if err := b.svc.Auth.SendVerifyEmail(p.Context, middleware.UserFrom(p.Context), email, redirect); err != nil {
						return nil, err
					}
					return map[string]any{"status": "OK"}, nil
				}),
			},
			"verifyEmail": &graphql.Field{
				Type: nonNull(payload("VerifyEmailPayload", graphql.Fields{
					"user": &graphql.Field{Type: nonNull(b.user)},
				})),
				Args: input(verifyEmailInput),
				Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
					token, _ := inputOf(p)["token"].(string)
					user, err := b.svc.Auth.VerifyEmail(p.Context, token)
					if err != nil {
						return nil, err
					}
					return map[string]any{"user": user}, nil
				}),
			},
		},
	})
}
