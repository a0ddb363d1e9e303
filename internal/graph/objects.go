package graph

import (
	"github.com/graphql-go/graphql"

	"github.com/justsurfingit/goodjob-api/internal/apperrors"
	"github.com/justsurfingit/goodjob-api/internal/middleware"
	"github.com/justsurfingit/goodjob-api/internal/models"
	"github.com/justsurfingit/goodjob-api/internal/services"
)

type catalogEntry interface{ key() string }

func (c companyRef) key() string  { return c.Name }
func (j jobTitleRef) key() string { return j.Name }

// loaderSet picks the loaders that back one catalog object type.
type loaderSet struct {
	workings  func(*Loaders) *Loader[[]models.SalaryWorkTime]
	work      func(*Loaders) *Loader[[]models.Experience]
	interview func(*Loaders) *Loader[[]models.Experience]
}

var companyLoaders = loaderSet{
	workings:  func(l *Loaders) *Loader[[]models.SalaryWorkTime] { return l.WorkingsByCompany },
	work:      func(l *Loaders) *Loader[[]models.Experience] { return l.WorkExperiencesByCompany },
	interview: func(l *Loaders) *Loader[[]models.Experience] { return l.InterviewExperiencesByCompany },
}

var jobTitleLoaders = loaderSet{
	workings:  func(l *Loaders) *Loader[[]models.SalaryWorkTime] { return l.WorkingsByJobTitle },
	work:      func(l *Loaders) *Loader[[]models.Experience] { return l.WorkExperiencesByJobTitle },
	interview: func(l *Loaders) *Loader[[]models.Experience] { return l.InterviewExperiencesByJobTitle },
}

func pointers[T any](items []T) []*T {
	out := make([]*T, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out
}

var windowArgs = graphql.FieldConfigArgument{
	"start": &graphql.ArgumentConfig{Type: graphql.Int},
	"limit": &graphql.ArgumentConfig{Type: graphql.Int},
}

// window applies the optional start and limit arguments to items.
func window[T any](items []T, args map[string]any) ([]T, error) {
	start, _ := args["start"].(int)
	if start < 0 {
		return nil, apperrors.Invalid("start must be >= 0")
	}
	if start >= len(items) {
		return []T{}, nil
	}
	items = items[start:]
	if limit, ok := args["limit"].(int); ok {
		if limit < 0 {
			return nil, apperrors.Invalid("limit must be >= 0")
		}
		items = items[:min(limit, len(items))]
	}
	return items, nil
}

// thunk turns a loader result into the deferred value graphql-go resolves
// breadth first, after every sibling has queued its key.
func thunk[V any](load func() (V, error), finish func(V) (any, error)) func() (any, error) {
	return func() (any, error) {
		v, err := load()
		if err != nil {
			return nil, err
		}
		return finish(v)
	}
}

func (b *builder) catalogFields(pick loaderSet) graphql.Fields {
	loadWorkings := func(p graphql.ResolveParams) func() ([]models.SalaryWorkTime, error) {
		return pick.workings(loadersFrom(p.Context)).Load(p.Context, p.Source.(catalogEntry).key())
	}
	loadExperiences := func(p graphql.ResolveParams, which func(*Loaders) *Loader[[]models.Experience]) func() ([]models.Experience, error) {
		return which(loadersFrom(p.Context)).Load(p.Context, p.Source.(catalogEntry).key())
	}
	experiences := func(which func(*Loaders) *Loader[[]models.Experience]) graphql.FieldResolveFn {
		return b.resolve(func(p graphql.ResolveParams) (any, error) {
			return thunk(loadExperiences(p, which), func(rows []models.Experience) (any, error) {
				page, err := window(rows, p.Args)
				if err != nil {
					return nil, err
				}
				return pointers(page), nil
			}), nil
		})
	}

	return graphql.Fields{
		"name": &graphql.Field{Type: nonNull(graphql.String)},
		"salary_work_times": &graphql.Field{
			Type: listOf(b.salaryWorkTime),
			Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
				return thunk(loadWorkings(p), func(rows []models.SalaryWorkTime) (any, error) {
					return pointers(rows), nil
				}), nil
			}),
		},
		"work_experiences": &graphql.Field{
			Type:    listOf(b.workExperience),
			Args:    windowArgs,
			Resolve: experiences(pick.work),
		},
		"interview_experiences": &graphql.Field{
			Type:    listOf(b.interviewExperience),
			Args:    windowArgs,
			Resolve: experiences(pick.interview),
		},
		"salary_work_time_statistics": &graphql.Field{
			Type: nonNull(b.salaryWorkTimeStatistics),
			Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
				return thunk(loadWorkings(p), func(rows []models.SalaryWorkTime) (any, error) {
					return services.SalaryWorkTimeStats(rows), nil
				}), nil
			}),
		},
		"work_experience_statistics": &graphql.Field{
			Type: nonNull(workExperienceStatisticsType),
			Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
				return thunk(loadExperiences(p, pick.work), func(rows []models.Experience) (any, error) {
					return services.WorkExperienceStats(rows), nil
				}), nil
			}),
		},
		"interview_experience_statistics": &graphql.Field{
			Type: nonNull(interviewExperienceStatisticsType),
			Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
				return thunk(loadExperiences(p, pick.interview), func(rows []models.Experience) (any, error) {
					return services.InterviewExperienceStats(rows), nil
				}), nil
			}),
		},
	}
}

func (b *builder) experienceFields(extra graphql.Fields) graphql.Fields {
	type E = *models.Experience
	fields := graphql.Fields{
		"id":                 from(nonNull(graphql.ID), func(e E) any { return e.ID }),
		"type":               from(nonNull(experienceTypeEnum), func(e E) any { return e.Type }),
		"company":            from(nonNull(b.company), func(e E) any { return companyRef{Name: e.CompanyName} }),
		"job_title":          from(nonNull(b.jobTitle), func(e E) any { return jobTitleRef{Name: e.JobTitle} }),
		"region":             from(nonNull(graphql.String), func(e E) any { return e.Region }),
		"experience_in_year": from(graphql.Int, func(e E) any { return e.ExperienceInYear }),
		"education":          from(graphql.String, func(e E) any { return optional(e.Education) }),
		"salary":             from(salaryType, func(e E) any { return e.Salary() }),
		"title":              from(graphql.String, func(e E) any { return e.Title }),
		"sections":           from(listOf(sectionType), func(e E) any { return e.Sections }),
		"created_at":         from(nonNull(graphql.DateTime), func(e E) any { return e.CreatedAt }),
		"reply_count":        from(nonNull(graphql.Int), func(e E) any { return e.ReplyCount }),
		"report_count":       from(nonNull(graphql.Int), func(e E) any { return e.ReportCount }),
		"like_count":         from(nonNull(graphql.Int), func(e E) any { return e.LikeCount }),
		"status":             from(nonNull(publishStatusEnum), func(e E) any { return e.Status }),
		"archive":            from(nonNull(archiveType), func(e E) any { return e.Archive() }),
		"preview":            from(graphql.String, func(e E) any { return e.Preview() }),
		"liked": &graphql.Field{
			Description: "Whether the current user liked the experience, null without a user.",
			Type:        graphql.Boolean,
			Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
				liked, err := b.svc.Experiences.Liked(p.Context, middleware.UserFrom(p.Context), p.Source.(E).ID)
				if err != nil || liked == nil {
					return nil, err
				}
				return *liked, nil
			}),
		},
	}
	for k, v := range extra {
		fields[k] = v
	}
	return fields
}

func (b *builder) defineTypes() {
	type E = *models.Experience
	type W = *models.SalaryWorkTime
	type U = *models.User

	b.company = graphql.NewObject(graphql.ObjectConfig{
		Name:   "Company",
		Fields: graphql.FieldsThunk(func() graphql.Fields { return b.catalogFields(companyLoaders) }),
	})

	b.jobTitle = graphql.NewObject(graphql.ObjectConfig{
		Name: "JobTitle",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			fields := b.catalogFields(jobTitleLoaders)
			fields["salary_distribution"] = &graphql.Field{
				Type: nonNull(salaryDistributionType),
				Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
					bins, err := b.svc.Catalog.SalaryDistribution(p.Context, p.Source.(jobTitleRef).Name)
					if err != nil {
						return nil, err
					}
					return map[string]any{"bins": bins}, nil
				}),
			}
			return fields
		}),
	})

	b.jobAverageSalary = graphql.NewObject(graphql.ObjectConfig{
		Name: "JobAverageSalary",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"job_title": from(nonNull(b.jobTitle), func(j services.JobAverageSalary) any {
					return jobTitleRef{Name: j.JobTitle}
				}),
				"average_salary": &graphql.Field{Type: nonNull(averageSalaryType)},
				"data_count":     &graphql.Field{Type: nonNull(graphql.Int)},
			}
		}),
	})

	b.salaryWorkTimeStatistics = graphql.NewObject(graphql.ObjectConfig{
		Name: "SalaryWorkTimeStatistics",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"count":                          &graphql.Field{Type: nonNull(graphql.Int)},
				"average_week_work_time":         &graphql.Field{Type: graphql.Float},
				"average_estimated_hourly_wage":  &graphql.Field{Type: graphql.Float},
				"has_compensatory_dayoff_count":  &graphql.Field{Type: yesNoOrUnknownCountType},
				"has_overtime_salary_count":      &graphql.Field{Type: yesNoOrUnknownCountType},
				"is_overtime_salary_legal_count": &graphql.Field{Type: yesNoOrUnknownCountType},
				"overtime_frequency_count":       &graphql.Field{Type: overtimeFrequencyCountType},
				"job_average_salaries":           &graphql.Field{Type: listOf(b.jobAverageSalary)},
			}
		}),
	})

	b.salaryWorkTime = graphql.NewObject(graphql.ObjectConfig{
		Name: "SalaryWorkTime",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"id":                     from(graphql.ID, func(w W) any { return w.ID }),
				"company":                from(nonNull(b.company), func(w W) any { return companyRef{Name: w.CompanyName} }),
				"job_title":              from(nonNull(b.jobTitle), func(w W) any { return jobTitleRef{Name: w.JobTitle} }),
				"day_promised_work_time": from(graphql.Float, func(w W) any { return w.DayPromisedWorkTime }),
				"day_real_work_time":     from(graphql.Float, func(w W) any { return w.DayRealWorkTime }),
				"employment_type":        from(employmentTypeEnum, func(w W) any { return optional(w.EmploymentType) }),
				"experience_in_year":     from(graphql.Int, func(w W) any { return w.ExperienceInYear }),
				"overtime_frequency":     from(graphql.Int, func(w W) any { return w.OvertimeFrequency }),
				"salary":                 from(salaryType, func(w W) any { return w.Salary() }),
				"sector":                 from(graphql.String, func(w W) any { return optional(w.Sector) }),
				"week_work_time":         from(graphql.Float, func(w W) any { return w.WeekWorkTime }),
				"created_at":             from(nonNull(graphql.DateTime), func(w W) any { return w.CreatedAt }),
				"data_time":              from(nonNull(yearMonthType), func(w W) any { return w.DataTime() }),
				"estimated_hourly_wage":  from(graphql.Float, func(w W) any { return w.EstimatedHourlyWage }),
				"about_this_job":         from(graphql.String, func(w W) any { return optional(w.AboutThisJob) }),
				"status":                 from(nonNull(publishStatusEnum), func(w W) any { return w.Status }),
				"archive":                from(nonNull(archiveType), func(w W) any { return w.Archive() }),
			}
		}),
	})

	b.experience = graphql.NewInterface(graphql.InterfaceConfig{
		Name:   "Experience",
		Fields: graphql.FieldsThunk(func() graphql.Fields { return b.experienceFields(nil) }),
		ResolveType: func(p graphql.ResolveTypeParams) *graphql.Object {
			e, ok := p.Value.(E)
			if !ok {
				return nil
			}
			switch e.Type {
			case models.ExperienceTypeInterview:
				return b.interviewExperience
			case models.ExperienceTypeIntern:
				return b.internExperience
			default:
				return b.workExperience
			}
		},
	})

	b.workExperience = graphql.NewObject(graphql.ObjectConfig{
		Name:       "WorkExperience",
		Interfaces: []*graphql.Interface{b.experience},
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return b.experienceFields(graphql.Fields{
				"data_time":           from(yearMonthType, func(e E) any { return e.DataTime() }),
				"week_work_time":      from(graphql.Float, func(e E) any { return e.WeekWorkTime }),
				"recommend_to_others": from(graphql.String, func(e E) any { return optional(e.RecommendToOthers) }),
			})
		}),
	})

	b.interviewExperience = graphql.NewObject(graphql.ObjectConfig{
		Name:       "InterviewExperience",
		Interfaces: []*graphql.Interface{b.experience},
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return b.experienceFields(graphql.Fields{
				"interview_time":   from(nonNull(yearMonthType), func(e E) any { return e.InterviewTime() }),
				"interview_result": from(nonNull(graphql.String), func(e E) any { return e.InterviewResult }),
				"overall_rating": from(nonNull(graphql.Int), func(e E) any {
					if e.OverallRating == nil {
						return nil
					}
					return int(*e.OverallRating)
				}),
				"interview_qas":                 from(graphql.NewList(nonNull(interviewQuestionType)), func(e E) any { return e.InterviewQAs }),
				"interview_sensitive_questions": from(graphql.NewList(nonNull(graphql.String)), func(e E) any { return e.InterviewSensitiveQuestions }),
			})
		}),
	})

	b.internExperience = graphql.NewObject(graphql.ObjectConfig{
		Name:       "InternExperience",
		Interfaces: []*graphql.Interface{b.experience},
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return b.experienceFields(graphql.Fields{
				"starting_year":  from(graphql.Int, func(e E) any { return e.StartingYear }),
				"overall_rating": from(graphql.Float, func(e E) any { return e.OverallRating }),
			})
		}),
	})

	b.user = graphql.NewObject(graphql.ObjectConfig{
		Name: "User",
		Fields: graphql.FieldsThunk(func() graphql.Fields {
			return graphql.Fields{
				"_id":          from(nonNull(graphql.ID), func(u U) any { return u.ID }),
				"name":         from(nonNull(graphql.String), func(u U) any { return u.Name }),
				"facebook_id":  from(graphql.String, func(u U) any { return u.FacebookID }),
				"google_id":    from(graphql.String, func(u U) any { return u.GoogleID }),
				"email":        from(graphql.String, func(u U) any { return optional(u.Email) }),
				"email_status": from(emailStatusEnum, func(u U) any { return optional(u.EmailStatus) }),
				"created_at":   from(nonNull(graphql.DateTime), func(u U) any { return u.CreatedAt }),
				"experiences": &graphql.Field{
					Type: listOf(b.experience),
					Args: graphql.FieldConfigArgument{
						"start": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 0},
						"limit": &graphql.ArgumentConfig{Type: graphql.Int, DefaultValue: 20},
					},
					Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
						start, _ := p.Args["start"].(int)
						limit, _ := p.Args["limit"].(int)
						rows, err := b.svc.Experiences.ListByAuthor(p.Context, p.Source.(U).ID, start, limit)
						if err != nil {
							return nil, err
						}
						return pointers(rows), nil
					}),
				},
				"experience_count": &graphql.Field{
					Type: nonNull(graphql.Int),
					Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
						return b.svc.Experiences.CountByAuthor(p.Context, p.Source.(U).ID)
					}),
				},
				"salary_work_times": &graphql.Field{
					Type: listOf(b.salaryWorkTime),
					Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
						rows, err := b.svc.Workings.ListByUser(p.Context, p.Source.(U).ID)
						if err != nil {
							return nil, err
						}
						return pointers(rows), nil
					}),
				},
				"salary_work_time_count": &graphql.Field{
					Type: nonNull(graphql.Int),
					Resolve: b.resolve(func(p graphql.ResolveParams) (any, error) {
						return b.svc.Workings.CountByUser(p.Context, p.Source.(U).ID)
					}),
				},
			}
		}),
	})
}
