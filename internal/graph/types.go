package graph

import (
	"fmt"
	"strings"

	"github.com/graphql-go/graphql"

	"github.com/justsurfingit/goodjob-api/internal/models"
	"github.com/justsurfingit/goodjob-api/internal/services"
)

// companyRef and jobTitleRef are the sources of the Company and JobTitle
// objects. Everything else about them is loaded by name.
type companyRef struct {
	Name string `json:"name"`
}

type jobTitleRef struct {
	Name string `json:"name"`
}

// from resolves a field by applying get to the typed source object.
func from[T any](typ graphql.Output, get func(T) any) *graphql.Field {
	return &graphql.Field{
		Type: typ,
		Resolve: func(p graphql.ResolveParams) (any, error) {
			src, ok := p.Source.(T)
			if !ok {
				return nil, fmt.Errorf("unexpected source %T", p.Source)
			}
			return get(src), nil
		},
	}
}

func nonNull(t graphql.Type) graphql.Output { return graphql.NewNonNull(t) }

func listOf(t graphql.Type) graphql.Output { return graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(t))) }

// optional maps the empty string to null.
func optional(s string) any {
	if s == "" {
		return nil
	}
	return s
}

var publishStatusEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "PublishStatus",
	Values: graphql.EnumValueConfigMap{
		models.StatusPublished: {Value: models.StatusPublished},
		models.StatusHidden:    {Value: models.StatusHidden},
	},
})

var experienceTypeEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "ExperienceType",
	Values: graphql.EnumValueConfigMap{
		models.ExperienceTypeWork:      {Value: models.ExperienceTypeWork},
		models.ExperienceTypeInterview: {Value: models.ExperienceTypeInterview},
		models.ExperienceTypeIntern:    {Value: models.ExperienceTypeIntern},
	},
})

var emailStatusEnum = graphql.NewEnum(graphql.EnumConfig{
	Name: "EmailStatus",
	Values: graphql.EnumValueConfigMap{
		models.EmailStatusUnverified:           {Value: models.EmailStatusUnverified},
		models.EmailStatusSentVerificationLink: {Value: models.EmailStatusSentVerificationLink},
		models.EmailStatusVerified:             {Value: models.EmailStatusVerified},
	},
})

// Stored employment types use dashes, GraphQL enum names cannot.
var employmentTypeEnum = func() *graphql.Enum {
	values := graphql.EnumValueConfigMap{}
	for _, t := range services.EmploymentTypes {
		values[strings.ReplaceAll(t, "-", "_")] = &graphql.EnumValueConfig{Value: t}
	}
	return graphql.NewEnum(graphql.EnumConfig{Name: "EmploymentType", Values: values})
}()

var salaryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Salary",
	Fields: graphql.Fields{
		"type":   &graphql.Field{Type: nonNull(graphql.String)},
		"amount": &graphql.Field{Type: nonNull(graphql.Int)},
	},
})

var averageSalaryType = graphql.NewObject(graphql.ObjectConfig{
	Name: "AverageSalary",
	Fields: graphql.Fields{
		"type":   &graphql.Field{Type: nonNull(graphql.String)},
		"amount": &graphql.Field{Type: nonNull(graphql.Float)},
	},
})

var yearMonthType = graphql.NewObject(graphql.ObjectConfig{
	Name: "YearMonth",
	Fields: graphql.Fields{
		"year":  &graphql.Field{Type: nonNull(graphql.Int)},
		"month": &graphql.Field{Type: nonNull(graphql.Int)},
	},
})

var archiveType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Archive",
	Fields: graphql.Fields{
		"is_archived": &graphql.Field{Type: nonNull(graphql.Boolean)},
		"reason":      &graphql.Field{Type: nonNull(graphql.String)},
	},
})

var sectionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "Section",
	Fields: graphql.Fields{
		"subtitle": &graphql.Field{Type: graphql.String},
		"content":  &graphql.Field{Type: graphql.String},
	},
})

var interviewQuestionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "InterviewQuestion",
	Fields: graphql.Fields{
		"question": &graphql.Field{Type: graphql.String},
		"answer":   &graphql.Field{Type: graphql.String},
	},
})

var yesNoOrUnknownCountType = graphql.NewObject(graphql.ObjectConfig{
	Name: "YesNoOrUnknownCount",
	Fields: graphql.Fields{
		"yes":     &graphql.Field{Type: nonNull(graphql.Int)},
		"no":      &graphql.Field{Type: nonNull(graphql.Int)},
		"unknown": &graphql.Field{Type: nonNull(graphql.Int)},
	},
})

var overtimeFrequencyCountType = graphql.NewObject(graphql.ObjectConfig{
	Name: "OvertimeFrequencyCount",
	Fields: graphql.Fields{
		"seldom":          &graphql.Field{Type: nonNull(graphql.Int)},
		"sometimes":       &graphql.Field{Type: nonNull(graphql.Int)},
		"usually":         &graphql.Field{Type: nonNull(graphql.Int)},
		"almost_everyday": &graphql.Field{Type: nonNull(graphql.Int)},
	},
})

var workExperienceStatisticsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "WorkExperienceStatistics",
	Fields: graphql.Fields{
		"count":               &graphql.Field{Type: nonNull(graphql.Int)},
		"recommend_to_others": &graphql.Field{Type: nonNull(yesNoOrUnknownCountType)},
	},
})

var interviewExperienceStatisticsType = graphql.NewObject(graphql.ObjectConfig{
	Name: "InterviewExperienceStatistics",
	Fields: graphql.Fields{
		"count":          &graphql.Field{Type: nonNull(graphql.Int)},
		"overall_rating": &graphql.Field{Type: graphql.Float},
	},
})

var salaryRangeType = graphql.NewObject(graphql.ObjectConfig{
	Name: "SalaryRange",
	Fields: graphql.Fields{
		"type": &graphql.Field{Type: nonNull(graphql.String)},
		"from": &graphql.Field{Type: nonNull(graphql.Int)},
		"to":   &graphql.Field{Type: nonNull(graphql.Int)},
	},
})

var salaryDistributionBinType = graphql.NewObject(graphql.ObjectConfig{
	Name: "SalaryDistributionBin",
	Fields: graphql.Fields{
		"data_count": &graphql.Field{Type: nonNull(graphql.Int)},
		"range":      &graphql.Field{Type: nonNull(salaryRangeType)},
	},
})

var salaryDistributionType = graphql.NewObject(graphql.ObjectConfig{
	Name: "SalaryDistribution",
	Fields: graphql.Fields{
		"bins": &graphql.Field{Type: graphql.NewList(graphql.NewNonNull(salaryDistributionBinType))},
	},
})

// Inputs

var sectionInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "SectionInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"subtitle": {Type: graphql.String},
		"content":  {Type: graphql.String},
	},
})

var yearMonthInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "YearMonthInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"year":  {Type: nonNull(graphql.Int)},
		"month": {Type: nonNull(graphql.Int)},
	},
})

var salaryInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "SalaryInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"type":   {Type: nonNull(graphql.String)},
		"amount": {Type: nonNull(graphql.Float)},
	},
})

var interviewQuestionInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "InterviewQuestionInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"question": {Type: graphql.String},
		"answer":   {Type: graphql.String},
	},
})

// experienceInputFields are shared by every create experience input.
func experienceInputFields(extra graphql.InputObjectConfigFieldMap) graphql.InputObjectConfigFieldMap {
	fields := graphql.InputObjectConfigFieldMap{
		"company_id":         {Type: graphql.ID},
		"company_query":      {Type: graphql.NewNonNull(graphql.String)},
		"region":             {Type: graphql.String},
		"job_title":          {Type: graphql.String},
		"title":              {Type: graphql.String},
		"sections":           {Type: graphql.NewList(sectionInput)},
		"experience_in_year": {Type: graphql.Int},
		"education":          {Type: graphql.String},
		"status":             {Type: publishStatusEnum},
		"email":              {Type: graphql.String},
		"salary":             {Type: salaryInput},
	}
	for k, v := range extra {
		fields[k] = v
	}
	return fields
}

var createWorkExperienceInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "CreateWorkExperienceInput",
	Fields: experienceInputFields(graphql.InputObjectConfigFieldMap{
		"is_currently_employed": {Type: graphql.String},
		"job_ending_time":       {Type: yearMonthInput},
		"week_work_time":        {Type: graphql.Float},
		"recommend_to_others":   {Type: graphql.String},
	}),
})

var createInterviewExperienceInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "CreateInterviewExperienceInput",
	Fields: experienceInputFields(graphql.InputObjectConfigFieldMap{
		"interview_time":                {Type: yearMonthInput},
		"interview_result":              {Type: graphql.String},
		"interview_qas":                 {Type: graphql.NewList(interviewQuestionInput)},
		"interview_sensitive_questions": {Type: graphql.NewList(graphql.String)},
		"overall_rating":                {Type: graphql.Int},
	}),
})

func changeStatusInput(name string) *graphql.InputObject {
	return graphql.NewInputObject(graphql.InputObjectConfig{
		Name: name,
		Fields: graphql.InputObjectConfigFieldMap{
			"id":     {Type: nonNull(graphql.ID)},
			"status": {Type: nonNull(publishStatusEnum)},
		},
	})
}

var (
	changeExperienceStatusInput     = changeStatusInput("ChangeExperienceStatusInput")
	changeSalaryWorkTimeStatusInput = changeStatusInput("ChangeSalaryWorkTimeStatusInput")
)

var viewExperiencesInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "ViewExperiencesInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"experience_ids": {Type: nonNull(graphql.NewList(nonNull(graphql.ID)))},
	},
})

var facebookLoginInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "FacebookLoginInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"accessToken": {Type: nonNull(graphql.String)},
	},
})

var googleLoginInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "GoogleLoginInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"idToken": {Type: nonNull(graphql.String)},
	},
})

var sendVerifyEmailInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "SendVerifyEmailInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"email":        {Type: nonNull(graphql.String)},
		"redirect_url": {Type: nonNull(graphql.String)},
	},
})

var verifyEmailInput = graphql.NewInputObject(graphql.InputObjectConfig{
	Name: "VerifyEmailInput",
	Fields: graphql.InputObjectConfigFieldMap{
		"token": {Type: nonNull(graphql.String)},
	},
})
