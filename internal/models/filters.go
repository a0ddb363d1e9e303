package models

// ExperienceFilter narrows experience lookups. Empty fields do not filter.
type ExperienceFilter struct {
	AuthorID     string
	Type         string
	CompanyNames []string
	JobTitles    []string
	// OnlyVisible keeps published, non-archived rows.
	OnlyVisible bool
	Offset      int
	Limit       int
}

// SalaryWorkTimeFilter narrows salary/work-time lookups. Empty fields do not filter.
type SalaryWorkTimeFilter struct {
	UserID       string
	CompanyNames []string
	JobTitles    []string
	OnlyVisible  bool
	// SortBy is one of created_at, week_work_time, estimated_hourly_wage.
	SortBy    string
	Ascending bool
	Offset    int
	Limit     int
}

// PerformanceCandidate is an author whose experiences crossed a view threshold.
type PerformanceCandidate struct {
	User        User
	Experiences []Experience
	EmailLogs   []EmailLog
}

// JobTitleCount is a job title with its number of wage records.
type JobTitleCount struct {
	Name  string
	Count int
}
