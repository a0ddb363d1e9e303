package dtos

type SectionInput struct {
	Subtitle *string `json:"subtitle"`
	Content  string  `json:"content"`
}

type YearMonthInput struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type SalaryInput struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
}

type InterviewQAInput struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// ExperienceRequest holds the fields shared by every experience type.
type ExperienceRequest struct {
	CompanyID        string         `json:"company_id"`
	CompanyQuery     string         `json:"company_query"`
	Region           string         `json:"region"`
	JobTitle         string         `json:"job_title"`
	Title            string         `json:"title"`
	Sections         []SectionInput `json:"sections"`
	ExperienceInYear *int           `json:"experience_in_year"`
	Education        string         `json:"education"`
	Status           string         `json:"status"`
	Email            string         `json:"email"`
	Salary           *SalaryInput   `json:"salary"`
}

type WorkExperienceRequest struct {
	ExperienceRequest

	IsCurrentlyEmployed string          `json:"is_currently_employed"`
	JobEndingTime       *YearMonthInput `json:"job_ending_time"`
	WeekWorkTime        *float64        `json:"week_work_time"`
	RecommendToOthers   string          `json:"recommend_to_others"`
}

type InterviewExperienceRequest struct {
	ExperienceRequest

	InterviewTime               *YearMonthInput    `json:"interview_time"`
	InterviewResult             string             `json:"interview_result"`
	InterviewQAs                []InterviewQAInput `json:"interview_qas"`
	InterviewSensitiveQuestions []string           `json:"interview_sensitive_questions"`
	OverallRating               *int               `json:"overall_rating"`
}

type ExperienceID struct {
	ID string `json:"_id"`
}

type CreateExperienceResponse struct {
	Success    bool         `json:"success"`
	Experience ExperienceID `json:"experience"`
}

type LikeResponse struct {
	Success   bool `json:"success"`
	LikeCount int  `json:"like_count"`
}
