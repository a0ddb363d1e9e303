package models

import (
	"time"
)

const (
	StatusPublished = "published"
	StatusHidden    = "hidden"
)

const (
	EmailStatusUnverified           = "UNVERIFIED"
	EmailStatusSentVerificationLink = "SENT_VERIFICATION_LINK"
	EmailStatusVerified             = "VERIFIED"
)

const (
	ExperienceTypeWork      = "work"
	ExperienceTypeInterview = "interview"
	ExperienceTypeIntern    = "intern"
)

type User struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"_id"`
	CreatedAt time.Time `json:"created_at"`

	Name               string  `gorm:"not null" json:"name"`
	Email              string  `json:"email,omitempty"`
	EmailStatus        string  `json:"email_status,omitempty"`
	SubscribeEmail     bool    `json:"-"`
	FacebookID         *string `gorm:"uniqueIndex" json:"facebook_id,omitempty"`
	Facebook           JSONMap `gorm:"type:jsonb" json:"-"`
	GoogleID           *string `gorm:"uniqueIndex" json:"google_id,omitempty"`
	Google             JSONMap `gorm:"type:jsonb" json:"-"`
	TimeAndSalaryCount int     `json:"-"`
}

// Experience is a work, interview or intern write-up. Fields that only apply
// to one type stay at their zero value for the others.
type Experience struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"index"`

	Type             string `gorm:"index;not null"`
	AuthorID         string `gorm:"type:uuid;index;not null"`
	CompanyID        string
	CompanyName      string `gorm:"index;not null"`
	JobTitle         string `gorm:"index;not null"`
	Region           string
	Title            string
	Sections         Sections `gorm:"type:jsonb"`
	ContentLength    int
	ExperienceInYear *int
	Education        string
	SalaryType       string
	SalaryAmount     float64
	Email            string

	LikeCount   int `gorm:"not null;default:0"`
	ReplyCount  int `gorm:"not null;default:0"`
	ReportCount int `gorm:"not null;default:0"`
	ViewCount   int `gorm:"not null;default:0"`

	Status        string `gorm:"index;not null"`
	IsArchived    bool   `gorm:"not null"`
	ArchiveReason string

	// work
	IsCurrentlyEmployed string
	JobEndingYear       int
	JobEndingMonth      int
	DataTimeYear        int
	DataTimeMonth       int
	WeekWorkTime        *float64
	RecommendToOthers   string

	// interview
	InterviewYear               int
	InterviewMonth              int
	InterviewResult             string
	InterviewQAs                InterviewQAs `gorm:"column:interview_qas;type:jsonb"`
	InterviewSensitiveQuestions StringList   `gorm:"type:jsonb"`

	// interview and intern
	OverallRating *float64

	// intern
	StartingYear *int
}

// SalaryWorkTime is one anonymous salary and working-hours report.
type SalaryWorkTime struct {
	ID        string    `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"index"`

	UserID              string `gorm:"type:uuid;index"`
	CompanyID           string
	CompanyName         string `gorm:"index;not null"`
	JobTitle            string `gorm:"index;not null"`
	Sector              string
	Gender              string
	EmploymentType      string
	IsCurrentlyEmployed string
	JobEndingYear       int
	JobEndingMonth      int
	DataTimeYear        int
	DataTimeMonth       int

	WeekWorkTime          *float64
	OvertimeFrequency     *int
	DayPromisedWorkTime   *float64
	DayRealWorkTime       *float64
	HasOvertimeSalary     string
	IsOvertimeSalaryLegal string
	HasCompensatoryDayoff string

	ExperienceInYear     *int
	SalaryType           string
	SalaryAmount         float64
	EstimatedHourlyWage  *float64
	EstimatedMonthlyWage *float64

	CampaignName  string
	AboutThisJob  string
	Email         string
	ExtraInfo     ExtraInfo `gorm:"type:jsonb"`
	RecommendedBy string

	Status        string `gorm:"index;not null"`
	IsArchived    bool   `gorm:"not null"`
	ArchiveReason string

	// Columns carried over from the pre-user-account era, read by data migrations.
	LegacyAuthorID    string `gorm:"column:author_id"`
	LegacyAuthorType  string `gorm:"column:author_type"`
	LegacyAuthorEmail string `gorm:"column:author_email"`
}

type Company struct {
	ID   string `gorm:"primaryKey" json:"id"`
	Name string `gorm:"index;not null" json:"name"`
}

type JobTitle struct {
	ID   uint   `gorm:"primaryKey" json:"_id"`
	Name string `gorm:"uniqueIndex;not null" json:"des"`
}

type CompanyKeyword struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"index"`
	Word      string    `gorm:"not null"`
}

type JobTitleKeyword struct {
	ID        uint      `gorm:"primaryKey"`
	CreatedAt time.Time `gorm:"index"`
	Word      string    `gorm:"not null"`
}

type ExperienceLike struct {
	ID           uint      `gorm:"primaryKey"`
	CreatedAt    time.Time
	ExperienceID string `gorm:"type:uuid;uniqueIndex:idx_like_experience_user"`
	UserID       string `gorm:"type:uuid;uniqueIndex:idx_like_experience_user"`
}

type EmailLog struct {
	ID           uint      `gorm:"primaryKey"`
	CreatedAt    time.Time
	UserID       string `gorm:"type:uuid;index"`
	ExperienceID string `gorm:"type:uuid"`
	Threshold    int
}

type Recommendation struct {
	UserID string `gorm:"type:uuid;primaryKey" json:"user_id"`
	Count  int    `json:"count"`
}

type DataMigration struct {
	Name      string `gorm:"primaryKey"`
	CreatedAt time.Time
}
