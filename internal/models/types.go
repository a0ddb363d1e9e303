package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NewID returns a fresh record id.
func NewID() string {
	return uuid.NewString()
}

// IsValidID reports whether id looks like a record id.
func IsValidID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

type Section struct {
	Subtitle *string `json:"subtitle"`
	Content  string  `json:"content"`
}

type InterviewQA struct {
	Question string `json:"question"`
	Answer   string `json:"answer,omitempty"`
}

type ExtraInfoItem struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type (
	Sections     []Section
	InterviewQAs []InterviewQA
	StringList   []string
	ExtraInfo    []ExtraInfoItem
	JSONMap      map[string]any
)

func (s Sections) Value() (driver.Value, error)     { return jsonValue(s) }
func (s *Sections) Scan(src any) error               { return jsonScan(src, s) }
func (q InterviewQAs) Value() (driver.Value, error) { return jsonValue(q) }
func (q *InterviewQAs) Scan(src any) error           { return jsonScan(src, q) }
func (l StringList) Value() (driver.Value, error)   { return jsonValue(l) }
func (l *StringList) Scan(src any) error             { return jsonScan(src, l) }
func (e ExtraInfo) Value() (driver.Value, error)    { return jsonValue(e) }
func (e *ExtraInfo) Scan(src any) error              { return jsonScan(src, e) }
func (m JSONMap) Value() (driver.Value, error)      { return jsonValue(m) }
func (m *JSONMap) Scan(src any) error                { return jsonScan(src, m) }

// String returns a top level string entry of a provider profile.
func (m JSONMap) String(key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

func jsonValue(v any) (driver.Value, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	if string(b) == "null" {
		return nil, nil
	}
	return string(b), nil
}

func jsonScan(src any, dst any) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dst)
	case string:
		return json.Unmarshal([]byte(v), dst)
	default:
		return fmt.Errorf("cannot scan %T into %T", src, dst)
	}
}

type Salary struct {
	Type   string  `json:"type"`
	Amount float64 `json:"amount"`
}

type YearMonth struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

type CompanyRef struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

type Archive struct {
	IsArchived bool   `json:"is_archived"`
	Reason     string `json:"reason"`
}

func yearMonth(year, month int) *YearMonth {
	if year == 0 {
		return nil
	}
	return &YearMonth{Year: year, Month: month}
}

func salary(typ string, amount float64) *Salary {
	if typ == "" {
		return nil
	}
	return &Salary{Type: typ, Amount: amount}
}

func (e *Experience) BeforeCreate(*gorm.DB) error {
	if e.ID == "" {
		e.ID = NewID()
	}
	return nil
}

func (e *Experience) Company() CompanyRef { return CompanyRef{ID: e.CompanyID, Name: e.CompanyName} }
func (e *Experience) Salary() *Salary     { return salary(e.SalaryType, e.SalaryAmount) }
func (e *Experience) Archive() Archive    { return Archive{IsArchived: e.IsArchived, Reason: e.ArchiveReason} }
func (e *Experience) DataTime() *YearMonth {
	return yearMonth(e.DataTimeYear, e.DataTimeMonth)
}
func (e *Experience) JobEndingTime() *YearMonth {
	return yearMonth(e.JobEndingYear, e.JobEndingMonth)
}
func (e *Experience) InterviewTime() *YearMonth {
	return yearMonth(e.InterviewYear, e.InterviewMonth)
}

// IsVisible reports whether the experience can be shown publicly.
func (e *Experience) IsVisible() bool {
	return e.Status == StatusPublished && !e.IsArchived
}

const maxPreviewRunes = 160

// Preview is the start of the first section, used in listings.
func (e *Experience) Preview() *string {
	if len(e.Sections) == 0 {
		return nil
	}
	content := e.Sections[0].Content
	if utf8.RuneCountInString(content) > maxPreviewRunes {
		content = string([]rune(content)[:maxPreviewRunes])
	}
	return &content
}

// Content joins every section body with newlines.
func (e *Experience) Content() string {
	parts := make([]string, 0, len(e.Sections))
	for _, s := range e.Sections {
		parts = append(parts, s.Content)
	}
	return strings.Join(parts, "\n")
}

// SectionsLength counts runes across every section body.
func SectionsLength(sections Sections) int {
	n := 0
	for _, s := range sections {
		n += utf8.RuneCountInString(s.Content)
	}
	return n
}

func (w *SalaryWorkTime) BeforeCreate(*gorm.DB) error {
	if w.ID == "" {
		w.ID = NewID()
	}
	return nil
}

func (w *SalaryWorkTime) Company() CompanyRef { return CompanyRef{ID: w.CompanyID, Name: w.CompanyName} }
func (w *SalaryWorkTime) Salary() *Salary     { return salary(w.SalaryType, w.SalaryAmount) }
func (w *SalaryWorkTime) Archive() Archive    { return Archive{IsArchived: w.IsArchived, Reason: w.ArchiveReason} }
func (w *SalaryWorkTime) DataTime() *YearMonth {
	return yearMonth(w.DataTimeYear, w.DataTimeMonth)
}
func (w *SalaryWorkTime) JobEndingTime() *YearMonth {
	return yearMonth(w.JobEndingYear, w.JobEndingMonth)
}

func (w *SalaryWorkTime) IsVisible() bool {
	return w.Status == StatusPublished && !w.IsArchived
}

func (u *User) BeforeCreate(*gorm.DB) error {
	if u.ID == "" {
		u.ID = NewID()
	}
	return nil
}
