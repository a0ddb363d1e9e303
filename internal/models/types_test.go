package models

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSectionsRoundTripThroughDriver(t *testing.T) {
	subtitle := "process"
	in := Sections{{Subtitle: &subtitle, Content: "hello"}, {Content: "world"}}

	v, err := in.Value()
	require.NoError(t, err)

	var out Sections
	require.NoError(t, out.Scan([]byte(v.(string))))
	assert.Equal(t, in, out)
}

func TestNilJSONValuesStoreNull(t *testing.T) {
	var list StringList
	v, err := list.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	var m JSONMap
	require.NoError(t, m.Scan(nil))
	assert.Nil(t, m)
}

func TestScanRejectsUnknownSource(t *testing.T) {
	var qa InterviewQAs
	assert.Error(t, qa.Scan(42))
}

func TestPreviewTruncatesOnRunes(t *testing.T) {
	e := &Experience{Sections: Sections{{Content: strings.Repeat("薪", 200)}}}
	preview := e.Preview()
	require.NotNil(t, preview)
	assert.Equal(t, 160, len([]rune(*preview)))

	assert.Nil(t, (&Experience{}).Preview())
}

func TestContentAndLength(t *testing.T) {
	e := &Experience{Sections: Sections{{Content: "ab"}, {Content: "工作"}}}
	assert.Equal(t, "ab\n工作", e.Content())
	assert.Equal(t, 4, SectionsLength(e.Sections))
}

func TestOptionalGroups(t *testing.T) {
	w := &SalaryWorkTime{SalaryType: "month", SalaryAmount: 40000, DataTimeYear: 2024, DataTimeMonth: 3}
	assert.Equal(t, &Salary{Type: "month", Amount: 40000}, w.Salary())
	assert.Equal(t, &YearMonth{Year: 2024, Month: 3}, w.DataTime())
	assert.Nil(t, w.JobEndingTime())

	e := &Experience{}
	assert.Nil(t, e.Salary())
	assert.Nil(t, e.InterviewTime())
}

func TestIDs(t *testing.T) {
	assert.True(t, IsValidID(NewID()))
	assert.False(t, IsValidID("59074fbed17b7412779d1eed"))
}
