package joincode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValid(t *testing.T) {
	tests := []struct {
		code string
		want bool
	}{
		{code: "AB12cd", want: true},
		{code: "a1b2c3", want: true},
		{code: "ZZZZZZ", want: true},
		{code: "123456", want: true},
		{code: "AB12C", want: false},
		{code: "AB12C!", want: false},
		{code: "AB12cd7", want: false},
		{code: "", want: false},
		{code: " AB12c", want: false},
		{code: "ab-12c", want: false},
		{code: "ÄB12cd", want: false},
		{code: "\u212Aabc12", want: false},
		{code: "\u017Fabc12", want: false},
		{code: "abcde\u212A", want: false},
		{code: "\uFF41b12cd", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValid(tt.code))
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		className string
		want      Subject
	}{
		{name: "writers", className: "Young Creative Writers", want: SubjectEnglish},
		{name: "sanatan", className: "Sanatan Unboxed", want: SubjectGita},
		{name: "gita", className: "Gita for kids", want: SubjectGita},
		{name: "math", className: "Alpha Math", want: SubjectMaths},
		{name: "maths plural", className: "MATHS Olympiad", want: SubjectMaths},
		{name: "no keyword", className: "Robotics 101", want: SubjectMaths},
		{name: "empty", className: "", want: SubjectMaths},
		{name: "ptm", className: "PTM - March", want: SubjectEnglish},
		{name: "english beats gita", className: "Gita Homework Help", want: SubjectEnglish},
		{name: "english beats math", className: "Extra Math Practice", want: SubjectEnglish},
		{name: "gita beats math", className: "Sanatan Mathematics", want: SubjectGita},
		{name: "public speaker", className: "Confident Speakers Club", want: SubjectEnglish},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.className))
		})
	}
}

func TestParseSubject(t *testing.T) {
	assert.Equal(t, SubjectGita, ParseSubject("Gita"))
	assert.Equal(t, SubjectEnglish, ParseSubject("english"))
	assert.Equal(t, SubjectMaths, ParseSubject("math"))
	assert.Equal(t, SubjectMaths, ParseSubject("maths"))
	assert.Equal(t, SubjectNone, ParseSubject("science"))
}
