package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepairInjectsKeyAndIndexParam(t *testing.T) {
	code := `return React.createElement('div', null, skills.map(s => React.createElement('span', null, s.name)))`
	repaired := Repair(code)

	assert.Contains(t, repaired, "(s, idx) =>")
	assert.Contains(t, repaired, "key: String(s.id || idx)")

	// repaired output must still validate
	res := Validate(repaired)
	assert.True(t, res.IsValid, res.Error)
}

func TestRepairIdempotent(t *testing.T) {
	inputs := []string{
		`return React.createElement('div', null, skills.map(s => React.createElement('span', null, s.name)))`,
		`return React.createElement('div', null, skills.map((s, i) => React.createElement('span', {key: s.id}, s.name)))`,
		`return React.createElement('div', null, 'no lists here')`,
		`workExperience.map(job => React.createElement('div', null, job.company))`,
		`skills.map(s => React.createElement('li', { className: 'chip' }, s.name))`,
	}
	for _, code := range inputs {
		once := Repair(code)
		twice := Repair(once)
		assert.Equal(t, once, twice, code)
	}
}

func TestRepairSkipsExistingKey(t *testing.T) {
	variants := []string{
		`skills.map((s, i) => React.createElement('span', { key: s.id }, s.name))`,
		`skills.map((s, i) => React.createElement('span', { 'key': s.id }, s.name))`,
		`skills.map((s, i) => React.createElement('span', { "key": s.id }, s.name))`,
	}
	for _, code := range variants {
		assert.Equal(t, code, Repair(code), code)
	}
}

func TestRepairKeepsItemVariableName(t *testing.T) {
	code := `workExperience.map(job => React.createElement('div', null, job.company))`
	repaired := Repair(code)
	assert.Contains(t, repaired, "(job, idx) =>")
	assert.Contains(t, repaired, "key: String(job.id || idx)")
}

func TestRepairPreservesExistingIndexParam(t *testing.T) {
	code := `skills.map((s, n) => React.createElement('span', null, s.name))`
	repaired := Repair(code)
	assert.Contains(t, repaired, "(s, n) =>")
	assert.Contains(t, repaired, "key: String(s.id || n)")
}

func TestRepairAbsentProps(t *testing.T) {
	code := `skills.map(s => React.createElement('hr'))`
	repaired := Repair(code)
	assert.Contains(t, repaired, "React.createElement('hr', { key: String(s.id || idx) })")
}

func TestRepairNonEmptyPropsFallback(t *testing.T) {
	code := `skills.map(s => React.createElement('li', { className: 'chip' }, s.name))`
	repaired := Repair(code)
	assert.Contains(t, repaired, "{ key: String(s.id || idx), className: 'chip' }")
}

func TestRepairNestedMaps(t *testing.T) {
	code := `return React.createElement('div', null, workExperience.map(job => React.createElement('div', null, job.company, skills.map(s => React.createElement('i', null, s.name)))))`
	repaired := Repair(code)

	require.Contains(t, repaired, "key: String(job.id || idx)")
	require.Contains(t, repaired, "key: String(s.id || idx)")
	assert.Equal(t, repaired, Repair(repaired))
	assert.True(t, Validate(repaired).IsValid)
}

func TestRepairSurvivesApostropheInComment(t *testing.T) {
	code := "// map the user's skills\nreturn React.createElement('ul', null, skills.map(s => React.createElement('li', null, s.name)))"
	repaired := Repair(code)
	assert.Contains(t, repaired, "key: String(s.id || idx)")
	assert.Equal(t, repaired, Repair(repaired))
}

func TestRepairIgnoresMapInsideComments(t *testing.T) {
	code := `/* skills.map( is required */ return React.createElement('div', null, 'hi')`
	assert.Equal(t, code, Repair(code))
}

func TestRepairIgnoresMapInsideStrings(t *testing.T) {
	code := `return React.createElement('div', null, 'see skills.map( for details')`
	assert.Equal(t, code, Repair(code))
}

func TestRepairDoesNotTouchNonIterationCode(t *testing.T) {
	code := `return React.createElement('div', { className: 'page' }, personalInfo.name)`
	assert.Equal(t, code, Repair(code))
}

func TestRepairedCodeKeyShape(t *testing.T) {
	code := `skills.map(s => React.createElement('span', null, s.name))`
	repaired := Repair(code)
	// identity prefers the stable id and falls back to the loop index
	if !strings.Contains(repaired, "String(s.id || idx)") {
		t.Fatalf("unexpected key expression in %q", repaired)
	}
}
