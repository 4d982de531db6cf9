package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeEmptyResume(t *testing.T) {
	args := Normalize(ResumeData{})

	assert.Equal(t, "Your Name", args.PersonalInfo["name"])
	assert.Equal(t, "Professional Title", args.PersonalInfo["title"])
	assert.Equal(t, "email@example.com", args.PersonalInfo["email"])
	assert.Equal(t, "(555) 123-4567", args.PersonalInfo["phone"])
	assert.Equal(t, "City, Country", args.PersonalInfo["location"])

	assert.NotNil(t, args.WorkExperience)
	assert.NotNil(t, args.Education)
	assert.NotNil(t, args.Skills)
	assert.NotNil(t, args.Projects)
	assert.Empty(t, args.WorkExperience)

	assert.Equal(t, DefaultPrimary, args.Colors["primary"])
	assert.Equal(t, DefaultSecondary, args.Colors["secondary"])
	assert.Equal(t, DefaultAccent, args.Colors["accent"])
	assert.Equal(t, DefaultBackground, args.Colors["background"])
}

func TestNormalizeGeneratesIDs(t *testing.T) {
	args := Normalize(ResumeData{
		WorkExperience: []WorkExperience{{Company: "Acme"}, {ID: "w2", Company: "Beta"}},
		Skills:         []Skill{{Name: "Go"}},
	})

	first := args.WorkExperience[0].(map[string]any)
	second := args.WorkExperience[1].(map[string]any)
	assert.Equal(t, "temp-id-0", first["id"])
	assert.Equal(t, "w2", second["id"])

	skill := args.Skills[0].(map[string]any)
	assert.Equal(t, "skill-0", skill["id"])
	assert.Equal(t, "Go", skill["name"])
	assert.NotContains(t, skill, "level")
}

func TestNormalizePartialColors(t *testing.T) {
	colors := NormalizeColors(ColorScheme{Primary: "#111111"})
	assert.Equal(t, "#111111", colors["primary"])
	assert.Equal(t, DefaultAccent, colors["accent"])

	scheme := ColorScheme{Accent: "#ff0000"}.WithDefaults()
	assert.Equal(t, "#ff0000", scheme.Accent)
	assert.Equal(t, DefaultPrimary, scheme.Primary)
	assert.Equal(t, DefaultBackground, scheme.Background)
}

func TestSkillUnmarshalAcceptsBothShapes(t *testing.T) {
	var resume ResumeData
	require.NoError(t, json.Unmarshal([]byte(`{
		"skills": ["JavaScript", {"id": "s2", "name": "Go", "level": "expert"}, {"name": "SQL"}]
	}`), &resume))

	require.Len(t, resume.Skills, 3)
	assert.Equal(t, Skill{Name: "JavaScript"}, resume.Skills[0])
	assert.Equal(t, Skill{ID: "s2", Name: "Go", Level: "expert"}, resume.Skills[1])
	assert.Equal(t, Skill{Name: "SQL"}, resume.Skills[2])
}

func TestEducationUnmarshalAcceptsLegacyFieldKey(t *testing.T) {
	var resume ResumeData
	require.NoError(t, json.Unmarshal([]byte(`{
		"education": [
			{"institution": "MIT", "field": "CS"},
			{"institution": "CMU", "fieldOfStudy": "Robotics", "field": "ignored"}
		]
	}`), &resume))

	require.Len(t, resume.Education, 2)
	assert.Equal(t, "CS", resume.Education[0].FieldOfStudy)
	assert.Equal(t, "Robotics", resume.Education[1].FieldOfStudy)
}

func TestUnmarshalCoercesLooseValues(t *testing.T) {
	var resume ResumeData
	require.NoError(t, json.Unmarshal([]byte(`{
		"workExperience": [{"id": 7, "company": "Acme"}],
		"projects": [{"name": "cli", "technologies": ["Go", "Postgres"]}]
	}`), &resume))

	assert.Equal(t, "7", resume.WorkExperience[0].ID)
	assert.Equal(t, "Go, Postgres", resume.Projects[0].Technologies)
}

func TestImportSnapshotRejectsBadInput(t *testing.T) {
	_, err := ImportSnapshot([]byte("{not json"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not valid JSON")

	_, err = ImportSnapshot([]byte(`{"skills": [42]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "schema validation failed")
}

func TestSnapshotRoundTrip(t *testing.T) {
	original := SampleResume()
	data, err := ExportSnapshot(original)
	require.NoError(t, err)

	restored, err := ImportSnapshot(data)
	require.NoError(t, err)
	assert.Equal(t, original, restored)
}
