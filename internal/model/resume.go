package model

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Resume data model. Unmarshalling is deliberately lenient: ids may arrive as
// numbers, skills as bare strings, education with the legacy "field" key.
// Everything is coerced to the canonical string shapes here so downstream
// code never sees the variants.

type PersonalInfo struct {
	Name     string `json:"name"`
	Title    string `json:"title"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Summary  string `json:"summary"`
}

type WorkExperience struct {
	ID          string `json:"id"`
	Company     string `json:"company"`
	Position    string `json:"position"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
}

type Education struct {
	ID           string `json:"id"`
	Institution  string `json:"institution"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldOfStudy"`
	StartDate    string `json:"startDate"`
	EndDate      string `json:"endDate"`
	Description  string `json:"description"`
}

// Skill is canonically {id, name, level?}; bare strings are a legacy input
// shape accepted on unmarshal.
type Skill struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Level string `json:"level,omitempty"`
}

type Project struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Description  string `json:"description"`
	Technologies string `json:"technologies,omitempty"`
	Link         string `json:"link,omitempty"`
	Github       string `json:"github,omitempty"`
	URL          string `json:"url,omitempty"`
}

type AdditionalSection struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

type ColorScheme struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Background string `json:"background,omitempty"`
}

type ResumeData struct {
	PersonalInfo       PersonalInfo        `json:"personalInfo"`
	WorkExperience     []WorkExperience    `json:"workExperience"`
	Education          []Education         `json:"education"`
	Skills             []Skill             `json:"skills"`
	Projects           []Project           `json:"projects"`
	AdditionalSections []AdditionalSection `json:"additionalSections,omitempty"`
	Colors             ColorScheme         `json:"colors"`
	SelectedTemplate   string              `json:"selectedTemplate,omitempty"`
}

func (s *Skill) UnmarshalJSON(data []byte) error {
	var bare string
	if err := json.Unmarshal(data, &bare); err == nil {
		*s = Skill{Name: bare}
		return nil
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*s = Skill{
		ID:    coerceString(raw["id"]),
		Name:  coerceString(raw["name"]),
		Level: coerceString(raw["level"]),
	}
	return nil
}

func (e *Education) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	field := coerceString(raw["fieldOfStudy"])
	if field == "" {
		// legacy key
		field = coerceString(raw["field"])
	}
	*e = Education{
		ID:           coerceString(raw["id"]),
		Institution:  coerceString(raw["institution"]),
		Degree:       coerceString(raw["degree"]),
		FieldOfStudy: field,
		StartDate:    coerceString(raw["startDate"]),
		EndDate:      coerceString(raw["endDate"]),
		Description:  coerceString(raw["description"]),
	}
	return nil
}

func (w *WorkExperience) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*w = WorkExperience{
		ID:          coerceString(raw["id"]),
		Company:     coerceString(raw["company"]),
		Position:    coerceString(raw["position"]),
		StartDate:   coerceString(raw["startDate"]),
		EndDate:     coerceString(raw["endDate"]),
		Description: coerceString(raw["description"]),
	}
	return nil
}

func (p *Project) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*p = Project{
		ID:           coerceString(raw["id"]),
		Name:         coerceString(raw["name"]),
		Description:  coerceString(raw["description"]),
		Technologies: coerceList(raw["technologies"]),
		Link:         coerceString(raw["link"]),
		Github:       coerceString(raw["github"]),
		URL:          coerceString(raw["url"]),
	}
	return nil
}

// coerceString turns whatever arrived into a string; objects are stringified
// rather than left as references so renderers never see unexpected shapes.
func coerceString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// coerceList accepts either a delimited string or a list and yields a
// comma-joined string (used for project technologies).
func coerceList(v any) string {
	switch t := v.(type) {
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := coerceString(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return coerceString(v)
	}
}
