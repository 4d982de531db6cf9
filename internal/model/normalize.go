package model

import (
	"fmt"

	"resume-studio/internal/engine"
)

// Color defaults applied whenever a channel is missing.
const (
	DefaultPrimary    = "#000000"
	DefaultSecondary  = "#666666"
	DefaultAccent     = "#0066cc"
	DefaultBackground = "#ffffff"
)

// Normalize coerces resume data into the fixed argument tuple the sandbox
// expects. It is total: missing or malformed fields are defaulted, never
// rejected, so no argument the sandbox receives is ever nil.
func Normalize(r ResumeData) engine.Args {
	return engine.Args{
		PersonalInfo:   normalizePersonalInfo(r.PersonalInfo),
		WorkExperience: normalizeWork(r.WorkExperience),
		Education:      normalizeEducation(r.Education),
		Skills:         normalizeSkills(r.Skills),
		Projects:       normalizeProjects(r.Projects),
		Colors:         NormalizeColors(r.Colors),
	}
}

// normalizePersonalInfo defaults every field to a readable placeholder so
// previews are never blank.
func normalizePersonalInfo(p PersonalInfo) map[string]any {
	return map[string]any{
		"name":     fallback(p.Name, "Your Name"),
		"title":    fallback(p.Title, "Professional Title"),
		"email":    fallback(p.Email, "email@example.com"),
		"phone":    fallback(p.Phone, "(555) 123-4567"),
		"location": fallback(p.Location, "City, Country"),
		"summary":  fallback(p.Summary, "A brief professional summary goes here."),
	}
}

func normalizeWork(items []WorkExperience) []any {
	out := make([]any, 0, len(items))
	for i, w := range items {
		out = append(out, map[string]any{
			"id":          fallback(w.ID, tempID(i)),
			"company":     w.Company,
			"position":    w.Position,
			"startDate":   w.StartDate,
			"endDate":     w.EndDate,
			"description": w.Description,
		})
	}
	return out
}

func normalizeEducation(items []Education) []any {
	out := make([]any, 0, len(items))
	for i, e := range items {
		out = append(out, map[string]any{
			"id":           fallback(e.ID, tempID(i)),
			"institution":  e.Institution,
			"degree":       e.Degree,
			"fieldOfStudy": e.FieldOfStudy,
			"startDate":    e.StartDate,
			"endDate":      e.EndDate,
			"description":  e.Description,
		})
	}
	return out
}

// normalizeSkills guarantees every entry is {id, name} with string values;
// bare strings were already wrapped at unmarshal time but may lack ids.
func normalizeSkills(items []Skill) []any {
	out := make([]any, 0, len(items))
	for i, s := range items {
		m := map[string]any{
			"id":   fallback(s.ID, fmt.Sprintf("skill-%d", i)),
			"name": s.Name,
		}
		if s.Level != "" {
			m["level"] = s.Level
		}
		out = append(out, m)
	}
	return out
}

func normalizeProjects(items []Project) []any {
	out := make([]any, 0, len(items))
	for i, p := range items {
		out = append(out, map[string]any{
			"id":           fallback(p.ID, tempID(i)),
			"name":         p.Name,
			"description":  p.Description,
			"technologies": p.Technologies,
			"link":         p.Link,
			"github":       p.Github,
			"url":          p.URL,
		})
	}
	return out
}

// NormalizeColors applies the fixed defaults for missing channels. The
// template store reuses it when loading records with partial preferences.
func NormalizeColors(c ColorScheme) map[string]any {
	return map[string]any{
		"primary":    fallback(c.Primary, DefaultPrimary),
		"secondary":  fallback(c.Secondary, DefaultSecondary),
		"accent":     fallback(c.Accent, DefaultAccent),
		"background": fallback(c.Background, DefaultBackground),
	}
}

// WithDefaults fills missing channels on a typed scheme, mirroring
// NormalizeColors for callers that stay in struct form.
func (c ColorScheme) WithDefaults() ColorScheme {
	return ColorScheme{
		Primary:    fallback(c.Primary, DefaultPrimary),
		Secondary:  fallback(c.Secondary, DefaultSecondary),
		Accent:     fallback(c.Accent, DefaultAccent),
		Background: fallback(c.Background, DefaultBackground),
	}
}

func tempID(i int) string { return fmt.Sprintf("temp-id-%d", i) }

func fallback(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
