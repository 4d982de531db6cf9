package registry

import (
	"context"
	"net/url"
	"strings"

	"resume-studio/internal/engine"
	"resume-studio/internal/model"

	"golang.org/x/net/publicsuffix"
)

// Built-in templates are trusted code: they compose nodes directly with
// engine.El and skip the sandbox entirely. They still consume normalized
// arguments so defaults behave exactly like they do for custom templates.

func builtinDescriptors() []*Descriptor {
	return []*Descriptor{
		{
			ID:            "modern",
			Name:          "Modern",
			DefaultLayout: "single-column",
			Render:        renderModern,
		},
		{
			ID:            "classic",
			Name:          "Classic",
			DefaultLayout: "single-column",
			Render:        renderClassic,
		},
	}
}

func renderModern(_ context.Context, resume model.ResumeData, colors *model.ColorScheme) (*engine.Node, error) {
	args := model.Normalize(resume)
	if colors != nil {
		args.Colors = model.NormalizeColors(*colors)
	}
	c := args.Colors
	root := engine.El("div", map[string]any{
		"style": map[string]any{
			"fontFamily": "Helvetica, Arial, sans-serif",
			"color":      c["primary"],
			"background": c["background"],
			"padding":    "32px",
		},
	},
		engine.El("h1", map[string]any{"style": map[string]any{"margin": "0", "fontSize": "26px"}},
			field(args.PersonalInfo, "name")),
		engine.El("h2", map[string]any{"style": map[string]any{
			"margin": "2px 0 8px", "fontSize": "15px", "fontWeight": "normal", "color": c["accent"],
		}}, field(args.PersonalInfo, "title")),
		engine.El("div", map[string]any{"style": map[string]any{"fontSize": "11px", "color": c["secondary"]}},
			strings.Join([]string{
				field(args.PersonalInfo, "email"),
				field(args.PersonalInfo, "phone"),
				field(args.PersonalInfo, "location"),
			}, "  ·  ")),
		engine.El("p", map[string]any{"style": map[string]any{"fontSize": "12px", "marginTop": "12px"}},
			field(args.PersonalInfo, "summary")),
		sectionHeading("Experience", c),
		experienceList(args, c),
		sectionHeading("Education", c),
		educationList(args, c),
		sectionHeading("Skills", c),
		skillChips(args, c),
		sectionHeading("Projects", c),
		projectList(args, c),
	)
	appendAdditionalSections(root, resume, c)
	return root, nil
}

func renderClassic(_ context.Context, resume model.ResumeData, colors *model.ColorScheme) (*engine.Node, error) {
	args := model.Normalize(resume)
	if colors != nil {
		args.Colors = model.NormalizeColors(*colors)
	}
	c := args.Colors
	root := engine.El("div", map[string]any{
		"style": map[string]any{
			"fontFamily": "Georgia, 'Times New Roman', serif",
			"color":      c["primary"],
			"background": c["background"],
			"padding":    "36px",
		},
	},
		engine.El("div", map[string]any{"style": map[string]any{"textAlign": "center", "borderBottom": "2px solid " + str(c["primary"])}},
			engine.El("h1", map[string]any{"style": map[string]any{"margin": "0", "fontSize": "24px", "letterSpacing": "2px"}},
				strings.ToUpper(field(args.PersonalInfo, "name"))),
			engine.El("div", map[string]any{"style": map[string]any{"fontSize": "12px", "margin": "4px 0 10px", "color": c["secondary"]}},
				field(args.PersonalInfo, "title")+" — "+field(args.PersonalInfo, "email")+" — "+field(args.PersonalInfo, "phone")),
		),
		engine.El("p", map[string]any{"style": map[string]any{"fontSize": "12px", "fontStyle": "italic"}},
			field(args.PersonalInfo, "summary")),
		sectionHeading("Professional Experience", c),
		experienceList(args, c),
		sectionHeading("Education", c),
		educationList(args, c),
		sectionHeading("Skills", c),
		engine.El("p", map[string]any{"style": map[string]any{"fontSize": "12px"}}, skillNames(args)),
		sectionHeading("Projects", c),
		projectList(args, c),
	)
	appendAdditionalSections(root, resume, c)
	return root, nil
}

func sectionHeading(title string, c map[string]any) *engine.Node {
	return engine.El("h3", map[string]any{"style": map[string]any{
		"fontSize":      "13px",
		"marginBottom":  "4px",
		"marginTop":     "16px",
		"borderBottom":  "1px solid " + str(c["secondary"]),
		"paddingBottom": "2px",
		"color":         c["accent"],
	}}, title)
}

func experienceList(args engine.Args, c map[string]any) *engine.Node {
	wrap := engine.El("div", nil)
	for _, item := range args.WorkExperience {
		wrap.Children = append(wrap.Children, engine.El("div",
			map[string]any{"key": field(item, "id"), "style": map[string]any{"marginBottom": "8px"}},
			engine.El("div", map[string]any{"style": map[string]any{"fontSize": "12px", "fontWeight": "bold"}},
				field(item, "position")+" · "+field(item, "company")),
			engine.El("div", map[string]any{"style": map[string]any{"fontSize": "10px", "color": c["secondary"]}},
				dateRange(field(item, "startDate"), field(item, "endDate"))),
			engine.El("div", map[string]any{"style": map[string]any{"fontSize": "11px"}},
				field(item, "description")),
		))
	}
	return wrap
}

func educationList(args engine.Args, c map[string]any) *engine.Node {
	wrap := engine.El("div", nil)
	for _, item := range args.Education {
		line := field(item, "degree")
		if f := field(item, "fieldOfStudy"); f != "" {
			line += " in " + f
		}
		wrap.Children = append(wrap.Children, engine.El("div",
			map[string]any{"key": field(item, "id"), "style": map[string]any{"marginBottom": "6px"}},
			engine.El("div", map[string]any{"style": map[string]any{"fontSize": "12px", "fontWeight": "bold"}},
				field(item, "institution")),
			engine.El("div", map[string]any{"style": map[string]any{"fontSize": "11px"}}, line),
			engine.El("div", map[string]any{"style": map[string]any{"fontSize": "10px", "color": c["secondary"]}},
				dateRange(field(item, "startDate"), field(item, "endDate"))),
		))
	}
	return wrap
}

func skillChips(args engine.Args, c map[string]any) *engine.Node {
	wrap := engine.El("div", map[string]any{"style": map[string]any{"display": "flex", "flexWrap": "wrap", "gap": "4px"}})
	for _, item := range args.Skills {
		wrap.Children = append(wrap.Children, engine.El("span", map[string]any{
			"key": field(item, "id"),
			"style": map[string]any{
				"fontSize":     "10px",
				"border":       "1px solid " + str(c["accent"]),
				"borderRadius": "3px",
				"padding":      "1px 6px",
			},
		}, field(item, "name")))
	}
	return wrap
}

func skillNames(args engine.Args) string {
	names := make([]string, 0, len(args.Skills))
	for _, item := range args.Skills {
		names = append(names, field(item, "name"))
	}
	return strings.Join(names, ", ")
}

func projectList(args engine.Args, c map[string]any) *engine.Node {
	wrap := engine.El("div", nil)
	for _, item := range args.Projects {
		n := engine.El("div",
			map[string]any{"key": field(item, "id"), "style": map[string]any{"marginBottom": "6px"}},
			engine.El("div", map[string]any{"style": map[string]any{"fontSize": "12px", "fontWeight": "bold"}},
				field(item, "name")),
			engine.El("div", map[string]any{"style": map[string]any{"fontSize": "11px"}},
				field(item, "description")),
		)
		if tech := field(item, "technologies"); tech != "" {
			n.Children = append(n.Children, engine.El("div",
				map[string]any{"style": map[string]any{"fontSize": "10px", "color": c["secondary"]}}, tech))
		}
		for _, key := range []string{"link", "github", "url"} {
			if raw := field(item, key); raw != "" {
				n.Children = append(n.Children, engine.El("a",
					map[string]any{"href": raw, "style": map[string]any{"fontSize": "10px", "color": c["accent"], "marginRight": "8px"}},
					linkLabel(raw)))
			}
		}
		wrap.Children = append(wrap.Children, n)
	}
	return wrap
}

func appendAdditionalSections(root *engine.Node, resume model.ResumeData, c map[string]any) {
	for _, sec := range resume.AdditionalSections {
		root.Children = append(root.Children,
			sectionHeading(sec.Title, c),
			engine.El("p", map[string]any{"key": sec.ID, "style": map[string]any{"fontSize": "11px"}}, sec.Content),
		)
	}
}

// linkLabel shows a project URL as its registrable domain so long links do
// not wreck the layout.
func linkLabel(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	host := u.Hostname()
	if etld, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return etld
	}
	return host
}

func dateRange(start, end string) string {
	switch {
	case start == "" && end == "":
		return ""
	case end == "":
		return start
	case start == "":
		return end
	}
	return start + " – " + end
}

// field reads a normalized map entry; normalized values are always strings.
func field(item any, key string) string {
	m, ok := item.(map[string]any)
	if !ok {
		return ""
	}
	return str(m[key])
}

func str(v any) string {
	s, _ := v.(string)
	return s
}
