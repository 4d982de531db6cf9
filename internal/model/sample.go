package model

// SampleResume is the fixed dataset behind template previews, so every
// descriptor's preview renders the same content regardless of user data.
func SampleResume() ResumeData {
	return ResumeData{
		PersonalInfo: PersonalInfo{
			Name:     "Alex Rivera",
			Title:    "Senior Software Engineer",
			Email:    "alex.rivera@example.com",
			Phone:    "(555) 010-2030",
			Location: "Lisbon, Portugal",
			Summary:  "Engineer with eight years of experience building data-heavy web services and the teams around them.",
		},
		WorkExperience: []WorkExperience{
			{
				ID:          "we-1",
				Company:     "Northwind Systems",
				Position:    "Senior Software Engineer",
				StartDate:   "2021-03",
				EndDate:     "Present",
				Description: "Leads the billing platform team; cut invoice processing latency by 70%.",
			},
			{
				ID:          "we-2",
				Company:     "Datastitch",
				Position:    "Backend Engineer",
				StartDate:   "2017-06",
				EndDate:     "2021-02",
				Description: "Built ingestion pipelines handling two billion events a day.",
			},
		},
		Education: []Education{
			{
				ID:           "ed-1",
				Institution:  "University of Porto",
				Degree:       "BSc",
				FieldOfStudy: "Computer Science",
				StartDate:    "2012",
				EndDate:      "2016",
			},
		},
		Skills: []Skill{
			{ID: "sk-1", Name: "Go"},
			{ID: "sk-2", Name: "PostgreSQL"},
			{ID: "sk-3", Name: "Distributed Systems"},
			{ID: "sk-4", Name: "TypeScript"},
		},
		Projects: []Project{
			{
				ID:           "pr-1",
				Name:         "loadshed",
				Description:  "Adaptive load-shedding middleware for HTTP services.",
				Technologies: "Go, Prometheus",
				Github:       "https://github.com/example/loadshed",
			},
		},
		Colors: ColorScheme{
			Primary:   "#1a1a2e",
			Secondary: "#4a4e69",
			Accent:    "#0f3460",
		},
	}
}
