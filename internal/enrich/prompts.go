package enrich

import (
	"errors"
	"fmt"
	"strings"
	"text/template"
)

type Kind string

const (
	KindOverview     Kind = "overview"
	KindTimeline     Kind = "timeline"
	KindTips         Kind = "tips"
	KindScholarships Kind = "scholarships"
	KindAcceptance   Kind = "acceptance"
	KindPrograms     Kind = "programs"
	KindCompare      Kind = "compare"
	KindChat         Kind = "chat"
)

var Kinds = []Kind{
	KindOverview, KindTimeline, KindTips, KindScholarships,
	KindAcceptance, KindPrograms, KindCompare, KindChat,
}

var (
	ErrUnknownKind  = errors.New("unknown narrative kind")
	ErrMissingInput = errors.New("missing narrative input")
)

func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Kinds {
		if k == known {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Request carries the inputs a prompt template may reference. Which fields
// are required depends on the kind.
type Request struct {
	University string
	Country    string
	Degree     string
	Season     string
	Field      string
	Compare    []string
	Question   string
	Context    string
}

func (r Request) validate(kind Kind) error {
	switch kind {
	case KindTimeline:
		return nil
	case KindCompare:
		if len(r.Compare) < 2 {
			return fmt.Errorf("%w: compare needs at least two universities", ErrMissingInput)
		}
	case KindChat:
		if strings.TrimSpace(r.Question) == "" {
			return fmt.Errorf("%w: question", ErrMissingInput)
		}
	default:
		if strings.TrimSpace(r.University) == "" {
			return fmt.Errorf("%w: university", ErrMissingInput)
		}
	}
	return nil
}

func (r Request) withDefaults() Request {
	if r.Degree == "" {
		r.Degree = "Undergraduate"
	}
	if r.Season == "" {
		r.Season = "Fall"
	}
	if r.Field == "" {
		r.Field = "Computer Science"
	}
	return r
}

const systemPrompt = "You are a university admissions advisor helping international students. Be encouraging but realistic."

var prompts = template.Must(template.New("prompts").Funcs(template.FuncMap{
	"join": strings.Join,
}).Parse(`
{{define "overview"}}Provide a brief overview (3-4 sentences) of {{.University}}{{with .Country}} in {{.}}{{end}} highlighting:
1. What makes it unique for international students
2. Its strongest academic programs
3. Campus culture and student life{{end}}

{{define "timeline"}}Create a detailed month-by-month application timeline for a {{.Degree}} student applying to universities for {{.Season}}{{with .University}} with {{.}} as the target{{end}}.
Include:
1. Key milestones (testing, document preparation, application submission, decisions)
2. Recommended actions for each month
3. Critical deadlines to watch for

Format as a structured timeline starting from 12 months before the application deadline.
Keep each month's description concise (2-3 bullet points).{{end}}

{{define "tips"}}Provide specific application tips for {{.University}} for a {{.Degree}} applicant:
1. What the admissions committee values most
2. How to stand out in your application
3. Common mistakes to avoid
4. Tips for essays and personal statements
5. What makes a strong application for this institution

Keep the response practical and actionable.{{end}}

{{define "scholarships"}}List scholarships available to international {{.Degree}} students at {{.University}}. For each give:
1. Scholarship name
2. Amount or coverage
3. Eligibility criteria (brief)
4. Application deadline (if known, or typical timeline)
5. Key requirements

Organize by scholarship amount (highest to lowest).
Include at least 5-7 options if available.
Be specific and factual.{{end}}

{{define "acceptance"}}Describe admission chances at {{.University}}:
1. Approximate acceptance rate (undergraduate and graduate if different)
2. What makes this university competitive
3. Typical admitted student profile (test scores, GPA, achievements)
4. Tips for standing out in applications
5. International student acceptance trends (if applicable)

Be specific and factual. If exact numbers aren't known, provide ranges or recent estimates.{{end}}

{{define "programs"}}Analyze the {{.Field}} program at {{.University}}:
1. Program structure and specializations
2. Research strengths and notable faculty
3. Career outcomes and employers
4. Admission requirements
5. International student perspective, support and post-graduation work options

Be specific and data-driven where possible.{{end}}

{{define "compare"}}Compare the {{.Field}} programs at {{join .Compare ", "}}.

Include:
- Program ranking/reputation
- Acceptance rate/competitiveness
- Key strengths/specializations
- Notable faculty or research
- Career outcomes
- International student friendliness

Format as a comparison that helps a student make an informed decision.{{end}}

{{define "chat"}}{{with .Context}}Context: {{.}}

{{end}}Question: {{.Question}}

Provide a helpful, detailed response about university applications, admissions, or student life.
If the question is about specific universities or programs, provide factual information.
Give practical, actionable advice.{{end}}
`))

// Render builds the user prompt for kind.
func Render(kind Kind, req Request) (string, error) {
	if _, err := ParseKind(string(kind)); err != nil {
		return "", err
	}
	if err := req.validate(kind); err != nil {
		return "", err
	}
	var b strings.Builder
	if err := prompts.ExecuteTemplate(&b, string(kind), req.withDefaults()); err != nil {
		return "", fmt.Errorf("render %s prompt: %w", kind, err)
	}
	return strings.TrimSpace(b.String()), nil
}
