package summary

import (
	"fmt"
	"strings"
	"text/template"
)

// Templates holds the system and user prompt templates for one LLM call.
// Templates use text/template syntax with {{.var}} placeholders; rendering
// fails if a template references a variable that was not supplied.
type Templates struct {
	System string
	User   string
}

const defaultPRSystemPrompt = `You are PR-Digest, a tool that summarizes pull requests for engineering teams.
Your task is to provide a full and accurate summary of the given pull request: its changed files and its review discussions.

Rules:
- Base every statement on the provided PR content. Never invent changes or discussions.
- Prefer concrete statements about what changed over generic descriptions.
- Output must be a single JSON object conforming exactly to the schema below. Do not output anything else.

The output must conform to this JSON schema:
{{.schema}}`

const defaultPRUserPrompt = `Summarize the following pull request.

PR author: {{.author}}
PR title: {{.title}}

PR description:
{{.description}}

Code diff:
{{.code}}

Review comment threads (JSON):
{{.comments}}

Respond with the JSON object only.`

const defaultWeeklySystemPrompt = `You are PR-Digest, a tool that writes weekly engineering reports.
You are given a list of pull request summaries produced during one week. Write a concise report of the week's work: major themes, notable changes, and review discussions worth surfacing.

Rules:
- Base every statement on the provided summaries. Never invent work that is not listed.
- Group related pull requests by theme rather than listing them one by one.
- Each pull request summary conforms to this JSON schema:
{{.schema}}`

const defaultWeeklyUserPrompt = `Write a weekly report from the following pull request summaries (JSON):

{{.summaries}}`

// DefaultPRTemplates returns the built-in per-PR summarization prompts.
func DefaultPRTemplates() Templates {
	return Templates{System: defaultPRSystemPrompt, User: defaultPRUserPrompt}
}

// DefaultWeeklyTemplates returns the built-in weekly roll-up prompts.
func DefaultWeeklyTemplates() Templates {
	return Templates{System: defaultWeeklySystemPrompt, User: defaultWeeklyUserPrompt}
}

// renderPrompt executes a single template against vars. Referencing a
// variable missing from vars is an error, not a silent blank: a prompt
// with a hole in it produces garbage summaries that are hard to trace.
func renderPrompt(name, text string, vars map[string]any) (string, error) {
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return "", fmt.Errorf("parsing %s template: %w", name, err)
	}
	var buf strings.Builder
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("rendering %s template: %w", name, err)
	}
	return buf.String(), nil
}

// Render fills both templates with the same variable set.
func (t Templates) Render(vars map[string]any) (system, user string, err error) {
	system, err = renderPrompt("system", t.System, vars)
	if err != nil {
		return "", "", err
	}
	user, err = renderPrompt("user", t.User, vars)
	if err != nil {
		return "", "", err
	}
	return system, user, nil
}
