package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"golang.org/x/term"

	"github.com/masahif/docskills/internal/config"
)

type targetChoice struct {
	label string
	name  string
}

var targetChoices = []targetChoice{
	{"Custom (specify output path)", config.TargetCustom},
	{"GitHub Copilot", "github-copilot"},
	{"Claude Code", "claude-code"},
	{"Cursor", "cursor"},
	{"Antigravity (Gemini)", "antigravity"},
	{"OpenAI Codex", "openai-codex"},
	{"OpenCode", "opencode"},
}

var scopeChoices = []targetChoice{
	{"Project (install to current directory)", config.ScopeProject},
	{"User (install to home directory)", config.ScopeUser},
}

// terminalInput returns stdin as a file when it is an interactive terminal.
func terminalInput(in io.Reader) (*os.File, bool) {
	f, ok := in.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return nil, false
	}
	return f, true
}

func labels(choices []targetChoice) []string {
	out := make([]string, len(choices))
	for i, c := range choices {
		out[i] = c.label
	}
	return out
}

func valueOf(choices []targetChoice, label string) string {
	for _, c := range choices {
		if c.label == label {
			return c.name
		}
	}
	return choices[0].name
}

func validateCount(least int) survey.Validator {
	return func(ans any) error {
		n, err := strconv.Atoi(fmt.Sprint(ans))
		if err != nil || n < least {
			return fmt.Errorf("enter a whole number of at least %d", least)
		}
		return nil
	}
}

// askTemplateValues runs the init questionnaire. Unanswered numbers keep
// their defaults.
func askTemplateValues(in terminal.FileReader, out terminal.FileWriter, errOut io.Writer) (config.TemplateValues, error) {
	v := config.DefaultTemplateValues()
	opts := survey.WithStdio(in, out, errOut)

	var target string
	if err := survey.AskOne(&survey.Select{
		Message: "Select target IDE/agent:",
		Options: labels(targetChoices),
		Help:    "Choose where your skills will be installed",
	}, &target, opts); err != nil {
		return v, fmt.Errorf("failed to get target selection: %w", err)
	}
	v.Target = valueOf(targetChoices, target)

	var scope string
	if err := survey.AskOne(&survey.Select{
		Message: "Install skills at project or user level?",
		Options: labels(scopeChoices),
		Help:    "Project-level is recommended for team collaboration",
	}, &scope, opts); err != nil {
		return v, fmt.Errorf("failed to get scope selection: %w", err)
	}
	v.Scope = valueOf(scopeChoices, scope)

	if v.Target == config.TargetCustom {
		if err := survey.AskOne(&survey.Input{
			Message: "Output directory:",
			Default: v.Output,
			Help:    "Where to store generated skill files",
		}, &v.Output, opts, survey.WithValidator(survey.Required)); err != nil {
			return v, fmt.Errorf("failed to get output path: %w", err)
		}
	}

	numbers := []struct {
		message string
		help    string
		least   int
		value   *int
	}{
		{"Request delay in milliseconds:", "Delay between requests to the same host", 0, &v.DelayMS},
		{"Maximum crawl depth:", "How deep to follow links from the starting URL", 0, &v.MaxDepth},
		{"Concurrency limit:", "Number of pages processed in parallel", 1, &v.Concurrency},
	}
	for _, q := range numbers {
		answer := strconv.Itoa(*q.value)
		if err := survey.AskOne(&survey.Input{
			Message: q.message,
			Default: answer,
			Help:    q.help,
		}, &answer, opts, survey.WithValidator(validateCount(q.least))); err != nil {
			return v, fmt.Errorf("failed to get %q: %w", q.message, err)
		}
		if n, err := strconv.Atoi(answer); err == nil {
			*q.value = n
		}
	}

	return v, nil
}
