package ai

import (
	_ "embed"
	"strings"
)

//go:embed prompt.md
var systemInstruction string

//go:embed request.md
var requestTemplate string

func buildPrompt(resumeText, jobText string) string {
	template := requestTemplate
	if strings.TrimSpace(template) == "" {
		template = "Job description:\n{{JOB_DESCRIPTION}}\n\nResume:\n{{RESUME}}\n\nJSON response:"
	}
	prompt := strings.ReplaceAll(template, "{{JOB_DESCRIPTION}}", strings.TrimSpace(jobText))
	prompt = strings.ReplaceAll(prompt, "{{RESUME}}", strings.TrimSpace(resumeText))
	return prompt
}
