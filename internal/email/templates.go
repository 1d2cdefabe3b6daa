package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templateFS embed.FS

func renderFollowUpEmail(emailNumber int, data FollowUpEmailData) (string, error) {
	if emailNumber < 1 || emailNumber > SequenceLength {
		return "", fmt.Errorf("follow-up email number out of range: %d", emailNumber)
	}
	return renderEmailTemplate(fmt.Sprintf("followup_%d.html", emailNumber), data)
}

func renderEmailTemplate(name string, data any) (string, error) {
	templates := []string{"templates/base.html", "templates/" + name}
	tmpl, err := template.New("base.html").ParseFS(templateFS, templates...)
	if err != nil {
		return "", fmt.Errorf("parse email template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "email", data); err != nil {
		return "", fmt.Errorf("execute email template %s: %w", name, err)
	}
	return buf.String(), nil
}
