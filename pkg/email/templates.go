package email

import (
	"bytes"
	"fmt"
	"html/template"
	texttemplate "text/template"

	"skillmatch-backend/internal/domain"
)

type emailTemplate struct {
	subject string
	body    *template.Template
}

const layoutHead = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0a66c2; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">`

const layoutFoot = `
        <div class="footer">
            <p>You are receiving this email because you applied for a job on SkillMatch.</p>
        </div>
    </div>
</body>
</html>`

var templates = map[domain.EmailTemplate]emailTemplate{
	domain.EmailApplicationAccepted: {
		subject: "Your application for {{.job_title}} was accepted",
		body: template.Must(template.New("application_accepted").Option("missingkey=zero").Parse(layoutHead + `
        <div class="header"><h1>Good news, {{.candidate_name}}!</h1></div>
        <div class="content">
            <p>{{.company}} has accepted your application for <strong>{{.job_title}}</strong>.</p>
            <p>The recruiter will reach out with next steps.</p>
        </div>` + layoutFoot)),
	},
	domain.EmailApplicationRejected: {
		subject: "Update on your application for {{.job_title}}",
		body: template.Must(template.New("application_rejected").Option("missingkey=zero").Parse(layoutHead + `
        <div class="header"><h1>Hello {{.candidate_name}}</h1></div>
        <div class="content">
            <p>Thank you for applying for <strong>{{.job_title}}</strong> at {{.company}}.</p>
            <p>After careful review the team decided not to move forward with your application.</p>
        </div>` + layoutFoot)),
	},
}

// Render returns the subject and HTML body for a message.
func Render(msg domain.EmailMessage) (string, string, error) {
	tpl, ok := templates[msg.Template]
	if !ok {
		return "", "", fmt.Errorf("unknown email template %q", msg.Template)
	}

	subject, err := texttemplate.New("subject").Option("missingkey=zero").Parse(tpl.subject)
	if err != nil {
		return "", "", fmt.Errorf("failed to parse subject template: %w", err)
	}
	var subj bytes.Buffer
	if err := subject.Execute(&subj, msg.Data); err != nil {
		return "", "", fmt.Errorf("failed to execute subject template: %w", err)
	}

	var body bytes.Buffer
	if err := tpl.body.Execute(&body, msg.Data); err != nil {
		return "", "", fmt.Errorf("failed to execute email template: %w", err)
	}
	return subj.String(), body.String(), nil
}
