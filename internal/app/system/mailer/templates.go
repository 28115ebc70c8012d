// internal/app/system/mailer/templates.go
package mailer

import (
	"bytes"
	"fmt"
	"html/template"
)

// RegistrationEmailData is sent to the admin address when someone registers.
type RegistrationEmailData struct {
	SiteName string
	Email    string
}

// ApprovalEmailData is sent to a user once an admin approves them.
type ApprovalEmailData struct {
	SiteName string
	Email    string
	PIN      string
}

// RejectionEmailData is sent to a user whose registration was declined.
type RejectionEmailData struct {
	SiteName string
	Email    string
}

// BuildRegistrationEmail notifies the admin of a pending registration. To is set by the caller.
func BuildRegistrationEmail(data RegistrationEmailData) Email {
	var text bytes.Buffer
	fmt.Fprintf(&text, "A new member registered on %s.\n\n", data.SiteName)
	fmt.Fprintf(&text, "Email: %s\n\n", data.Email)
	text.WriteString("Sign in to the admin page to approve or reject the request.\n")

	return Email{
		Subject:  fmt.Sprintf("New %s registration: %s", data.SiteName, data.Email),
		TextBody: text.String(),
		HTMLBody: render(registrationTmpl, data),
	}
}

// BuildApprovalEmail tells the user they were approved and which PIN to use.
func BuildApprovalEmail(data ApprovalEmailData) Email {
	var text bytes.Buffer
	fmt.Fprintf(&text, "Your %s account has been approved.\n\n", data.SiteName)
	fmt.Fprintf(&text, "Sign in with your email (%s) and this PIN: %s\n\n", data.Email, data.PIN)
	text.WriteString("Keep this PIN private.\n")

	return Email{
		To:       data.Email,
		Subject:  fmt.Sprintf("Your %s account is approved", data.SiteName),
		TextBody: text.String(),
		HTMLBody: render(approvalTmpl, data),
	}
}

// BuildRejectionEmail tells the user their registration was declined.
func BuildRejectionEmail(data RejectionEmailData) Email {
	return Email{
		To:      data.Email,
		Subject: fmt.Sprintf("Your %s registration", data.SiteName),
		TextBody: fmt.Sprintf("Your registration request on %s was not approved.\n\n"+
			"If you think this is a mistake, please contact the church office.\n", data.SiteName),
	}
}

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return ""
	}
	return buf.String()
}

var registrationTmpl = template.Must(template.New("registration").Parse(layoutOpen + `
              <p style="margin: 0 0 16px; font-size: 16px; color: #374151;">A new member registered and is waiting for approval:</p>
              <p style="margin: 0 0 24px; font-size: 18px; font-weight: 600; color: #1f2937;">{{.Email}}</p>
              <p style="margin: 0; font-size: 14px; color: #6b7280;">Sign in to the admin page to approve or reject the request.</p>
` + layoutClose))

var approvalTmpl = template.Must(template.New("approval").Parse(layoutOpen + `
              <p style="margin: 0 0 24px; font-size: 16px; color: #374151;">Your account ({{.Email}}) has been approved. Sign in with this PIN:</p>
              <div style="background-color: #f3f4f6; border-radius: 8px; padding: 24px; text-align: center; margin-bottom: 24px;">
                <span style="font-size: 32px; font-weight: 700; letter-spacing: 8px; color: #1f2937; font-family: 'Courier New', monospace;">{{.PIN}}</span>
              </div>
              <p style="margin: 0; font-size: 13px; color: #9ca3af; text-align: center;">Keep this PIN private.</p>
` + layoutClose))

const layoutOpen = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="margin: 0; padding: 0; font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Arial, sans-serif; background-color: #f3f4f6;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f3f4f6;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 480px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="padding: 32px 32px 24px; text-align: center; border-bottom: 1px solid #e5e7eb;">
              <h1 style="margin: 0; font-size: 24px; font-weight: 600; color: #4f46e5;">{{.SiteName}}</h1>
            </td>
          </tr>
          <tr>
            <td style="padding: 32px;">`

const layoutClose = `            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`
