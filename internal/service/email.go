package service

import (
	"fmt"

	"github.com/edupulse/engage-api/internal/models"
	"github.com/edupulse/engage-api/pkg/mailer"
)

func emailShell(title, content string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<body style="font-family: Helvetica, Arial, sans-serif; background-color: #f6f6f6; margin: 0; padding: 0;">
	<div style="max-width: 600px; margin: 40px auto; background: #ffffff; border-radius: 8px; overflow: hidden;">
		<div style="background-color: #1d3557; padding: 24px; text-align: center;">
			<h1 style="color: #ffffff; margin: 0; font-size: 22px;">EduPulse</h1>
		</div>
		<div style="padding: 32px; color: #1d3557; line-height: 1.6;">
			<h2 style="margin-top: 0;">%s</h2>
			%s
		</div>
	</div>
</body>
</html>`, title, content)
}

// moderationEmail builds the templated message sent after an account
// approval or rejection.
func moderationEmail(student models.Student, approved bool, reason string) mailer.Email {
	if approved {
		content := fmt.Sprintf(`
			<p>Dear %s,</p>
			<p>Your account has been approved. You can sign in and start learning right away.</p>`,
			student.Name)
		return mailer.Email{
			To:      student.Email,
			Subject: "Your EduPulse account has been approved",
			HTML:    emailShell("Welcome aboard!", content),
			Text:    fmt.Sprintf("Dear %s, your account has been approved.", student.Name),
		}
	}

	content := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>Unfortunately your registration was not approved.</p>`, student.Name)
	if reason != "" {
		content += fmt.Sprintf(`<p><strong>Reason:</strong> %s</p>`, reason)
	}
	return mailer.Email{
		To:      student.Email,
		Subject: "Your EduPulse registration was not approved",
		HTML:    emailShell("Registration update", content),
		Text:    fmt.Sprintf("Dear %s, your registration was not approved.", student.Name),
	}
}
