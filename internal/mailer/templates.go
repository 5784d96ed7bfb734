package mailer

import (
	"fmt"
	"html"
	"net/url"
)

// VerificationEmail builds the email-verification message for a new account.
func VerificationEmail(to, name, frontendURL, token string) Message {
	link := fmt.Sprintf("%s/verify-email?token=%s", frontendURL, url.QueryEscape(token))
	return Message{
		To:      to,
		Subject: "Verify your email",
		Text:    fmt.Sprintf("Hi %s,\n\nPlease verify your email by opening:\n%s\n\nThis link expires in 24 hours.", name, link),
		HTML: fmt.Sprintf(`<p>Hi %s,</p><p>Please verify your email by clicking <a href="%s">this link</a>.</p><p>This link expires in 24 hours.</p>`,
			html.EscapeString(name), html.EscapeString(link)),
	}
}

// PasswordResetEmail builds the password-reset message.
func PasswordResetEmail(to, frontendURL, token string) Message {
	link := fmt.Sprintf("%s/reset-password?token=%s", frontendURL, url.QueryEscape(token))
	return Message{
		To:      to,
		Subject: "Password Reset",
		Text:    fmt.Sprintf("Reset your password by opening:\n%s\n\nThis link expires in 1 hour.", link),
		HTML: fmt.Sprintf(`<p>Click <a href="%s">here</a> to reset your password. This link expires in 1 hour.</p>`,
			html.EscapeString(link)),
	}
}
