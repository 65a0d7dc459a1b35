package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/ses/types"
	"github.com/kitengela/studio/internal/models"
	pkglogger "github.com/kitengela/studio/pkg/logger"
)

// approvalHTML is rendered with html/template so the user-chosen name is escaped.
var approvalHTML = template.Must(template.New("approval").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <p>Hello {{.Name}},</p>
    <p>Your Kitengela Studio account has been approved by an administrator.</p>
    <p><a href="{{.LoginURL}}">Sign in</a></p>
    <p style="color: #666; font-size: 12px;">This is an automated message. Please do not reply to this email.</p>
</body>
</html>
`))

// Notifier tells a user that their account has been approved
type Notifier interface {
	NotifyApproved(ctx context.Context, user *models.User) error
}

// sesSender is the part of the SES client used for sending
type sesSender interface {
	SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error)
}

// SESNotifier sends approval emails using AWS SES
type SESNotifier struct {
	client      sesSender
	fromAddress string
	loginURL    string
	logger      *slog.Logger
}

// NewSESNotifier creates a notifier backed by the default AWS credential chain
func NewSESNotifier(ctx context.Context, region, fromAddress, loginURL string, logger *slog.Logger) (*SESNotifier, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return &SESNotifier{
		client:      ses.NewFromConfig(cfg),
		fromAddress: fromAddress,
		loginURL:    loginURL,
		logger:      logger,
	}, nil
}

func (n *SESNotifier) NotifyApproved(ctx context.Context, user *models.User) error {
	textBody := fmt.Sprintf(`Hello %s,

Your Kitengela Studio account has been approved by an administrator.
You can now sign in at:

%s

This is an automated message. Please do not reply to this email.
`, user.FullName, n.loginURL)

	var htmlBody bytes.Buffer
	if err := approvalHTML.Execute(&htmlBody, struct{ Name, LoginURL string }{user.FullName, n.loginURL}); err != nil {
		return fmt.Errorf("render approval email: %w", err)
	}

	input := &ses.SendEmailInput{
		Source: aws.String(n.fromAddress),
		Destination: &types.Destination{
			ToAddresses: []string{user.Email},
		},
		Message: &types.Message{
			Subject: &types.Content{
				Data: aws.String("Your Kitengela Studio account is approved"),
			},
			Body: &types.Body{
				Html: &types.Content{Data: aws.String(htmlBody.String())},
				Text: &types.Content{Data: aws.String(textBody)},
			},
		},
	}

	result, err := n.client.SendEmail(ctx, input)
	if err != nil {
		n.logger.Error("failed to send approval email via SES",
			slog.String("email", pkglogger.SanitizedEmail(user.Email)),
			slog.Any("error", err))
		return fmt.Errorf("failed to send email: %w", err)
	}

	n.logger.Info("approval email sent",
		slog.String("user_id", user.ID),
		slog.String("message_id", aws.ToString(result.MessageId)))

	return nil
}

// LogNotifier only logs approvals; used when email is disabled
type LogNotifier struct {
	logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) NotifyApproved(ctx context.Context, user *models.User) error {
	n.logger.InfoContext(ctx, "account approved, email notifications disabled",
		slog.String("user_id", user.ID),
		slog.String("email", pkglogger.SanitizedEmail(user.Email)))
	return nil
}
