package ses

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"gstrone/internal/port"
)

type sesSender struct {
	client      *sesv2.Client
	fromAddress string
	fromName    string
}

// NewSESSender creates a new SES-backed EmailSender.
func NewSESSender(region, fromAddress, fromName string) (port.EmailSender, error) {
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("loading AWS config for SES: %w", err)
	}
	client := sesv2.NewFromConfig(cfg)
	return &sesSender{
		client:      client,
		fromAddress: fromAddress,
		fromName:    fromName,
	}, nil
}

func (s *sesSender) SendFilingReady(ctx context.Context, toEmail, toName, filingPeriod string, warningCount int) error {
	subject := fmt.Sprintf("Your GSTR documents for %s are ready", filingPeriod)
	htmlBody := buildFilingReadyHTML(toName, filingPeriod, warningCount)

	warningLine := "No validation warnings were raised."
	if warningCount > 0 {
		warningLine = fmt.Sprintf("%d validation warnings need your review before filing.", warningCount)
	}
	textBody := fmt.Sprintf(
		"Hi %s,\n\nYour GSTR-1 and GSTR-3B documents for period %s have been generated.\n%s\n\nGSTROne",
		toName, filingPeriod, warningLine)

	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromAddress)

	_, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: &from,
		Destination: &types.Destination{
			ToAddresses: []string{toEmail},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: &subject},
				Body: &types.Body{
					Html: &types.Content{Data: &htmlBody},
					Text: &types.Content{Data: &textBody},
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("SES SendEmail: %w", err)
	}
	return nil
}

func buildFilingReadyHTML(name, filingPeriod string, warningCount int) string {
	warningLine := "No validation warnings were raised."
	if warningCount > 0 {
		warningLine = fmt.Sprintf("%d validation warnings need your review before filing.", warningCount)
	}
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"></head>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
  <h2 style="color: #333;">Your GSTR documents are ready</h2>
  <p>Hi %s,</p>
  <p>Your GSTR-1 and GSTR-3B documents for filing period <strong>%s</strong> have been generated.</p>
  <p>%s</p>
  <p>Log in to download the portal-ready JSON.</p>
  <hr style="border: none; border-top: 1px solid #eee; margin: 20px 0;">
  <p style="color: #999; font-size: 12px;">GSTROne - Marketplace GST Filing</p>
</body>
</html>`, name, filingPeriod, warningLine)
}
