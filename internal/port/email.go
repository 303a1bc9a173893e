package port

import "context"

// EmailSender defines the contract for sending notification emails.
type EmailSender interface {
	// SendFilingReady notifies the seller that a generated document set is
	// ready for download, including any validation warnings count.
	SendFilingReady(ctx context.Context, toEmail, toName, filingPeriod string, warningCount int) error
}
