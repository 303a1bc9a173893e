package noop

import (
	"context"
	"log"

	"gstrone/internal/port"
)

type noopSender struct{}

// NewNoopSender creates a no-op EmailSender that logs instead of sending.
func NewNoopSender() port.EmailSender {
	return &noopSender{}
}

func (s *noopSender) SendFilingReady(_ context.Context, toEmail, toName, filingPeriod string, warningCount int) error {
	log.Printf("[NOOP EMAIL] Filing ready for %s (%s): period %s, %d warnings", toName, toEmail, filingPeriod, warningCount)
	return nil
}
