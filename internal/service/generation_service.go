package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"gstrone/internal/aggregate"
	"gstrone/internal/assemble"
	"gstrone/internal/config"
	"gstrone/internal/domain"
	"gstrone/internal/normalize"
	"gstrone/internal/port"
	"gstrone/internal/reconcile"
	"gstrone/internal/sequence"
)

// GenerateInput is the DTO for a document generation request.
type GenerateInput struct {
	GSTIN        string
	FilingPeriod string
	UploadIDs    []uuid.UUID
	// NotifyEmail, when set, receives a "documents ready" mail after a
	// successful run.
	NotifyEmail string
	NotifyName  string
}

// GenerateOutput is the result of one generation run. Insights are advisory
// oracle text and deliberately not part of the statutory document.
type GenerateOutput struct {
	FilingID uuid.UUID          `json:"filing_id"`
	Document *assemble.Document `json:"document"`
	Warnings []string           `json:"warnings"`
	Skipped  int                `json:"skipped"`
	Insights []string           `json:"insights,omitempty"`
}

// GenerationService runs the full pipeline from stored uploads to a persisted
// statutory document set.
type GenerationService interface {
	Generate(ctx context.Context, input GenerateInput) (*GenerateOutput, error)
	GetFiling(ctx context.Context, id uuid.UUID) (*domain.Filing, error)
	ListFilings(ctx context.Context, gstin, filingPeriod string) ([]domain.Filing, error)
}

type generationService struct {
	uploads port.UploadRepository
	filings port.FilingRepository
	oracle  port.ClassificationOracle
	email   port.EmailSender
	cfg     *config.Config
}

// NewGenerationService creates a new GenerationService implementation.
// oracle and email may be nil.
func NewGenerationService(
	uploads port.UploadRepository,
	filings port.FilingRepository,
	oracle port.ClassificationOracle,
	email port.EmailSender,
	cfg *config.Config,
) GenerationService {
	return &generationService{
		uploads: uploads,
		filings: filings,
		oracle:  oracle,
		email:   email,
		cfg:     cfg,
	}
}

// Generate is synchronous and single-pass. Each call owns its transaction
// set, aggregator, and output document; nothing is shared across concurrent
// runs.
func (s *generationService) Generate(ctx context.Context, input GenerateInput) (*GenerateOutput, error) {
	if err := assemble.ValidateHeader(input.GSTIN, input.FilingPeriod); err != nil {
		return nil, err
	}
	if len(input.UploadIDs) == 0 {
		return nil, fmt.Errorf("no uploads selected: %w", domain.ErrEmptyInput)
	}

	gen := &s.cfg.Generation
	normalizer := normalize.New(gen.SellerStateCode)

	var txns []domain.CanonicalTransaction
	var warnings []string
	skipped := 0

	for _, id := range input.UploadIDs {
		upload, err := s.uploads.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("upload %s: %w", id, err)
		}
		if upload.FileKind == domain.FileKindUnknown {
			return nil, fmt.Errorf("upload %s (%s): %w", id, upload.OriginalName, domain.ErrUnknownFileKind)
		}
		headers, records, err := s.uploads.GetRecords(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("records for upload %s: %w", id, err)
		}

		res := normalizer.Normalize(headers, records, upload.FileKind)
		txns = append(txns, res.Transactions...)
		warnings = append(warnings, res.Warnings...)
		if n := len(res.Skipped); n > 0 {
			warnings = append(warnings, fmt.Sprintf(
				"%s: %d rows excluded from aggregation (first: row %d, %s)",
				upload.OriginalName, n, res.Skipped[0].Index+1, res.Skipped[0].Reason))
			skipped += n
		}
	}

	if len(txns) == 0 {
		return nil, fmt.Errorf("no usable transactions in selected uploads: %w", domain.ErrEmptyInput)
	}

	seq := sequence.NewAnalyzer(gen.CancelledEnumerationCap).Analyze(docRows(txns))
	warnings = append(warnings, seq.Warnings...)

	agg := aggregate.New(s.oracle, s.cfg.Oracle.MinConfidence, gen.EcoGSTIN)
	tables := agg.Build(ctx, txns, seq.Ranges)
	warnings = append(warnings, tables.Warnings...)

	rollup := aggregate.BuildRollup(txns)

	tolerance, err := decimal.NewFromString(gen.ReconcileTolerance)
	if err != nil {
		tolerance = reconcile.DefaultTolerance
	}
	warnings = append(warnings, reconcile.New(tolerance).Validate(tables, rollup)...)

	doc, err := assemble.Assemble(input.GSTIN, input.FilingPeriod, gen.SchemaVersion, tables, rollup, warnings)
	if err != nil {
		return nil, err
	}

	out := &GenerateOutput{
		FilingID: uuid.New(),
		Document: doc,
		Warnings: doc.Warnings,
		Skipped:  skipped,
	}
	out.Insights = s.insights(ctx, doc, len(txns), skipped)

	if err := s.persist(ctx, input, out); err != nil {
		return nil, err
	}

	if s.email != nil && input.NotifyEmail != "" {
		if err := s.email.SendFilingReady(ctx, input.NotifyEmail, input.NotifyName, input.FilingPeriod, len(out.Warnings)); err != nil {
			log.Printf("service.generationService: notify email failed: %v", err)
		}
	}

	return out, nil
}

// docRows filters the rows that carry document identities for the sequencer.
func docRows(txns []domain.CanonicalTransaction) []domain.CanonicalTransaction {
	var rows []domain.CanonicalTransaction
	for i := range txns {
		if txns[i].FileKind == domain.FileKindTaxInvoice {
			rows = append(rows, txns[i])
		}
	}
	return rows
}

// insights asks the oracle for observations over the run. Failures and
// absence degrade to none; the generated document is never affected.
func (s *generationService) insights(ctx context.Context, doc *assemble.Document, txnCount, skipped int) []string {
	if s.oracle == nil {
		return nil
	}
	summary := map[string]any{
		"filing_period":      doc.GSTR1.FilingPeriod,
		"transaction_count":  txnCount,
		"skipped_rows":       skipped,
		"b2cs_buckets":       len(doc.GSTR1.B2CS),
		"b2cl_groups":        len(doc.GSTR1.B2CL),
		"doc_series":         len(doc.GSTR1.DocIss),
		"warning_count":      len(doc.Warnings),
		"eco_taxable_value":  doc.GSTR3B.Sec311II.TaxableValue.StringFixed(2),
		"interstate_taxable": doc.GSTR3B.Sec32.TaxableValue.StringFixed(2),
	}
	insights, err := s.oracle.Insights(ctx, summary)
	if err != nil {
		log.Printf("service.generationService: insights unavailable: %v", err)
		return nil
	}
	return insights
}

func (s *generationService) persist(ctx context.Context, input GenerateInput, out *GenerateOutput) error {
	docJSON, err := json.Marshal(out.Document)
	if err != nil {
		return fmt.Errorf("marshaling document: %w", err)
	}
	idsJSON, err := json.Marshal(input.UploadIDs)
	if err != nil {
		return fmt.Errorf("marshaling upload ids: %w", err)
	}
	warnJSON, err := json.Marshal(out.Warnings)
	if err != nil {
		return fmt.Errorf("marshaling warnings: %w", err)
	}

	filing := &domain.Filing{
		ID:           out.FilingID,
		GSTIN:        input.GSTIN,
		FilingPeriod: input.FilingPeriod,
		UploadIDs:    idsJSON,
		Document:     docJSON,
		Warnings:     warnJSON,
	}
	if err := s.filings.Save(ctx, filing); err != nil {
		return err
	}

	for _, id := range input.UploadIDs {
		if err := s.uploads.UpdateStatus(ctx, id, domain.UploadStatusProcessed, ""); err != nil {
			log.Printf("service.generationService: marking upload %s processed: %v", id, err)
		}
	}
	return nil
}

func (s *generationService) GetFiling(ctx context.Context, id uuid.UUID) (*domain.Filing, error) {
	return s.filings.GetByID(ctx, id)
}

func (s *generationService) ListFilings(ctx context.Context, gstin, filingPeriod string) ([]domain.Filing, error) {
	return s.filings.ListByPeriod(ctx, gstin, filingPeriod)
}
