package lake

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	domainClaims "github.com/pharmafield/expenseflow/internal/domain/claims"
)

const jsonContentType = "application/json"

// Writer materializes claim projections into a blob store.
type Writer struct {
	store  BlobStore
	logger *zap.Logger
}

// NewWriter creates a writer over the given store.
func NewWriter(store BlobStore, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{store: store, logger: logger}
}

func (w *Writer) putJSON(ctx context.Context, path string, doc interface{}) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := w.store.Put(ctx, path, data, jsonContentType); err != nil {
		return err
	}
	w.logger.Debug("lake document written", zap.String("path", path))
	return nil
}

// WriteBronze writes the raw claim document and, when a receipt is
// attached, its metadata document next to the receipt blob path.
func (w *Writer) WriteBronze(ctx context.Context, claim *domainClaims.Claim) error {
	if err := w.putJSON(ctx, BronzeClaimPath(claim.ID), BronzeClaim(claim)); err != nil {
		return err
	}
	if meta := BronzeReceiptMeta(claim); meta != nil {
		metaPath := BronzeReceiptPath(claim.ID, claim.Receipt.FileName) + ".meta.json"
		if err := w.putJSON(ctx, metaPath, meta); err != nil {
			return err
		}
	}
	return nil
}

// WriteReceiptBlob stores the raw receipt bytes in the bronze zone and
// returns the blob path.
func (w *Writer) WriteReceiptBlob(ctx context.Context, claim *domainClaims.Claim, data []byte) (string, error) {
	if !claim.HasReceipt() {
		return "", fmt.Errorf("claim %s has no receipt", claim.ID)
	}
	path := BronzeReceiptPath(claim.ID, claim.Receipt.FileName)
	if err := w.store.Put(ctx, path, data, claim.Receipt.MimeType); err != nil {
		return "", err
	}
	return path, nil
}

// WriteSilver writes the enriched claim document.
func (w *Writer) WriteSilver(ctx context.Context, claim *domainClaims.Claim, visit *domainClaims.Visit) error {
	return w.putJSON(ctx, SilverPath(claim.ID), SilverEnriched(claim, visit))
}

// WriteGold writes the current-state document.
func (w *Writer) WriteGold(ctx context.Context, claim *domainClaims.Claim, visit *domainClaims.Visit) error {
	return w.putJSON(ctx, GoldPath(claim.ID), GoldCurrent(claim, visit))
}

// WriteAll writes bronze, silver and gold projections for a claim.
func (w *Writer) WriteAll(ctx context.Context, claim *domainClaims.Claim, visit *domainClaims.Visit) error {
	if err := w.WriteBronze(ctx, claim); err != nil {
		return err
	}
	if err := w.WriteSilver(ctx, claim, visit); err != nil {
		return err
	}
	if err := w.WriteGold(ctx, claim, visit); err != nil {
		return err
	}
	w.logger.Info("lake projections updated",
		zap.String("claimId", claim.ID),
		zap.String("status", string(claim.Status)))
	return nil
}

// DeleteClaim removes every lake document for a claim, receipts included.
func (w *Writer) DeleteClaim(ctx context.Context, claimID string) error {
	prefixes := []string{
		fmt.Sprintf("raw/claims/%s/", claimID),
		fmt.Sprintf("raw/receipts/%s/", claimID),
	}
	for _, prefix := range prefixes {
		paths, err := w.store.List(ctx, prefix)
		if err != nil {
			return err
		}
		for _, path := range paths {
			if err := w.store.Delete(ctx, path); err != nil {
				return err
			}
		}
	}
	if err := w.store.Delete(ctx, SilverPath(claimID)); err != nil {
		return err
	}
	return w.store.Delete(ctx, GoldPath(claimID))
}
