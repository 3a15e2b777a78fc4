package consumer

import (
	"context"
	"encoding/json"

	"go-payops/internal/events"
	"go-payops/internal/receipt"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// ConsumeReceiptSignResults applies e-signature outcomes reported by the
// signature collaborator back onto receipts and their period.
func ConsumeReceiptSignResults(
	ctx context.Context,
	reader *kafkago.Reader,
	receiptService receipt.Service,
	logger *zap.Logger,
) {
	log := logger.Named("kafka.consumer.receipt_sign_result")
	log.Info("receipt sign result consumer started")

	for {
		msg, err := reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				log.Info("receipt sign result consumer stopped")
				return
			}
			log.Error("fetch sign result message failed", zap.Error(err))
			continue
		}

		var event events.ReceiptSignResultEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Error("decode sign result event failed", zap.Error(err))
			_ = reader.CommitMessages(ctx, msg)
			continue
		}

		if err := receiptService.ApplySignResult(ctx, event); err != nil {
			log.Error("apply sign result failed",
				zap.String("receipt_id", event.ReceiptID),
				zap.String("status", event.Status),
				zap.Error(err),
			)
			continue
		}

		if err := reader.CommitMessages(ctx, msg); err != nil {
			log.Error("commit sign result message failed", zap.Error(err))
			continue
		}

		log.Info("sign result applied",
			zap.String("receipt_id", event.ReceiptID),
			zap.String("status", event.Status),
		)
	}
}
