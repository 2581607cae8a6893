package memory

import (
	"go.uber.org/zap"

	"github.com/JoeShih716/go-account-statement/internal/app/core/domain"
)

// logReplay 記錄 seed 重放結果，被拒絕的 seed 以 Warn 記錄
func logReplay(logger *zap.Logger, engine string, outcomes []domain.Outcome) {
	if logger == nil {
		return
	}
	rejected := 0
	for i, o := range outcomes {
		if o.Accepted() {
			continue
		}
		rejected++
		logger.Warn("seed transaction rejected",
			zap.String("engine", engine),
			zap.Int("index", i),
			zap.Stringer("kind", o.Kind),
			zap.Stringer("status", o.Status),
			zap.String("message", o.Message),
		)
	}
	logger.Info("ledger replayed",
		zap.String("engine", engine),
		zap.Int("seeds", len(outcomes)),
		zap.Int("rejected", rejected),
	)
}
