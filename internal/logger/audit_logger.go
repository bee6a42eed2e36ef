// Package logger provides audit logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// AuditLogger provides a dedicated audit trail for ledger mutations.
type AuditLogger struct {
	*logrus.Entry
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger(baseLogger *logrus.Logger) *AuditLogger {
	return &AuditLogger{
		Entry: baseLogger.WithField("component", "audit"),
	}
}

// LogEventAppended logs a settled event entering the ledger.
func (al *AuditLogger) LogEventAppended(eventID, mode string, recommended int, stake, profitLoss float64, timestamp time.Time) {
	al.WithFields(logrus.Fields{
		"event_id":    eventID,
		"mode":        mode,
		"recommended": recommended,
		"stake":       stake,
		"profit_loss": profitLoss,
		"timestamp":   timestamp.Unix(),
	}).Info("Event appended")
}

// LogEventUndone logs removal of the most recent ledger record.
func (al *AuditLogger) LogEventUndone(eventID string, remaining int) {
	al.WithFields(logrus.Fields{
		"event_id":  eventID,
		"remaining": remaining,
	}).Warn("Last event undone")
}

// LogRebuild logs a full derived-state rebuild.
func (al *AuditLogger) LogRebuild(records int, trigger string, duration time.Duration) {
	al.WithFields(logrus.Fields{
		"records":  records,
		"trigger":  trigger,
		"duration": duration.String(),
	}).Info("Derived state rebuilt")
}

// LogDriftDetected logs a drift detection with its score snapshot.
func (al *AuditLogger) LogDriftDetected(driftScore, baselineAccuracy, currentAccuracy float64) {
	al.WithFields(logrus.Fields{
		"drift_score":       driftScore,
		"baseline_accuracy": baselineAccuracy,
		"current_accuracy":  currentAccuracy,
	}).Warn("Drift detected")
}
