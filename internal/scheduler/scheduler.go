package scheduler

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/freitasmatheusrn/fleamarket-inventory/internal/email"
	"github.com/freitasmatheusrn/fleamarket-inventory/internal/storage"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// S3 DeleteObjects accepts at most 1000 keys per call.
const removeBatchSize = 1000

// StagingStore lists and removes staged import uploads.
type StagingStore interface {
	ListStaged(ctx context.Context, cutoff time.Time) ([]storage.StagedObject, error)
	Remove(ctx context.Context, keys ...string) error
}

type Scheduler struct {
	cron            *cron.Cron
	store           StagingStore
	maxAge          time.Duration
	logger          *zap.Logger
	email           email.Email
	alertRecipients []string
	now             func() time.Time
}

func NewScheduler(store StagingStore, maxAge time.Duration, logger *zap.Logger, e email.Email, alertRecipients []string) *Scheduler {
	return &Scheduler{
		cron:            cron.New(cron.WithSeconds()),
		store:           store,
		maxAge:          maxAge,
		logger:          logger,
		email:           e,
		alertRecipients: alertRecipients,
		now:             time.Now,
	}
}

// Start registers the staging cleanup job.
// cronExpr uses 6 fields: seconds, minutes, hours, day of month, month, day of week
// Example: "0 0 * * * *" runs at the top of every hour
func (s *Scheduler) Start(cronExpr string) error {
	_, err := s.cron.AddFunc(cronExpr, s.runStagingCleanupJob)
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started",
		zap.String("cron_expression", cronExpr),
		zap.Duration("max_age", s.maxAge),
	)

	return nil
}

func (s *Scheduler) Stop() context.Context {
	s.logger.Info("stopping scheduler")
	return s.cron.Stop()
}

// RunNow executes the cleanup job immediately (for manual triggers)
func (s *Scheduler) RunNow() {
	go s.runStagingCleanupJob()
}

// runStagingCleanupJob removes staged spreadsheets and archives that were
// never imported, or whose import died before cleaning up after itself.
func (s *Scheduler) runStagingCleanupJob() {
	s.logger.Info("starting staging cleanup job")
	startTime := s.now()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	cutoff := startTime.Add(-s.maxAge)
	stale, err := s.store.ListStaged(ctx, cutoff)
	if err != nil {
		s.notifyError("failed to list staged uploads", err)
		return
	}

	if len(stale) == 0 {
		s.logger.Info("no stale staged uploads")
		return
	}

	var removed []storage.StagedObject
	var failed int
	for start := 0; start < len(stale); start += removeBatchSize {
		end := min(start+removeBatchSize, len(stale))
		batch := stale[start:end]

		keys := make([]string, 0, len(batch))
		for _, obj := range batch {
			keys = append(keys, obj.Key)
		}

		if err := s.store.Remove(ctx, keys...); err != nil {
			failed += len(batch)
			s.notifyError("failed to remove staged uploads", err)
			continue
		}
		removed = append(removed, batch...)
	}

	s.logger.Info("staging cleanup job completed",
		zap.Int("stale", len(stale)),
		zap.Int("removed", len(removed)),
		zap.Int("failed", failed),
		zap.Duration("duration", s.now().Sub(startTime)),
	)

	if len(removed) > 0 {
		s.sendCleanupReport(removed, startTime)
	}
}

// sendCleanupReport mails the list of removed uploads to the alert recipients.
func (s *Scheduler) sendCleanupReport(removed []storage.StagedObject, at time.Time) {
	if len(s.alertRecipients) == 0 {
		s.logger.Debug("no alert recipients configured, skipping cleanup report",
			zap.Int("removed_count", len(removed)),
		)
		return
	}

	subject := fmt.Sprintf("取り込み用一時ファイルを%d件削除しました", len(removed))

	var text strings.Builder
	text.WriteString("以下の一時ファイルを削除しました:\n\n")
	for _, obj := range removed {
		fmt.Fprintf(&text, "%s (最終更新 %s)\n", obj.Key, obj.LastModified.Format("2006-01-02 15:04"))
	}

	var body strings.Builder
	body.WriteString(`<!DOCTYPE html>
<html>
<head>
	<style>
		body { font-family: Arial, sans-serif; }
		table { border-collapse: collapse; width: 100%; margin-top: 20px; }
		th, td { border: 1px solid #ddd; padding: 12px; text-align: left; }
		th { background-color: #4CAF50; color: white; }
		tr:nth-child(even) { background-color: #f2f2f2; }
	</style>
</head>
<body>
	<h2>一時ファイルの削除</h2>
	<table>
		<tr>
			<th>パス</th>
			<th>最終更新</th>
			<th>経過</th>
		</tr>`)
	for _, obj := range removed {
		body.WriteString("<tr>")
		body.WriteString("<td>" + html.EscapeString(obj.Key) + "</td>")
		body.WriteString("<td>" + obj.LastModified.Format("2006-01-02 15:04") + "</td>")
		body.WriteString("<td>" + at.Sub(obj.LastModified).Truncate(time.Minute).String() + "</td>")
		body.WriteString("</tr>")
	}
	body.WriteString(`
	</table>
</body>
</html>`)

	if err := s.email.Send(subject, text.String(), body.String(), s.alertRecipients); err != nil {
		s.logger.Error("failed to send cleanup report",
			zap.Error(err),
			zap.Int("removed_count", len(removed)),
		)
	}
}

// notifyError logs the error and sends an email notification to alert recipients
func (s *Scheduler) notifyError(context string, err error) {
	s.logger.Error(context, zap.Error(err))

	if len(s.alertRecipients) == 0 {
		return
	}

	subject := "⚠️ スケジューラエラー - " + context
	timestamp := s.now().Format("2006-01-02 15:04:05")

	textBody := fmt.Sprintf("内容: %s\nエラー: %v\n時刻: %s", context, err, timestamp)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
	<style>
		body { font-family: Arial, sans-serif; }
		.error-box { background-color: #ffebee; border-left: 4px solid #f44336; padding: 16px; margin: 20px 0; }
		.label { font-weight: bold; color: #333; }
		.value { color: #666; }
	</style>
</head>
<body>
	<h2 style="color: #f44336;">⚠️ スケジューラエラー</h2>
	<div class="error-box">
		<p><span class="label">内容:</span> <span class="value">%s</span></p>
		<p><span class="label">エラー:</span> <span class="value">%s</span></p>
		<p><span class="label">時刻:</span> <span class="value">%s</span></p>
	</div>
</body>
</html>`, html.EscapeString(context), html.EscapeString(err.Error()), timestamp)

	if sendErr := s.email.Send(subject, textBody, htmlBody, s.alertRecipients); sendErr != nil {
		s.logger.Error("failed to send error notification email",
			zap.Error(sendErr),
			zap.String("original_error_context", context),
		)
	}
}
