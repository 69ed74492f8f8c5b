package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/tempest-stays/tempest/internal/analytics"
	"github.com/tempest-stays/tempest/internal/analytics/export"
	jobmetrics "github.com/tempest-stays/tempest/internal/jobs"
	"github.com/tempest-stays/tempest/internal/shared"
)

const exportLockTTL = 10 * time.Minute

var defaultJobMetrics = jobmetrics.NewMetrics(nil)

// Reporter computes a host's dashboard report.
type Reporter interface {
	GetHostDashboard(ctx context.Context, hostID uuid.UUID, rangeName string) (analytics.Report, error)
}

// HostLister enumerates hosts eligible for scheduled exports.
type HostLister interface {
	ListActiveHosts(ctx context.Context) ([]uuid.UUID, error)
}

// DashboardExportJob writes dashboard CSV files under Dir/<host_id>/.
type DashboardExportJob struct {
	Reports Reporter
	Hosts   HostLister
	Redis   *redis.Client
	Dir     string
	Logger  *slog.Logger
	Metrics *jobmetrics.Metrics
}

// NewDashboardExportJob wires dependencies for the export handler. redisClient
// may be nil, in which case concurrent runs are not serialised.
func NewDashboardExportJob(reports Reporter, hosts HostLister, redisClient *redis.Client, dir string, logger *slog.Logger, metrics *jobmetrics.Metrics) *DashboardExportJob {
	return &DashboardExportJob{
		Reports: reports,
		Hosts:   hosts,
		Redis:   redisClient,
		Dir:     dir,
		Logger:  logger,
		Metrics: metrics,
	}
}

// Handle processes TaskDashboardExport tasks.
func (j *DashboardExportJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Reports == nil {
		return errors.New("dashboard export: handler not configured")
	}
	payload, err := decodeDashboardExport(t)
	if err != nil {
		j.logger().Warn("discarding export task", slog.Any("error", err))
		return fmt.Errorf("dashboard export: %v: %w", err, asynq.SkipRetry)
	}
	host, single, err := payload.Host()
	if err != nil {
		return fmt.Errorf("dashboard export: %v: %w", err, asynq.SkipRetry)
	}
	rangeName := payload.RangeName()

	tracker := j.metrics().Track(TaskDashboardExport)
	var resultErr error
	defer func() {
		resultErr = tracker.End(resultErr)
	}()

	logger := j.logger().With(slog.String("range", string(rangeName)))
	started := time.Now()

	hosts := []uuid.UUID{host}
	if !single {
		if j.Hosts == nil {
			resultErr = errors.New("dashboard export: host lister not configured")
			return resultErr
		}
		hosts, err = j.Hosts.ListActiveHosts(ctx)
		if err != nil {
			resultErr = err
			logger.Error("list active hosts", slog.Any("error", err))
			return resultErr
		}
	}

	written := 0
	for _, id := range hosts {
		path, err := j.exportHost(ctx, id, rangeName)
		if errors.Is(err, shared.ErrExportInProgress) {
			logger.Info("export already running", slog.String("host_id", id.String()))
			continue
		}
		if err != nil {
			resultErr = err
			logger.Error("export host dashboard", slog.String("host_id", id.String()), slog.Any("error", err))
			return resultErr
		}
		logger.Debug("wrote dashboard export", slog.String("host_id", id.String()), slog.String("path", path))
		written++
	}
	j.metrics().AddExports(string(rangeName), written)

	logger.Info("completed dashboard export", slog.Int("hosts", len(hosts)), slog.Int("files", written), slog.Duration("duration", time.Since(started)))
	return resultErr
}

func (j *DashboardExportJob) exportHost(ctx context.Context, hostID uuid.UUID, rangeName analytics.RangeName) (string, error) {
	if j.Redis != nil {
		release, err := shared.AcquireLock(ctx, j.Redis, shared.ExportLockKey(hostID, string(rangeName)), exportLockTTL)
		if err != nil {
			return "", err
		}
		defer release(context.WithoutCancel(ctx))
	}

	hostCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	report, err := j.Reports.GetHostDashboard(hostCtx, hostID, string(rangeName))
	if err != nil {
		return "", err
	}
	return j.writeReport(hostID, report)
}

// writeReport renames a temp file into place so readers never see a partial CSV.
func (j *DashboardExportJob) writeReport(hostID uuid.UUID, report analytics.Report) (string, error) {
	dir := filepath.Join(j.Dir, hostID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("dashboard export: mkdir: %w", err)
	}
	name := export.FileName(report)
	tmp, err := os.CreateTemp(dir, name+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("dashboard export: create: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := export.WriteDashboardCSV(tmp, report); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("dashboard export: write: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("dashboard export: close: %w", err)
	}
	path := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), path); err != nil {
		return "", fmt.Errorf("dashboard export: rename: %w", err)
	}
	return path, nil
}

func (j *DashboardExportJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger.With(slog.String("job", TaskDashboardExport))
	}
	return slog.Default().With(slog.String("job", TaskDashboardExport))
}

func (j *DashboardExportJob) metrics() *jobmetrics.Metrics {
	if j.Metrics != nil {
		return j.Metrics
	}
	return defaultJobMetrics
}
