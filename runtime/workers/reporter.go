package workers

import (
	"chat-relay/contract"
	"chat-relay/observability"
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/shirou/gopsutil/process"
)

// ReporterWorker logs relay counters together with the process footprint.
type ReporterWorker struct {
	log        *slog.Logger
	monitoring *observability.MonitoringManager
	interval   time.Duration
	activeFn   func() int
}

var _ contract.Worker = (*ReporterWorker)(nil)

// NewReporterWorker reports every interval. activeFn returns the current
// registry size.
func NewReporterWorker(log *slog.Logger, monitoring *observability.MonitoringManager, interval time.Duration, activeFn func() int) *ReporterWorker {
	return &ReporterWorker{log: log, monitoring: monitoring, interval: interval, activeFn: activeFn}
}

func (w *ReporterWorker) Run(ctx context.Context) error {
	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		w.log.Warn("Process stats unavailable", "error", err)
		p = nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.report(p)
			return nil
		case <-ticker.C:
			w.report(p)
		}
	}
}

func (w *ReporterWorker) report(p *process.Process) {
	stats := w.monitoring.GetLatest()
	attrs := []any{
		"uptime", stats.Uptime.String(),
		"registered", w.activeFn(),
		"accepted", stats.Accepted,
		"active", stats.Active,
		"joined", stats.Joined,
		"renamed", stats.Renamed,
		"left", stats.Left,
		"messages", stats.MessagesRelayed,
		"malformed", stats.MalformedLines,
		"rate_limited", stats.RateLimited,
		"broadcast_failures", stats.BroadcastFailures,
	}
	if p != nil {
		if rss, cpu, err := selfStats(p); err == nil {
			attrs = append(attrs, "rss_bytes", rss, "cpu_percent", cpu)
		} else {
			w.log.Debug("Failed to collect self stats", "error", err)
		}
	}
	w.log.Info("Relay status", attrs...)
}

func selfStats(p *process.Process) (uint64, float64, error) {
	memInfo, err := p.MemoryInfo()
	if err != nil {
		return 0, 0, err
	}
	cpuPercent, err := p.CPUPercent()
	if err != nil {
		return 0, 0, err
	}
	return memInfo.RSS, cpuPercent, nil
}
