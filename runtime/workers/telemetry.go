package workers

import (
	"context"
	"log/slog"
	"os"
	goruntime "runtime"
	"time"

	"game-relay/contract"

	"github.com/shirou/gopsutil/process"
)

var _ contract.Worker = (*TelemetryWorker)(nil)

// TelemetryWorker periodically logs relay occupancy plus process health
// (RSS, CPU, goroutines). It only reads the registry's stats snapshot:
// observability stays outside the core contract and never reaches into
// live room state.
type TelemetryWorker struct {
	log      *slog.Logger
	source   contract.StatsSource
	interval time.Duration
}

func NewTelemetryWorker(log *slog.Logger, source contract.StatsSource, interval time.Duration) *TelemetryWorker {
	return &TelemetryWorker{log: log, source: source, interval: interval}
}

func (w *TelemetryWorker) Run(ctx context.Context) error {
	w.log.Info("Starting relay telemetry worker")

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return err
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			stats := w.source.Stats()
			rssMb, cpu := selfStats(p)
			w.log.Info("Relay status",
				"rooms", stats.Rooms,
				"occupants", stats.Occupants,
				"sessions", stats.Sessions,
				"goroutines", goruntime.NumGoroutine(),
				"rss_mb", rssMb,
				"cpu_percent", cpu)
		}
	}
}

// selfStats collects RSS and CPU of the current process. Metrics are nice
// to have: a collection failure yields zeros, never an error.
func selfStats(p *process.Process) (rssMb uint64, cpu float64) {
	if mi, err := p.MemoryInfo(); err == nil && mi != nil {
		rssMb = mi.RSS / 1024 / 1024
	}
	if pct, err := p.CPUPercent(); err == nil {
		cpu = pct
	}
	return rssMb, cpu
}
