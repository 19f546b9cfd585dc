package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/gamehub/station-server-go/internal/metrics"
	"github.com/gamehub/station-server-go/internal/model"
)

type stationCounter interface {
	CountByStatus(ctx context.Context) (map[model.StationStatus]int, error)
}

type activeSessionCounter interface {
	CountActive(ctx context.Context) (int, error)
}

// StatsJob periodically refreshes the station and session gauges from the database.
type StatsJob struct {
	stations stationCounter
	sessions activeSessionCounter
	interval time.Duration
	done     chan struct{}
}

func NewStatsJob(stations stationCounter, sessions activeSessionCounter, interval time.Duration) *StatsJob {
	return &StatsJob{
		stations: stations,
		sessions: sessions,
		interval: interval,
		done:     make(chan struct{}),
	}
}

func (j *StatsJob) Start() {
	go j.run()
	log.Info().Dur("interval", j.interval).Msg("stats job started")
}

func (j *StatsJob) Stop() {
	close(j.done)
	log.Info().Msg("stats job stopped")
}

func (j *StatsJob) run() {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.refresh()

	for {
		select {
		case <-j.done:
			return
		case <-ticker.C:
			j.refresh()
		}
	}
}

func (j *StatsJob) refresh() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	counts, err := j.stations.CountByStatus(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to count stations")
	} else {
		for _, status := range []model.StationStatus{model.StationAvailable, model.StationInUse, model.StationMaintenance} {
			metrics.StationsByStatus.WithLabelValues(string(status)).Set(float64(counts[status]))
		}
	}

	active, err := j.sessions.CountActive(ctx)
	if err != nil {
		log.Error().Err(err).Msg("failed to count active sessions")
		return
	}
	metrics.ActiveSessions.Set(float64(active))
}
