package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"rclip/internal/domain"
)

// Recorder exports connection and child process events as Prometheus metrics.
type Recorder struct {
	accepted    *prometheus.CounterVec
	transient   *prometheus.CounterVec
	spawned     *prometheus.CounterVec
	spawnFailed *prometheus.CounterVec
	running     *prometheus.GaugeVec
	exited      *prometheus.CounterVec
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		accepted: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rclip_connections_accepted_total",
			Help: "Connections accepted, by direction.",
		}, []string{"direction"}),
		transient: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rclip_accept_transient_errors_total",
			Help: "Accept errors that were retried, by direction and errno.",
		}, []string{"direction", "errno"}),
		spawned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rclip_children_spawned_total",
			Help: "Clipboard commands started, by direction.",
		}, []string{"direction"}),
		spawnFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rclip_children_spawn_failures_total",
			Help: "Clipboard commands that could not be started, by direction.",
		}, []string{"direction"}),
		running: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "rclip_children_running",
			Help: "Clipboard commands currently running, by direction.",
		}, []string{"direction"}),
		exited: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "rclip_children_exited_total",
			Help: "Clipboard commands that exited, by direction and exit status.",
		}, []string{"direction", "status"}),
	}
	reg.MustRegister(r.accepted, r.transient, r.spawned, r.spawnFailed, r.running, r.exited)
	return r
}

func (r *Recorder) Accepted(dir domain.Direction) {
	r.accepted.WithLabelValues(dir.String()).Inc()
}

func (r *Recorder) TransientAcceptError(dir domain.Direction, errno string) {
	r.transient.WithLabelValues(dir.String(), errno).Inc()
}

func (r *Recorder) Spawned(dir domain.Direction) {
	r.spawned.WithLabelValues(dir.String()).Inc()
	r.running.WithLabelValues(dir.String()).Inc()
}

func (r *Recorder) SpawnFailed(dir domain.Direction) {
	r.spawnFailed.WithLabelValues(dir.String()).Inc()
}

// Exited records a finished command. A negative code means it was killed by
// a signal.
func (r *Recorder) Exited(dir domain.Direction, code int) {
	status := "signal"
	if code >= 0 {
		status = strconv.Itoa(code)
	}
	r.running.WithLabelValues(dir.String()).Dec()
	r.exited.WithLabelValues(dir.String(), status).Inc()
}

var _ domain.Recorder = (*Recorder)(nil)
