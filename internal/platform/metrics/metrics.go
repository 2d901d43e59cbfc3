package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"voteboard/vote/domain/entities"
	"voteboard/vote/ports"
)

// VoteMetrics implements the submission outcome observer on prometheus
// counters. Registration happens once in the constructor via promauto.
type VoteMetrics struct {
	VotesAccepted   *prometheus.CounterVec
	VotesRejected   *prometheus.CounterVec
	StorageFailures prometheus.Counter
}

func NewVoteMetrics(namespace string) *VoteMetrics {
	return &VoteMetrics{
		VotesAccepted: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "votes_accepted_total",
				Help:      "Total number of accepted vote submissions",
			},
			[]string{"choice"},
		),
		VotesRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "votes_rejected_total",
				Help:      "Total number of rejected vote submissions",
			},
			[]string{"reason"},
		),
		StorageFailures: promauto.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "vote_storage_failures_total",
				Help:      "Total number of vote writes that failed at the store",
			},
		),
	}
}

func (m *VoteMetrics) VoteAccepted(record entities.VoteRecord) {
	m.VotesAccepted.WithLabelValues(record.Choice).Inc()
}

func (m *VoteMetrics) VoteRejected(reason string) {
	m.VotesRejected.WithLabelValues(reason).Inc()
}

func (m *VoteMetrics) StorageFailed(error) {
	m.StorageFailures.Inc()
}

var _ ports.OutcomeObserver = (*VoteMetrics)(nil)
