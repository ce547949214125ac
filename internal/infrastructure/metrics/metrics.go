package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/Nathan-Yinka/autochek-API/internal/domain/port"
)

const namespace = "financing"

var _ port.MetricsRecorder = (*Recorder)(nil)

// Recorder counts business outcomes in Prometheus.
type Recorder struct {
	verdicts      *prometheus.CounterVec
	offers        *prometheus.CounterVec
	valuations    *prometheus.CounterVec
	notifyFailure *prometheus.CounterVec
}

// NewRecorder registers the counters with reg. A nil reg uses the default registerer.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &Recorder{
		verdicts: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "eligibility_verdicts_total",
			Help:      "Eligibility verdicts by status",
		}, []string{"status"}),
		offers: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "offer_transitions_total",
			Help:      "Offer status transitions by target status",
		}, []string{"status"}),
		valuations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "valuations_total",
			Help:      "Valuations served by source tier",
		}, []string{"tier"}),
		notifyFailure: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notification_failures_total",
			Help:      "Notifications that could not be delivered",
		}, []string{"kind"}),
	}
}

func (r *Recorder) EligibilityVerdict(status string) { r.verdicts.WithLabelValues(status).Inc() }

func (r *Recorder) OfferTransition(status string) { r.offers.WithLabelValues(status).Inc() }

func (r *Recorder) ValuationSource(tier string) { r.valuations.WithLabelValues(tier).Inc() }

func (r *Recorder) NotificationFailed(kind string) { r.notifyFailure.WithLabelValues(kind).Inc() }
