package jobs

import (
	"context"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"pingcrm-backend/internal/storage"
)

var recordsGauge = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "pingcrm",
	Subsystem: "storage",
	Name:      "records",
	Help:      "The number of stored records by entity and state",
}, []string{"entity", "state"})

// RecordCounter is implemented by storage.Storage.
type RecordCounter interface {
	CountRecords(ctx context.Context) (storage.Counts, error)
}

// RecordCounts refreshes the record gauges.
type RecordCounts struct {
	store RecordCounter
	spec  string
}

var _ Runner = (*RecordCounts)(nil)

// NewRecordCounts returns the job. An empty spec runs it every minute.
func NewRecordCounts(store RecordCounter, spec string) *RecordCounts {
	if spec == "" {
		spec = "@every 1m"
	}
	return &RecordCounts{store: store, spec: spec}
}

func (j *RecordCounts) Name() string { return "record-counts" }

func (j *RecordCounts) Spec() string { return j.spec }

func (j *RecordCounts) Func(ctx context.Context) func() {
	logger := log.FromContext(ctx).WithPrefix("jobs.record-counts")
	return func() {
		if err := j.Refresh(ctx); err != nil {
			logger.Error("count records", "err", err)
		}
	}
}

// Refresh counts the records and updates the gauges.
func (j *RecordCounts) Refresh(ctx context.Context) error {
	c, err := j.store.CountRecords(ctx)
	if err != nil {
		return err
	}
	recordsGauge.WithLabelValues("account", "active").Set(float64(c.Accounts))
	recordsGauge.WithLabelValues("user", "active").Set(float64(c.Users))
	recordsGauge.WithLabelValues("user", "trashed").Set(float64(c.TrashedUsers))
	recordsGauge.WithLabelValues("organization", "active").Set(float64(c.Organizations))
	recordsGauge.WithLabelValues("organization", "trashed").Set(float64(c.TrashedOrganizations))
	recordsGauge.WithLabelValues("contact", "active").Set(float64(c.Contacts))
	recordsGauge.WithLabelValues("contact", "trashed").Set(float64(c.TrashedContacts))
	return nil
}
