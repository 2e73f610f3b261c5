// Package metrics holds the Prometheus collectors for document operations.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Upload results.
const (
	ResultAccepted = "accepted"
	ResultRejected = "rejected"
	ResultFailed   = "failed"
)

// Domain counts document lifecycle events. A nil *Domain records nothing.
type Domain struct {
	uploads               *prometheus.CounterVec
	storageDeleteFailures *prometheus.CounterVec
	cascadeItems          *prometheus.CounterVec
	viewURLs              *prometheus.CounterVec
}

// New creates the collectors and registers them on reg.
func New(reg prometheus.Registerer) (*Domain, error) {
	d := &Domain{
		uploads: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_document_uploads_total",
				Help: "Document uploads by classification and result.",
			},
			[]string{"classification", "result"},
		),
		storageDeleteFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_storage_delete_failures_total",
				Help: "Storage objects that could not be removed and may be orphaned.",
			},
			[]string{"driver"},
		),
		cascadeItems: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_cascade_items_total",
				Help: "Documents processed while deleting a project, by outcome.",
			},
			[]string{"outcome"},
		),
		viewURLs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "portal_view_urls_issued_total",
				Help: "View URLs issued by storage driver.",
			},
			[]string{"driver"},
		),
	}
	for _, c := range []prometheus.Collector{d.uploads, d.storageDeleteFailures, d.cascadeItems, d.viewURLs} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return d, nil
}

func (d *Domain) Upload(classification, result string) {
	if d == nil {
		return
	}
	if classification == "" {
		classification = "unknown"
	}
	d.uploads.WithLabelValues(classification, result).Inc()
}

func (d *Domain) StorageDeleteFailed(driver string) {
	if d == nil {
		return
	}
	d.storageDeleteFailures.WithLabelValues(driver).Inc()
}

func (d *Domain) CascadeItem(outcome string) {
	if d == nil {
		return
	}
	d.cascadeItems.WithLabelValues(outcome).Inc()
}

func (d *Domain) ViewURLIssued(driver string) {
	if d == nil {
		return
	}
	d.viewURLs.WithLabelValues(driver).Inc()
}
