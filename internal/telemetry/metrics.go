// Package telemetry exposes the Prometheus collectors used across the
// service layer. Collectors are registered on the default registry so the
// /metrics endpoint can serve them with promhttp.Handler.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MutationsTotal counts completed create/update/delete operations per table.
	MutationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rms_mutations_total",
		Help: "Completed entity mutations by table and action.",
	}, []string{"table", "action"})

	// AccessDeniedTotal counts operations rejected by the access policy.
	AccessDeniedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rms_access_denied_total",
		Help: "Operations rejected by the access policy, by table.",
	}, []string{"table"})

	// AuditFailuresTotal counts audit records that could not be written.
	// Audit durability is best effort, so these are surfaced here and in logs
	// rather than failing the mutation.
	AuditFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rms_audit_failures_total",
		Help: "Audit trail writes that failed after a successful mutation.",
	})

	// UploadFilesTotal counts upload pipeline outcomes.
	UploadFilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rms_upload_files_total",
		Help: "Upload pipeline file outcomes (stored, rejected, failed).",
	}, []string{"outcome"})

	// EmailsSentTotal counts outbound notification emails.
	EmailsSentTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rms_emails_sent_total",
		Help: "Outbound emails by kind (upload_digest, welcome, credentials).",
	}, []string{"kind"})
)
