package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ComplaintsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leykarin_complaints_total",
			Help: "Total number of complaints created by company and category",
		},
		[]string{"company_id", "category", "status"},
	)

	WizardSteps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leykarin_wizard_steps_total",
			Help: "Wizard step outcomes",
		},
		[]string{"step", "outcome"},
	)

	AttachmentsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leykarin_attachments_rejected_total",
			Help: "Attachments rejected during validation",
		},
		[]string{"reason"},
	)

	NotificationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leykarin_notifications_total",
			Help: "Outbound email notifications by outcome",
		},
		[]string{"outcome"},
	)

	ForumMessagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leykarin_forum_messages_total",
			Help: "Forum messages by author kind",
		},
		[]string{"author"},
	)

	StatusChangesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "leykarin_status_changes_total",
			Help: "Complaint status transitions",
		},
		[]string{"status"},
	)
)
