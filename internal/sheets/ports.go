// Package sheets defines outbound ports for exporting reports to a
// spreadsheet.
package sheets

import (
	"context"

	"budgetbook/internal/analytics"
	"budgetbook/internal/billing"
)

type (
	// AnnualReportWriter replaces the year's report sheet with payload.
	AnnualReportWriter interface {
		WriteAnnualReport(ctx context.Context, payload analytics.AnnualAnalysisPayload) (rangeRef string, err error)
	}

	// SubscriptionWriter replaces the subscription sheet with views.
	SubscriptionWriter interface {
		WriteSubscriptions(ctx context.Context, views []billing.SubscriptionView) (rangeRef string, err error)
	}

	ReportWriter interface {
		AnnualReportWriter
		SubscriptionWriter
	}
)
