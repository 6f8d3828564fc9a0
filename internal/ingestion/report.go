package ingestion

import (
	"fmt"

	"github.com/google/uuid"
)

// OutcomeKind tags the result of one row.
type OutcomeKind string

const (
	OutcomeCreated OutcomeKind = "created"
	OutcomeUpdated OutcomeKind = "updated"
	OutcomeSkipped OutcomeKind = "skipped"
	OutcomeErrored OutcomeKind = "errored"
)

const reportMessage = "Import completed successfully"

// RowOutcome is the result of reconciling one ImportRow.
type RowOutcome struct {
	Row     int         `json:"row"`
	Kind    OutcomeKind `json:"kind"`
	ID      *uuid.UUID  `json:"id,omitempty"`
	Message string      `json:"message,omitempty"`
}

// Created builds a created outcome.
func Created(row int, id uuid.UUID) RowOutcome {
	return RowOutcome{Row: row, Kind: OutcomeCreated, ID: &id}
}

// Updated builds an updated outcome.
func Updated(row int, id uuid.UUID) RowOutcome {
	return RowOutcome{Row: row, Kind: OutcomeUpdated, ID: &id}
}

// Skipped builds a skipped outcome.
func Skipped(row int, reason string) RowOutcome {
	return RowOutcome{Row: row, Kind: OutcomeSkipped, Message: reason}
}

// Errored builds an errored outcome from a row-scoped error.
func Errored(row int, err error) RowOutcome {
	return RowOutcome{Row: row, Kind: OutcomeErrored, Message: err.Error()}
}

// Report is the response to an import. Imported mirrors Created for clients
// that read the older field name.
type Report struct {
	Message   string       `json:"message"`
	Imported  int          `json:"imported"`
	Created   int          `json:"created"`
	Updated   int          `json:"updated"`
	Skipped   int          `json:"skipped"`
	Errored   int          `json:"errored"`
	TotalRows int          `json:"total_rows"`
	Errors    []string     `json:"errors"`
	Outcomes  []RowOutcome `json:"rows"`
}

// ReportBuilder accumulates outcomes in row order.
type ReportBuilder struct {
	outcomes []RowOutcome
}

// NewReportBuilder creates an empty builder.
func NewReportBuilder() *ReportBuilder {
	return &ReportBuilder{outcomes: []RowOutcome{}}
}

// Add appends one outcome.
func (b *ReportBuilder) Add(outcome RowOutcome) {
	b.outcomes = append(b.outcomes, outcome)
}

// Build returns the aggregated report.
func (b *ReportBuilder) Build() Report {
	report := Report{
		Message:   reportMessage,
		TotalRows: len(b.outcomes),
		Errors:    []string{},
		Outcomes:  append([]RowOutcome(nil), b.outcomes...),
	}
	if report.Outcomes == nil {
		report.Outcomes = []RowOutcome{}
	}

	for _, o := range b.outcomes {
		switch o.Kind {
		case OutcomeCreated:
			report.Created++
		case OutcomeUpdated:
			report.Updated++
		case OutcomeSkipped:
			report.Skipped++
		case OutcomeErrored:
			report.Errored++
			report.Errors = append(report.Errors, fmt.Sprintf("Row %d: %s", o.Row, o.Message))
		}
	}
	report.Imported = report.Created
	return report
}
