package ingestion

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
)

func TestReportBuilderTotals(t *testing.T) {
	b := NewReportBuilder()
	b.Add(Created(1, uuid.New()))
	b.Add(Updated(2, uuid.New()))
	b.Add(Skipped(3, "empty row"))
	b.Add(Errored(4, errors.New("code: This field is required.")))
	b.Add(Created(5, uuid.New()))

	report := b.Build()

	if report.Created != 2 || report.Imported != 2 || report.Updated != 1 || report.Skipped != 1 || report.Errored != 1 {
		t.Fatalf("unexpected totals: %+v", report)
	}
	if report.TotalRows != 5 || len(report.Outcomes) != 5 {
		t.Fatalf("expected 5 outcomes, got %d/%d", report.TotalRows, len(report.Outcomes))
	}
	want := []string{"Row 4: code: This field is required."}
	if diff := cmp.Diff(want, report.Errors); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}
	for i, o := range report.Outcomes {
		if o.Row != i+1 {
			t.Fatalf("outcomes out of order at %d: %+v", i, o)
		}
	}
}

func TestReportJSONShape(t *testing.T) {
	report := NewReportBuilder().Build()

	payload, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	for _, key := range []string{"message", "imported", "created", "updated", "skipped", "total_rows", "errors", "rows"} {
		if _, ok := decoded[key]; !ok {
			t.Fatalf("missing key %q in %s", key, payload)
		}
	}
	if errs, ok := decoded["errors"].([]any); !ok || len(errs) != 0 {
		t.Fatalf("errors should be an empty array, got %#v", decoded["errors"])
	}
}
