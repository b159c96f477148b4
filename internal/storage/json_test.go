package storage

import (
	"os"
	"path/filepath"
	"testing"

	"livecheck/internal/config"
	"livecheck/internal/domain"
)

func TestJSONStorage_SaveAndLoad(t *testing.T) {
	cfg := config.New()
	cfg.ReportPath = filepath.Join(t.TempDir(), "nested", "report.json")
	store := NewJSONStorage(cfg)

	report := &domain.RunReport{
		RunID:     "3b0e4a8e-8a53-4c1e-9d64-5f6a1c7f0b2a",
		TargetURL: "https://www.swifttranslator.com/",
		Sessions:  1,
		Results: []domain.Result{
			{CaseID: "Pos_Fun_001", Passed: true, Actual: "මම බොඩිමට යනවා", State: domain.StatePassed},
			{CaseID: "Neg_Fun_001", FailureKind: domain.FailureNoUpdate, State: domain.StateTimedOut},
		},
	}
	report.Tally()

	if err := store.Save(report); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	loaded, err := store.Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if loaded.RunID != report.RunID || len(loaded.Results) != 2 {
		t.Fatalf("unexpected report: %+v", loaded)
	}
	if loaded.Results[0].Actual != "මම බොඩිමට යනවා" {
		t.Errorf("sinhala output not preserved: %q", loaded.Results[0].Actual)
	}
	if loaded.FailuresByKind[domain.FailureNoUpdate] != 1 {
		t.Errorf("expected one no-update failure, got %v", loaded.FailuresByKind)
	}
}

func TestJSONStorage_Load(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		cfg := config.New()
		cfg.ReportPath = filepath.Join(t.TempDir(), "absent.json")
		if _, err := NewJSONStorage(cfg).Load(); err == nil {
			t.Error("expected error for missing report")
		}
	})

	t.Run("corrupt file", func(t *testing.T) {
		cfg := config.New()
		cfg.ReportPath = filepath.Join(t.TempDir(), "report.json")
		if err := os.WriteFile(cfg.ReportPath, []byte("{not json"), 0644); err != nil {
			t.Fatalf("failed to write file: %v", err)
		}
		if _, err := NewJSONStorage(cfg).Load(); err == nil {
			t.Error("expected parse error")
		}
	})
}
