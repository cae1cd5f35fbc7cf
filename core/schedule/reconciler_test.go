package schedule

import (
	"context"
	"testing"

	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
)

func TestReconciler_EnsureBackendSemester(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid id", func(t *testing.T) {
		rec := NewReconciler(NewStore(), newFakeGateway(), nopLogger{})
		if _, err := rec.EnsureBackendSemester(ctx, "Fall-maybe"); !errors.Is(err, ErrInvalidSemesterID) {
			t.Errorf("error = %v, want ErrInvalidSemesterID", err)
		}
	})

	t.Run("creates missing semester with inferred position", func(t *testing.T) {
		store := NewStore()
		store.ReconcileGenerated(2025, "Fall", 2) // Fall + Winter 2025
		gw := newFakeGateway()
		gw.semesters = []core.BackendSemester{{ID: "9", Year: 2025, Name: "Fall", Position: 3}}
		rec := NewReconciler(store, gw, nopLogger{})

		res, err := rec.EnsureBackendSemester(ctx, "2025-Winter")
		if err != nil {
			t.Fatalf("EnsureBackendSemester() error = %v", err)
		}
		if gw.semestersCalls != 1 || gw.createSemCalls != 1 {
			t.Fatalf("calls = (list %d, create %d), want (1, 1)", gw.semestersCalls, gw.createSemCalls)
		}
		// max remote position 3, so the new semester slots in after it
		if res.Position != 4 {
			t.Errorf("Position = %d, want 4", res.Position)
		}
		if res.BackendID == "" {
			t.Error("BackendID not assigned")
		}

		// the result is merged back into local state
		sem, _ := store.Semester("2025-Winter")
		if sem.BackendID != res.BackendID {
			t.Errorf("store BackendID = %q, want %q", sem.BackendID, res.BackendID)
		}
	})

	t.Run("idempotent within a session", func(t *testing.T) {
		store := NewStore()
		store.ReconcileGenerated(2025, "Fall", 1)
		gw := newFakeGateway()
		rec := NewReconciler(store, gw, nopLogger{})

		first, err := rec.EnsureBackendSemester(ctx, "2025-Fall")
		if err != nil {
			t.Fatalf("first call error = %v", err)
		}
		second, err := rec.EnsureBackendSemester(ctx, "2025-Fall")
		if err != nil {
			t.Fatalf("second call error = %v", err)
		}
		if second.BackendID != first.BackendID {
			t.Errorf("BackendID changed across calls: %q vs %q", first.BackendID, second.BackendID)
		}
		// second resolution is served from local state, no remote traffic
		if gw.semestersCalls != 1 || gw.createSemCalls != 1 {
			t.Errorf("calls = (list %d, create %d), want (1, 1)", gw.semestersCalls, gw.createSemCalls)
		}
	})

	t.Run("reuses existing remote semester", func(t *testing.T) {
		store := NewStore()
		store.ReconcileGenerated(2025, "Fall", 1)
		gw := newFakeGateway()
		gw.semesters = []core.BackendSemester{{ID: "77", Year: 2025, Name: "Fall", Position: 2}}
		rec := NewReconciler(store, gw, nopLogger{})

		res, err := rec.EnsureBackendSemester(ctx, "2025-Fall")
		if err != nil {
			t.Fatalf("EnsureBackendSemester() error = %v", err)
		}
		if gw.createSemCalls != 0 {
			t.Errorf("created a semester that already exists remotely")
		}
		if res.BackendID != "77" || res.Position != 2 {
			t.Errorf("res = %+v, want backend id 77 position 2", res)
		}
	})

	t.Run("lookup failure still creates", func(t *testing.T) {
		store := NewStore()
		store.ReconcileGenerated(2025, "Fall", 2)
		gw := newFakeGateway()
		gw.semestersErr = errors.New("boom")
		rec := NewReconciler(store, gw, nopLogger{})

		res, err := rec.EnsureBackendSemester(ctx, "2025-Winter")
		if err != nil {
			t.Fatalf("EnsureBackendSemester() error = %v", err)
		}
		if gw.createSemCalls != 1 {
			t.Fatalf("createSemCalls = %d, want 1", gw.createSemCalls)
		}
		// position falls back to the local year count
		if res.Position != 2 {
			t.Errorf("Position = %d, want 2", res.Position)
		}
	})

	t.Run("create failure propagates", func(t *testing.T) {
		store := NewStore()
		store.ReconcileGenerated(2025, "Fall", 1)
		gw := newFakeGateway()
		gw.createSemErr = errors.New("backend down")
		rec := NewReconciler(store, gw, nopLogger{})

		if _, err := rec.EnsureBackendSemester(ctx, "2025-Fall"); err == nil {
			t.Fatal("error = nil, want create failure")
		}
		// no backend id cached, a retry goes remote again
		if sem, _ := store.Semester("2025-Fall"); sem.BackendID != "" {
			t.Errorf("BackendID cached after failed create: %q", sem.BackendID)
		}
	})

	t.Run("missing remote id falls back to the local convention", func(t *testing.T) {
		store := NewStore()
		store.ReconcileGenerated(2025, "Fall", 1)
		gw := newFakeGateway()
		gw.semesters = []core.BackendSemester{{Year: 2025, Name: "Fall"}} // no id
		rec := NewReconciler(store, gw, nopLogger{})

		res, err := rec.EnsureBackendSemester(ctx, "2025-Fall")
		if err != nil {
			t.Fatalf("EnsureBackendSemester() error = %v", err)
		}
		if res.BackendID != "2025-fall" {
			t.Errorf("BackendID = %q, want 2025-fall", res.BackendID)
		}
	})
}
