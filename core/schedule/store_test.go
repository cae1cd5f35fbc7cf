package schedule

import (
	"testing"

	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ratiba/core"
)

func TestStore_ReconcileGenerated(t *testing.T) {
	store := NewStore()
	store.ReconcileGenerated(2025, "Fall", 4)

	// populate one semester, then shift the window so it stays inside
	if err := store.appendClass("2026-Spring", Class{ID: "x", Name: "Databases", Credits: 3}, false); err != nil {
		t.Fatalf("appendClass() error = %v", err)
	}
	store.ReconcileGenerated(2026, "Spring", 4)

	semesters := store.Semesters()
	if len(semesters) != 4 {
		t.Fatalf("got %d semesters, want 4", len(semesters))
	}
	if semesters[0].ID != "2026-Spring" {
		t.Errorf("first semester = %q, want 2026-Spring", semesters[0].ID)
	}
	if len(semesters[0].Classes) != 1 {
		t.Errorf("2026-Spring lost its classes across reconciliation: %d", len(semesters[0].Classes))
	}

	// shrink the window below the populated semester: it gets dropped
	store.ReconcileGenerated(2030, "Fall", 2)
	if _, ok := store.Semester("2026-Spring"); ok {
		t.Error("2026-Spring survived a window it is not part of")
	}
}

func TestStore_MergeBackendSemesters(t *testing.T) {
	store := NewStore()
	store.ReconcileGenerated(2025, "Fall", 2)
	_ = store.appendClass("2025-Fall", Class{ID: "local", Name: "Stale"}, false)
	store.MarkGenerated("2025-Winter")

	store.MergeBackendSemesters([]core.BackendSemester{
		{
			ID: "42", Year: 2025, Name: "Fall", Position: 0,
			Classes: []core.BackendClass{
				{ID: "7", Name: "Databases", Credits: 0, Professor: "Maxwell", RateMyProfessorURL: "https://www.ratemyprofessors.com/professor/1"},
			},
		},
		{ID: "43", Year: 2027, Name: "Summer", Position: 5},
	})

	fall, ok := store.Semester("2025-Fall")
	if !ok {
		t.Fatal("2025-Fall missing after merge")
	}
	if fall.BackendID != "42" {
		t.Errorf("BackendID = %q, want 42", fall.BackendID)
	}
	if len(fall.Classes) != 1 || fall.Classes[0].Name != "Databases" {
		t.Fatalf("classes not replaced by backend listing: %+v", fall.Classes)
	}
	if fall.Classes[0].Credits != 3 {
		t.Errorf("zero credits not defaulted: %d", fall.Classes[0].Credits)
	}

	// the backend listing fully determines the generated set
	if !store.IsGenerated("2025-Fall") {
		t.Error("semester with remote classes not marked generated")
	}
	if store.IsGenerated("2025-Winter") {
		t.Error("stale generated flag survived an authoritative reload")
	}

	// a semester unknown locally is appended
	if _, ok := store.Semester("2027-Summer"); !ok {
		t.Error("backend-only semester not added")
	}

	// an empty listing changes nothing
	store.MergeBackendSemesters(nil)
	if !store.IsGenerated("2025-Fall") {
		t.Error("empty reload cleared the generated set")
	}
}

func TestStore_appendClassCap(t *testing.T) {
	store := NewStore()
	store.ReconcileGenerated(2025, "Fall", 1)

	for i := 0; i < MaxGeneratedClasses+2; i++ {
		if err := store.appendClass("2025-Fall", Class{ID: core.ID(rune('a' + i)), Name: "C"}, true); err != nil {
			t.Fatalf("appendClass() error = %v", err)
		}
	}
	sem, _ := store.Semester("2025-Fall")
	if len(sem.Classes) != MaxGeneratedClasses {
		t.Errorf("capped append kept %d classes, want %d", len(sem.Classes), MaxGeneratedClasses)
	}

	// manual adds are unbounded
	_ = store.appendClass("2025-Fall", Class{ID: "manual", Name: "Extra"}, false)
	sem, _ = store.Semester("2025-Fall")
	if len(sem.Classes) != MaxGeneratedClasses+1 {
		t.Errorf("uncapped append blocked: %d classes", len(sem.Classes))
	}

	if err := store.appendClass("1999-Fall", Class{}, false); err != ErrSemesterNotFound {
		t.Errorf("append to unknown semester error = %v, want ErrSemesterNotFound", err)
	}
}

func TestStore_ProfessorDirectory(t *testing.T) {
	store := NewStore()
	store.ReconcileGenerated(2025, "Fall", 3)
	_ = store.appendClass("2025-Fall", Class{ID: "1", Name: "Databases", Credits: 3, Professor: "Maxwell", RMPLink: "https://www.ratemyprofessors.com/professor/1"}, false)
	_ = store.appendClass("2025-Winter", Class{ID: "2", Name: "Compilers", Credits: 4, Professor: "Maxwell", RMPLink: "https://www.ratemyprofessors.com/professor/1"}, false)
	_ = store.appendClass("2025-Winter", Class{ID: "3", Name: "Networks", Credits: 3, Professor: "Shaw"}, false)
	_ = store.appendClass("2026-Spring", Class{ID: "4", Name: "Capstone", Credits: 3, Professor: ProfessorTBD}, false)
	_ = store.appendClass("2026-Spring", Class{ID: "5", Name: "Mystery", Credits: 3}, false)

	dir := store.ProfessorDirectory()
	if len(dir) != 3 {
		t.Fatalf("got %d entries, want 3 (unnamed professors excluded, TBD kept)", len(dir))
	}
	if dir[0].Professor != "Maxwell" || len(dir[0].Courses) != 2 {
		t.Fatalf("first entry = %q with %d courses, want Maxwell with 2", dir[0].Professor, len(dir[0].Courses))
	}
	if dir[0].Courses[1].Semester != "Winter 2025" {
		t.Errorf("course label = %q, want \"Winter 2025\"", dir[0].Courses[1].Semester)
	}
	if dir[1].Professor != "Shaw" || dir[2].Professor != ProfessorTBD {
		t.Errorf("ordering not first-appearance: %q, %q", dir[1].Professor, dir[2].Professor)
	}
}

func TestStore_PreviousClassesAndGPA(t *testing.T) {
	store := NewStore()
	store.SetPreviousClasses([]core.PreviousClass{
		{ID: "1", Course: "Calc I", Grade: "A"},
		{ID: "2", Course: "Intro CS", Grade: "B+"},
		{ID: "3", Course: "Seminar", Grade: "Pass"},
	})

	avg, graded, ok := store.AverageGPA()
	if !ok || graded != 2 {
		t.Fatalf("AverageGPA() = (%v, %d, %v), want graded=2", avg, graded, ok)
	}
	if avg != 3.65 {
		t.Errorf("avg = %v, want 3.65", avg)
	}

	store.PrependPreviousClass(core.PreviousClass{ID: "4", Course: "Physics", Grade: "F"})
	if recs := store.PreviousClasses(); recs[0].ID != "4" {
		t.Errorf("newest record not listed first: %q", recs[0].ID)
	}

	store.RemovePreviousClass("4")
	store.RemovePreviousClass("2")
	if avg, _, _ = store.AverageGPA(); avg != 4.0 {
		t.Errorf("avg after removals = %v, want 4.0", avg)
	}

	store.SetPreviousClasses(nil)
	if _, _, ok := store.AverageGPA(); ok {
		t.Error("AverageGPA() ok with no records")
	}
}

func TestStore_EligibleForGeneration(t *testing.T) {
	store := NewStore()
	store.ReconcileGenerated(2025, "Fall", 3)
	_ = store.appendClass("2025-Fall", Class{ID: "1", Name: "Databases"}, false)
	store.MarkGenerated("2025-Winter")

	got := store.EligibleForGeneration()
	if len(got) != 1 || got[0] != "2026-Spring" {
		t.Errorf("EligibleForGeneration() = %v, want [2026-Spring]", got)
	}
}

func TestStore_snapshotIsolation(t *testing.T) {
	store := NewStore()
	store.ReconcileGenerated(2025, "Fall", 1)
	_ = store.appendClass("2025-Fall", Class{ID: "1", Name: "Databases", CourseCode: null.StringFrom("CIS 450")}, false)

	snap, _ := store.Semester("2025-Fall")
	snap.Classes[0].Name = "mutated"

	fresh, _ := store.Semester("2025-Fall")
	if fresh.Classes[0].Name != "Databases" {
		t.Error("snapshot mutation leaked into the store")
	}
}
