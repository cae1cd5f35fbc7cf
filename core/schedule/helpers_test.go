package schedule

import (
	"context"
	"fmt"
	"sync"

	"github.com/trezcool/ratiba/core"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

// fakeGateway records calls and serves canned data for the semester,
// generation and previous-class surfaces.
type fakeGateway struct {
	mu        sync.Mutex
	semesters []core.BackendSemester
	previous  []core.PreviousClass
	generated core.GeneratedSchedule
	advice    core.AgentAdvice

	semestersErr   error
	createSemErr   error
	createClassErr error
	deleteClassErr error
	generateErr    error
	agentErr       error
	previousErr    error

	// fail the Nth CreateClass call (1-based); 0 disables
	failCreateClassAt int

	semestersCalls   int
	createSemCalls   int
	createClassCalls int
	deleteClassCalls int
	generateCalls    int
	agentCalls       int

	nextID int
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{nextID: 100}
}

func (f *fakeGateway) Semesters(_ context.Context, year int, includeClasses bool) ([]core.BackendSemester, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.semestersCalls++
	if f.semestersErr != nil {
		return nil, f.semestersErr
	}
	var out []core.BackendSemester
	for _, sem := range f.semesters {
		if year != 0 && sem.Year != year {
			continue
		}
		if !includeClasses {
			sem.Classes = nil
		}
		out = append(out, sem)
	}
	return out, nil
}

func (f *fakeGateway) CreateSemester(_ context.Context, ns core.NewBackendSemester) (core.BackendSemester, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createSemCalls++
	if f.createSemErr != nil {
		return core.BackendSemester{}, f.createSemErr
	}
	sem := core.BackendSemester{
		ID:       f.newID(),
		Year:     ns.Year,
		Name:     ns.Name,
		Position: ns.Position,
	}
	f.semesters = append(f.semesters, sem)
	return sem, nil
}

func (f *fakeGateway) CreateClass(_ context.Context, semesterID core.ID, nc core.NewBackendClass) (core.BackendClass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.createClassCalls++
	if f.createClassErr != nil {
		return core.BackendClass{}, f.createClassErr
	}
	if f.failCreateClassAt == f.createClassCalls {
		return core.BackendClass{}, fmt.Errorf("backend rejected class %d", f.createClassCalls)
	}
	cls := core.BackendClass{
		ID:                 f.newID(),
		Name:               nc.Name,
		Credits:            nc.Credits,
		Professor:          nc.Professor,
		RateMyProfessorURL: nc.RateMyProfessorURL,
	}
	for i := range f.semesters {
		if f.semesters[i].ID == semesterID {
			f.semesters[i].Classes = append(f.semesters[i].Classes, cls)
			break
		}
	}
	return cls, nil
}

func (f *fakeGateway) DeleteClass(_ context.Context, semesterID, classID core.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.deleteClassCalls++
	if f.deleteClassErr != nil {
		return f.deleteClassErr
	}
	for i := range f.semesters {
		if f.semesters[i].ID != semesterID {
			continue
		}
		classes := f.semesters[i].Classes[:0]
		for _, cls := range f.semesters[i].Classes {
			if cls.ID != classID {
				classes = append(classes, cls)
			}
		}
		f.semesters[i].Classes = classes
	}
	return nil
}

func (f *fakeGateway) GenerateSchedule(_ context.Context, _ []core.CourseStub) (core.GeneratedSchedule, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.generateCalls++
	if f.generateErr != nil {
		return nil, f.generateErr
	}
	return f.generated, nil
}

func (f *fakeGateway) AgentRecommendations(_ context.Context, _ []string, _ []core.CourseQuery) (core.AgentAdvice, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.agentCalls++
	if f.agentErr != nil {
		return core.AgentAdvice{}, f.agentErr
	}
	return f.advice, nil
}

func (f *fakeGateway) PreviousClasses(_ context.Context) ([]core.PreviousClass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.previousErr != nil {
		return nil, f.previousErr
	}
	return append([]core.PreviousClass(nil), f.previous...), nil
}

func (f *fakeGateway) CreatePreviousClass(_ context.Context, npc core.NewPreviousClass) (core.PreviousClass, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.previousErr != nil {
		return core.PreviousClass{}, f.previousErr
	}
	rec := core.PreviousClass{
		ID:        f.newID(),
		Course:    npc.Course,
		Semester:  npc.Semester,
		Grade:     npc.Grade,
		Professor: npc.Professor,
	}
	f.previous = append(f.previous, rec)
	return rec, nil
}

func (f *fakeGateway) DeletePreviousClass(_ context.Context, id core.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.previousErr != nil {
		return f.previousErr
	}
	records := f.previous[:0]
	for _, rec := range f.previous {
		if rec.ID != id {
			records = append(records, rec)
		}
	}
	f.previous = records
	return nil
}

// newID expects the lock to be held.
func (f *fakeGateway) newID() core.ID {
	f.nextID++
	return core.ID(fmt.Sprintf("%d", f.nextID))
}
