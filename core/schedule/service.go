package schedule

import (
	"context"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/grades"
)

type (
	// Backend is the gateway surface the schedule service consumes.
	Backend interface {
		core.SemesterGateway
		core.PreviousClassGateway
	}

	// Service owns the local schedule state and keeps it consistent with the
	// remote backend: planning windows, manual class edits and the previous
	// classes record.
	Service struct {
		gw    Backend
		store *Store
		rec   *Reconciler
		log   core.Logger
	}
)

func NewService(gw Backend, store *Store, rec *Reconciler, log core.Logger) *Service {
	return &Service{gw: gw, store: store, rec: rec, log: log}
}

// Plan rebuilds the local planning window, carrying over any already populated
// semester that falls inside it.
func (svc *Service) Plan(startYear int, firstTerm string, count int) []Semester {
	svc.store.ReconcileGenerated(startYear, firstTerm, count)
	return svc.store.Semesters()
}

// Reload replaces local semester state with the backend's listing. Semesters
// unknown to the backend are kept as is.
func (svc *Service) Reload(ctx context.Context) error {
	remote, err := svc.gw.Semesters(ctx, 0, true)
	if err != nil {
		return errors.Wrap(err, "listing semesters")
	}
	svc.store.MergeBackendSemesters(remote)
	return nil
}

func (svc *Service) Semesters() []Semester               { return svc.store.Semesters() }
func (svc *Service) Semester(id string) (Semester, bool) { return svc.store.Semester(id) }
func (svc *Service) IsGenerated(id string) bool          { return svc.store.IsGenerated(id) }
func (svc *Service) EligibleForGeneration() []string     { return svc.store.EligibleForGeneration() }
func (svc *Service) ProfessorDirectory() []ProfessorEntry {
	return svc.store.ProfessorDirectory()
}
func (svc *Service) AverageGPA() (float64, int, bool) { return svc.store.AverageGPA() }

// NewClass contains information needed to add a class to a semester by hand.
type NewClass struct {
	Name       string `json:"name" validate:"required"`
	CourseCode string `json:"course_code"`
	Credits    int    `json:"credits" validate:"omitempty,min=1,max=6"`
	Professor  string `json:"professor"`
	RMPLink    string `json:"rmp_link" validate:"omitempty,url"`
}

func (nc *NewClass) Validate() error {
	nc.Name = core.CleanString(nc.Name)
	nc.CourseCode = core.CleanString(nc.CourseCode)
	nc.Professor = core.CleanString(nc.Professor)
	return core.Validate.Struct(nc)
}

// AddClass saves a manually entered class to the backend first, then locally.
// Manual classes are not subject to the generation cap.
func (svc *Service) AddClass(ctx context.Context, semesterID string, nc NewClass) (Class, error) {
	if err := nc.Validate(); err != nil {
		return Class{}, err
	}

	res, err := svc.rec.EnsureBackendSemester(ctx, semesterID)
	if err != nil {
		return Class{}, err
	}

	credits := nc.Credits
	if credits <= 0 {
		credits = defaultCredits
	}
	professor := nc.Professor
	if professor == "" {
		professor = ProfessorTBD
	}

	remote, err := svc.gw.CreateClass(ctx, res.BackendID, core.NewBackendClass{
		Name:               nc.Name,
		Credits:            credits,
		Professor:          professor,
		RateMyProfessorURL: nc.RMPLink,
		RMPLink:            nc.RMPLink,
	})
	if err != nil {
		return Class{}, errors.Wrapf(err, "saving class %q", nc.Name)
	}

	id := remote.ID
	if id == "" {
		id = localClassID(semesterID, nc.Name)
	}
	cls := Class{
		ID:         id,
		Name:       nc.Name,
		CourseCode: null.NewString(nc.CourseCode, nc.CourseCode != ""),
		Credits:    credits,
		Professor:  professor,
		RMPLink:    nc.RMPLink,
	}
	if err := svc.store.appendClass(semesterID, cls, false); err != nil {
		return Class{}, err
	}
	return cls, nil
}

// RemoveClass deletes a class, remote first when the id shape says the backend
// knows it. A failed remote delete leaves the class in place locally.
func (svc *Service) RemoveClass(ctx context.Context, semesterID string, classID core.ID) error {
	sem, ok := svc.store.Semester(semesterID)
	if !ok {
		return ErrSemesterNotFound
	}

	if classID.IsNumeric() && sem.BackendID != "" {
		if err := svc.gw.DeleteClass(ctx, sem.BackendID, classID); err != nil {
			return errors.Wrap(err, "deleting class")
		}
	}
	svc.store.removeClass(semesterID, classID)
	return nil
}

// PreviousClassForm records a class taken before planning started.
type PreviousClassForm struct {
	Course    string `json:"course" validate:"required"`
	Semester  string `json:"semester" validate:"required"`
	Grade     string `json:"grade"`
	Professor string `json:"professor"`
}

func (f *PreviousClassForm) Validate() error {
	f.Course = core.CleanString(f.Course)
	f.Semester = core.CleanString(f.Semester)
	f.Grade = core.CleanString(f.Grade)
	f.Professor = core.CleanString(f.Professor)

	if err := core.Validate.Struct(f); err != nil {
		return err
	}
	if f.Grade != "" && !grades.Known(f.Grade) {
		return core.NewValidationError(nil, core.FieldError{Field: "grade", Error: "unknown grade"})
	}
	return nil
}

// LoadPreviousClasses refreshes the local previous classes record from the
// backend.
func (svc *Service) LoadPreviousClasses(ctx context.Context) ([]core.PreviousClass, error) {
	records, err := svc.gw.PreviousClasses(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "listing previous classes")
	}
	svc.store.SetPreviousClasses(records)
	return records, nil
}

// AddPreviousClass saves a previous class remotely and prepends it locally so
// the latest entry lists first.
func (svc *Service) AddPreviousClass(ctx context.Context, f PreviousClassForm) (core.PreviousClass, error) {
	if err := f.Validate(); err != nil {
		return core.PreviousClass{}, err
	}

	record, err := svc.gw.CreatePreviousClass(ctx, core.NewPreviousClass{
		Course:    f.Course,
		Semester:  f.Semester,
		Grade:     f.Grade,
		Professor: f.Professor,
	})
	if err != nil {
		return core.PreviousClass{}, errors.Wrapf(err, "saving previous class %q", f.Course)
	}
	svc.store.PrependPreviousClass(record)
	return record, nil
}

// RemovePreviousClass deletes a previous class remote first.
func (svc *Service) RemovePreviousClass(ctx context.Context, id core.ID) error {
	if err := svc.gw.DeletePreviousClass(ctx, id); err != nil {
		return errors.Wrap(err, "deleting previous class")
	}
	svc.store.RemovePreviousClass(id)
	return nil
}

// PreviousClasses returns the locally cached previous classes record.
func (svc *Service) PreviousClasses() []core.PreviousClass {
	return svc.store.PreviousClasses()
}
