package schedule

import (
	"fmt"
	"sync"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/grades"
)

type (
	// Store is the canonical in-memory schedule state. The remote backend is
	// the durable source of truth: local mutations are provisional until the
	// next successful full reload overwrites them.
	Store struct {
		mu              sync.RWMutex
		semesters       []*Semester
		generated       map[string]struct{}
		previousClasses []core.PreviousClass
	}

	// ProfessorEntry groups every scheduled class taught by one professor.
	ProfessorEntry struct {
		Professor string
		RMPLink   string
		Courses   []ProfessorCourse
	}

	ProfessorCourse struct {
		Name     string
		Semester string // display label, e.g. "Fall 2025"
		RMPLink  string
		Credits  int
	}
)

func NewStore() *Store {
	return &Store{generated: make(map[string]struct{})}
}

// ReconcileGenerated regenerates the semester skeleton, preserving any
// existing record (classes, backend id) whose id is still in the requested
// window and dropping local semesters that fall outside it.
func (s *Store) ReconcileGenerated(startYear int, firstTerm string, count int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := GenerateSemesters(startYear, firstTerm, count)
	semesters := make([]*Semester, 0, len(next))
	for i := range next {
		if existing := s.find(next[i].ID); existing != nil {
			semesters = append(semesters, existing)
			continue
		}
		sem := next[i]
		semesters = append(semesters, &sem)
	}
	s.semesters = semesters
}

// Semesters returns a snapshot of all semesters in display order.
func (s *Store) Semesters() []Semester {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Semester, 0, len(s.semesters))
	for _, sem := range s.semesters {
		out = append(out, copySemester(sem))
	}
	return out
}

func (s *Store) Semester(id string) (Semester, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if sem := s.find(id); sem != nil {
		return copySemester(sem), true
	}
	return Semester{}, false
}

// MergeBackendSemesters is the authoritative reload: a replace-by-id merge,
// never a partial patch. Semesters known only locally are kept; semesters
// holding remote classes are marked generated.
func (s *Store) MergeBackendSemesters(backend []core.BackendSemester) {
	s.mu.Lock()
	defer s.mu.Unlock()

	generated := make(map[string]struct{})
	for _, bs := range backend {
		id := fmt.Sprintf("%d-%s", bs.Year, bs.Name)
		classes := make([]Class, 0, len(bs.Classes))
		for _, bc := range bs.Classes {
			credits := bc.Credits
			if credits <= 0 {
				credits = defaultCredits
			}
			classes = append(classes, Class{
				ID:         bc.ID,
				Name:       bc.Name,
				CourseCode: bc.CourseCode,
				Credits:    credits,
				Professor:  bc.Professor,
				RMPLink:    bc.RateMyProfessorURL,
			})
		}

		if existing := s.find(id); existing != nil {
			existing.BackendID = bs.ID
			existing.Name = bs.Name
			existing.Year = bs.Year
			existing.Position = bs.Position
			existing.Classes = classes
		} else {
			s.semesters = append(s.semesters, &Semester{
				ID:        id,
				BackendID: bs.ID,
				Year:      bs.Year,
				Name:      bs.Name,
				Position:  bs.Position,
				Classes:   classes,
			})
		}
		if len(classes) > 0 {
			generated[id] = struct{}{}
		}
	}
	if len(backend) > 0 {
		s.generated = generated
	}
}

func (s *Store) MarkGenerated(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.generated[id] = struct{}{}
}

func (s *Store) IsGenerated(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.generated[id]
	return ok
}

// EligibleForGeneration lists semesters with no classes that have not been
// through a completed generation run, in display order.
func (s *Store) EligibleForGeneration() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var ids []string
	for _, sem := range s.semesters {
		if len(sem.Classes) > 0 {
			continue
		}
		if _, ok := s.generated[sem.ID]; ok {
			continue
		}
		ids = append(ids, sem.ID)
	}
	return ids
}

// mergeBackendSemester records the outcome of a reconciliation. The backend id
// is assigned at most once; a no-op when the id is outside the current window.
func (s *Store) mergeBackendSemester(id string, backendID core.ID, name string, year, position int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sem := s.find(id)
	if sem == nil {
		return
	}
	if sem.BackendID == "" {
		sem.BackendID = backendID
	}
	sem.Name = name
	sem.Year = year
	sem.Position = position
}

// appendClass appends in insertion order; capped semesters silently drop the
// overflow the way the generation pipeline expects.
func (s *Store) appendClass(semesterID string, cls Class, capped bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sem := s.find(semesterID)
	if sem == nil {
		return ErrSemesterNotFound
	}
	if capped && len(sem.Classes) >= MaxGeneratedClasses {
		return nil
	}
	sem.Classes = append(sem.Classes, cls)
	return nil
}

func (s *Store) removeClass(semesterID string, classID core.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sem := s.find(semesterID)
	if sem == nil {
		return
	}
	classes := sem.Classes[:0]
	for _, cls := range sem.Classes {
		if cls.ID != classID {
			classes = append(classes, cls)
		}
	}
	sem.Classes = classes
}

func (s *Store) countYear(year int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	for _, sem := range s.semesters {
		if sem.Year == year {
			n++
		}
	}
	return n
}

// ProfessorDirectory groups all classes with a non-empty professor across all
// semesters, deduplicating by exact professor name in first-appearance order.
func (s *Store) ProfessorDirectory() []ProfessorEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	index := make(map[string]int)
	var entries []ProfessorEntry
	for _, sem := range s.semesters {
		for _, cls := range sem.Classes {
			if cls.Professor == "" {
				continue
			}
			i, ok := index[cls.Professor]
			if !ok {
				i = len(entries)
				index[cls.Professor] = i
				entries = append(entries, ProfessorEntry{
					Professor: cls.Professor,
					RMPLink:   cls.RMPLink,
				})
			}
			entries[i].Courses = append(entries[i].Courses, ProfessorCourse{
				Name:     cls.Name,
				Semester: fmt.Sprintf("%s %d", sem.Name, sem.Year),
				RMPLink:  cls.RMPLink,
				Credits:  cls.Credits,
			})
		}
	}
	return entries
}

func (s *Store) PreviousClasses() []core.PreviousClass {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]core.PreviousClass, len(s.previousClasses))
	copy(out, s.previousClasses)
	return out
}

func (s *Store) SetPreviousClasses(records []core.PreviousClass) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previousClasses = append([]core.PreviousClass(nil), records...)
}

// PrependPreviousClass puts the newest record first, matching display order.
func (s *Store) PrependPreviousClass(record core.PreviousClass) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previousClasses = append([]core.PreviousClass{record}, s.previousClasses...)
}

func (s *Store) RemovePreviousClass(id core.ID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	records := s.previousClasses[:0]
	for _, rec := range s.previousClasses {
		if rec.ID != id {
			records = append(records, rec)
		}
	}
	s.previousClasses = records
}

// AverageGPA averages the contributing grades of all previous-class records.
// ok is false when nothing contributes (no GPA available).
func (s *Store) AverageGPA() (avg float64, graded int, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	gs := make([]string, 0, len(s.previousClasses))
	for _, rec := range s.previousClasses {
		gs = append(gs, rec.Grade)
	}
	return grades.Average(gs)
}

// find expects the lock to be held.
func (s *Store) find(id string) *Semester {
	for _, sem := range s.semesters {
		if sem.ID == id {
			return sem
		}
	}
	return nil
}

func copySemester(sem *Semester) Semester {
	out := *sem
	out.Classes = append([]Class(nil), sem.Classes...)
	return out
}
