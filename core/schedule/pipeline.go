package schedule

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core"
)

// RunState tags the generation pipeline's explicit state machine. Invalid
// combinations (a pending decision with no current course, etc.) are
// unrepresentable.
type RunState int

const (
	StateIdle RunState = iota
	StateFetching
	StateAwaitingDecision
	StatePersisting
	StateCompleted
	StateAborted
)

func (s RunState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateFetching:
		return "fetching"
	case StateAwaitingDecision:
		return "awaiting-decision"
	case StatePersisting:
		return "persisting"
	case StateCompleted:
		return "completed"
	case StateAborted:
		return "aborted"
	}
	return fmt.Sprintf("RunState(%d)", int(s))
}

type (
	// GenerationBackend is the gateway surface the pipeline consumes.
	GenerationBackend interface {
		core.SemesterGateway
		core.GenerationGateway
	}

	// Recommendation carries the AI advice and candidate professors for one
	// generated course, keyed in a Run by CourseKey.
	Recommendation struct {
		Recommendations []string
		Professors      []core.Professor
	}

	// Run is one end-to-end pass of AI-assisted schedule building for a single
	// semester, resolved course-by-course.
	Run struct {
		SemesterID      string
		State           RunState
		Courses         []core.GeneratedCourse
		Current         int
		Recommendations map[string]Recommendation
	}

	// Pipeline drives generation runs. Only one run may be active at a time;
	// starting another while one is in progress is rejected.
	Pipeline struct {
		mu    sync.Mutex
		conf  *core.Config
		gw    GenerationBackend
		rec   *Reconciler
		store *Store
		log   core.Logger
		run   *Run
	}
)

// CurrentCourse returns the course awaiting a professor decision.
func (r *Run) CurrentCourse() (core.GeneratedCourse, bool) {
	if r.State != StateAwaitingDecision && r.State != StatePersisting {
		return core.GeneratedCourse{}, false
	}
	if r.Current < 0 || r.Current >= len(r.Courses) {
		return core.GeneratedCourse{}, false
	}
	return r.Courses[r.Current], true
}

func NewPipeline(conf *core.Config, gw GenerationBackend, store *Store, rec *Reconciler, log core.Logger) *Pipeline {
	return &Pipeline{conf: conf, gw: gw, rec: rec, store: store, log: log}
}

// CourseKey attributes recommendations to a generated course: course code and
// name combined when a code exists, name alone otherwise.
func CourseKey(course core.GeneratedCourse) string {
	if course.CourseCode.Valid && course.CourseCode.String != "" {
		return course.CourseCode.String + "__" + course.CourseName
	}
	return course.CourseName
}

// RateMyProfessorURL derives the ratings-site URL for a professor id.
func RateMyProfessorURL(professorID string) string {
	if professorID == "" {
		return ""
	}
	return "https://www.ratemyprofessors.com/professor/" + professorID
}

// DefaultCourseStubs is the templated candidate set sent to the backend's
// schedule generator when the caller has not customized input: a placeholder
// data source, not a real course catalog.
func DefaultCourseStubs(conf *core.Config, semesterID string) []core.CourseStub {
	year, name, err := ParseSemesterID(semesterID)
	var code string
	if err == nil {
		code = SemesterCode(year, name)
	}

	courses := []struct {
		number string
		name   string
	}{
		{"450", "Database Systems"},
		{"485", "Software Engineering"},
		{"375", "Web Development"},
		{"430", "Data Structures"},
	}
	stubs := make([]core.CourseStub, 0, len(courses))
	for _, c := range courses {
		stubs = append(stubs, core.CourseStub{
			SchoolName:   conf.Planning.SchoolName,
			Department:   conf.Planning.Department,
			CourseNumber: c.number,
			CourseName:   c.name,
			SemesterCode: code,
			DeptCode:     conf.Planning.DeptCode,
		})
	}
	return stubs
}

// Start begins a generation run for a semester: fetches the generated course
// list, normalizes course codes, gathers per-course AI recommendations (a
// failure there is isolated) and leaves the run awaiting the first decision.
func (p *Pipeline) Start(ctx context.Context, semesterID string, stubs ...[]core.CourseStub) (Run, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.run != nil && p.run.State != StateCompleted && p.run.State != StateAborted {
		return Run{}, ErrRunActive
	}

	courseStubs := DefaultCourseStubs(p.conf, semesterID)
	if len(stubs) > 0 && len(stubs[0]) > 0 {
		courseStubs = stubs[0]
	}

	run := &Run{
		SemesterID:      semesterID,
		State:           StateFetching,
		Recommendations: make(map[string]Recommendation),
	}
	p.run = run

	generated, err := p.gw.GenerateSchedule(ctx, courseStubs)
	if err != nil {
		run.State = StateAborted
		return *run, errors.Wrap(err, "generating schedule")
	}

	courses := pickSemesterCourses(generated, semesterID)
	if len(courses) > MaxGeneratedClasses {
		courses = courses[:MaxGeneratedClasses]
	}
	run.Courses = normalizeCourseCodes(courses, courseStubs)
	if len(run.Courses) == 0 {
		run.State = StateAborted
		return *run, ErrNoCoursesGenerated
	}

	p.fetchRecommendations(ctx, run)

	run.State = StateAwaitingDecision
	run.Current = 0
	return *run, nil
}

// Choose persists the pending course with the selected professor.
func (p *Pipeline) Choose(ctx context.Context, professor core.Professor) error {
	url := RateMyProfessorURL(professor.ID)
	return p.persist(ctx, professor.Name, url, &professor)
}

// Skip persists the pending course with the TBD sentinel and no ratings URL.
func (p *Pipeline) Skip(ctx context.Context) error {
	return p.persist(ctx, ProfessorTBD, "", nil)
}

// Abandon discards an incomplete run without persisting the pending course or
// marking the semester generated.
func (p *Pipeline) Abandon() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.run = nil
}

// Active returns a snapshot of the in-progress run.
func (p *Pipeline) Active() (Run, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.run == nil {
		return Run{}, false
	}
	return *p.run, true
}

// persist resolves the backend semester, stores the class remotely and only
// then commits it locally. A failure leaves the run awaiting the same
// decision for the operator to retry; it never auto-advances.
func (p *Pipeline) persist(ctx context.Context, professorName, rmpURL string, professorData *core.Professor) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.run == nil || p.run.State != StateAwaitingDecision {
		return ErrNoDecisionPending
	}
	run := p.run
	course := run.Courses[run.Current]
	run.State = StatePersisting

	res, err := p.rec.EnsureBackendSemester(ctx, run.SemesterID)
	if err != nil {
		run.State = StateAwaitingDecision
		return err
	}

	credits := course.Credits
	if credits <= 0 {
		credits = defaultCredits
	}
	if _, err := p.gw.CreateClass(ctx, res.BackendID, core.NewBackendClass{
		Name:               course.CourseName,
		Credits:            credits,
		Professor:          professorName,
		RateMyProfessorURL: rmpURL,
		RMPLink:            rmpURL,
	}); err != nil {
		run.State = StateAwaitingDecision
		return errors.Wrapf(err, "saving class %q", course.CourseName)
	}

	_ = p.store.appendClass(run.SemesterID, Class{
		ID:            localClassID(run.SemesterID, course.CourseName),
		Name:          course.CourseName,
		CourseCode:    course.CourseCode,
		Credits:       credits,
		Professor:     professorName,
		RMPLink:       rmpURL,
		ProfessorData: professorData,
	}, true)

	if run.Current+1 < len(run.Courses) {
		run.Current++
		run.State = StateAwaitingDecision
		return nil
	}

	// last course resolved: reload from the authoritative backend listing
	if remote, err := p.gw.Semesters(ctx, 0, true); err != nil {
		p.log.Error(fmt.Sprintf("reloading semesters after generation: %v", err), err)
	} else {
		p.store.MergeBackendSemesters(remote)
	}
	p.store.MarkGenerated(run.SemesterID)
	run.State = StateCompleted
	p.run = nil
	return nil
}

// fetchRecommendations requests AI advice for every course that carries
// candidate professors. Failures are logged and isolated: the course simply
// has no recommendations.
func (p *Pipeline) fetchRecommendations(ctx context.Context, run *Run) {
	for _, course := range run.Courses {
		if len(course.Professors) == 0 {
			continue
		}

		instructors := make([]core.Instructor, 0, len(course.Professors))
		for _, prof := range course.Professors {
			difficulty := prof.AvgDifficulty
			if difficulty == 0 {
				difficulty = 3.0
			}
			instructors = append(instructors, core.Instructor{
				Name:              prof.Name,
				ScoreOverall:      prof.AvgRating,
				WouldTakeAgainPct: prof.WouldTakeAgainPercent,
				Difficulty:        difficulty,
				RecentEvals:       prof.LatestComments,
			})
		}

		advice, err := p.gw.AgentRecommendations(ctx, p.conf.Planning.PreferenceTags, []core.CourseQuery{
			{Course: course.CourseName, Instructors: instructors},
		})
		if err != nil {
			p.log.Warn(fmt.Sprintf("getting recommendations for %q: %v", course.CourseName, err))
			continue
		}
		if !advice.Success {
			continue
		}
		run.Recommendations[CourseKey(course)] = Recommendation{
			Recommendations: advice.Recommendations,
			Professors:      course.Professors,
		}
	}
}

// pickSemesterCourses selects the generated course list for the run's
// semester, preferring its own semester code and falling back to the first
// key in stable order when the backend labels differently.
func pickSemesterCourses(generated core.GeneratedSchedule, semesterID string) []core.GeneratedCourse {
	if len(generated) == 0 {
		return nil
	}
	if year, name, err := ParseSemesterID(semesterID); err == nil {
		if courses, ok := generated[SemesterCode(year, name)]; ok {
			return courses
		}
	}
	keys := make([]string, 0, len(generated))
	for key := range generated {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return generated[keys[0]]
}

// normalizeCourseCodes fills missing course codes from the originating stub's
// dept code + number pairing.
func normalizeCourseCodes(courses []core.GeneratedCourse, stubs []core.CourseStub) []core.GeneratedCourse {
	out := make([]core.GeneratedCourse, 0, len(courses))
	for _, course := range courses {
		if !course.CourseCode.Valid || course.CourseCode.String == "" {
			for _, stub := range stubs {
				if stub.CourseName != course.CourseName {
					continue
				}
				code := stub.CourseNumber
				if stub.DeptCode != "" {
					code = stub.DeptCode + " " + stub.CourseNumber
				}
				course.CourseCode.SetValid(code)
				break
			}
		}
		out = append(out, course)
	}
	return out
}
