// Package schedule implements the semester-generation and professor-assignment
// workflow: the in-memory schedule state, the backend reconciliation and the
// AI-assisted generation pipeline.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/ratiba/core"
)

const (
	// MaxGeneratedClasses caps a semester populated through the generation
	// pipeline. Manual adds are not bounded.
	MaxGeneratedClasses = 4

	// ProfessorTBD marks a class whose professor selection was deferred.
	ProfessorTBD = "TBD"

	defaultCredits = 3
)

// TermSequence is the fixed ordered term cycle used to derive semester ids.
var TermSequence = []string{"Spring", "Summer", "Fall", "Winter"}

var nowFunc = time.Now // mockable

var (
	ErrInvalidSemesterID  = errors.New("invalid semester identifier")
	ErrSemesterNotFound   = errors.New("semester not found")
	ErrNoCoursesGenerated = errors.New("no courses were generated for this semester")
	ErrRunActive          = errors.New("a schedule generation run is already in progress")
	ErrNoDecisionPending  = errors.New("no professor decision is pending")
)

type (
	// Semester is a locally-identified planning period. ID is the stable local
	// primary key ("<year>-<term>"); BackendID stays empty until the semester
	// is persisted remotely and is assigned at most once.
	Semester struct {
		ID        string
		BackendID core.ID
		Year      int
		Name      string
		Position  int
		Classes   []Class
	}

	Class struct {
		ID            core.ID
		Name          string
		CourseCode    null.String
		Credits       int
		Professor     string
		RMPLink       string
		ProfessorData *core.Professor
	}
)

// ParseSemesterID splits a "<year>-<term>" id. Term names may themselves
// contain hyphens; only the first segment is the year.
func ParseSemesterID(id string) (year int, name string, err error) {
	parts := strings.SplitN(id, "-", 2)
	if len(parts) < 2 {
		return 0, "", errors.Wrapf(ErrInvalidSemesterID, "%q", id)
	}
	year, err = strconv.Atoi(parts[0])
	if err != nil || parts[1] == "" {
		return 0, "", errors.Wrapf(ErrInvalidSemesterID, "%q", id)
	}
	return year, parts[1], nil
}

// SemesterCode derives the backend's short semester code, e.g. "f25" for Fall 2025.
func SemesterCode(year int, name string) string {
	if name == "" {
		return ""
	}
	yr := strconv.Itoa(year)
	if len(yr) > 2 {
		yr = yr[len(yr)-2:]
	}
	return strings.ToLower(name[:1]) + yr
}

// localClassID synthesizes an id for a class that only exists locally.
func localClassID(semesterID, courseName string) core.ID {
	return core.ID(fmt.Sprintf("%s-%s-%d", semesterID, courseName, nowFunc().UnixNano()/int64(time.Millisecond)))
}
