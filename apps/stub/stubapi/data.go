package stubapi

import (
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/ratiba/core"
)

type (
	student struct {
		id           core.ID
		username     string
		email        string
		displayName  string
		passwordHash []byte
		createdAt    time.Time

		semesters []*core.BackendSemester
		previous  []core.PreviousClass
		friends   []core.Friend
		requests  []core.FriendRequest
		shares    []core.ScheduleShare
		uploads   []core.Upload
	}

	// memoryStore is the stub's whole universe. Everything is lost on restart,
	// which is the point.
	memoryStore struct {
		mu       sync.Mutex
		students map[string]*student // by username
		nextID   int64
	}
)

func newMemoryStore() *memoryStore {
	s := &memoryStore{students: make(map[string]*student), nextID: 1000}
	s.seed()
	return s
}

// seed provisions a couple of known accounts for local development.
func (s *memoryStore) seed() {
	seeds := []struct {
		username, email, display, password string
	}{
		{"asha", "asha@test.test", "Asha M.", "LocalDev.pwd1"},
		{"juma", "juma@test.test", "Juma K.", "LocalDev.pwd2"},
	}
	for _, seed := range seeds {
		hash, _ := bcrypt.GenerateFromPassword([]byte(seed.password), bcrypt.MinCost)
		s.students[seed.username] = &student{
			id:           s.newID(),
			username:     seed.username,
			email:        seed.email,
			displayName:  seed.display,
			passwordHash: hash,
			createdAt:    time.Now().UTC(),
		}
	}

	// the seeded accounts start out as friends
	asha, juma := s.students["asha"], s.students["juma"]
	asha.friends = []core.Friend{{ID: juma.id, Name: juma.displayName, Email: juma.email}}
	juma.friends = []core.Friend{{ID: asha.id, Name: asha.displayName, Email: asha.email}}
}

// newID expects the lock to be held (or startup, before serving).
func (s *memoryStore) newID() core.ID {
	s.nextID++
	return core.ID(strconv.FormatInt(s.nextID, 10))
}

func (s *memoryStore) findByUsernameOrEmail(identifier string) *student {
	if stu, ok := s.students[identifier]; ok {
		return stu
	}
	for _, stu := range s.students {
		if stu.email == identifier {
			return stu
		}
	}
	return nil
}

func (s *memoryStore) register(reg core.Registration) (*student, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findByUsernameOrEmail(reg.Username) != nil || s.findByUsernameOrEmail(reg.Email) != nil {
		return nil, errAccountExists
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.MinCost)
	if err != nil {
		return nil, err
	}
	stu := &student{
		id:           s.newID(),
		username:     reg.Username,
		email:        reg.Email,
		displayName:  reg.DisplayName,
		passwordHash: hash,
		createdAt:    time.Now().UTC(),
	}
	s.students[reg.Username] = stu
	return stu, nil
}

func (stu *student) profile() core.Profile {
	return core.Profile{
		ID:          stu.id,
		Username:    stu.username,
		Email:       stu.email,
		DisplayName: stu.displayName,
		CreatedAt:   stu.createdAt,
	}
}

// professorCatalog is the canned ratings-site scrape served by the schedule
// generator: course name to candidate professors.
var professorCatalog = map[string][]core.Professor{
	"Database Systems": {
		{ID: "1048576", Name: "Brahm Maxwell", AvgRating: 4.6, AvgDifficulty: 2.8, WouldTakeAgainPercent: 93,
			TeacherTags:    []string{"clear grading criteria", "amazing lectures"},
			LatestComments: []string{"Best CS professor I have had.", "Projects are long but fair."}},
		{ID: "2097152", Name: "Lidia Ferreira", AvgRating: 3.9, AvgDifficulty: 3.4, WouldTakeAgainPercent: 78,
			TeacherTags:    []string{"tough grader"},
			LatestComments: []string{"Know your SQL before the midterm."}},
	},
	"Software Engineering": {
		{ID: "3145728", Name: "Ravi Shaw", AvgRating: 4.1, AvgDifficulty: 3.0, WouldTakeAgainPercent: 85,
			TeacherTags:    []string{"group projects", "caring"},
			LatestComments: []string{"The sprint demos are actually fun."}},
	},
	"Web Development": {
		{ID: "4194304", Name: "Mei-Ling Chou", AvgRating: 4.8, AvgDifficulty: 2.2, WouldTakeAgainPercent: 97,
			TeacherTags:    []string{"inspirational", "respected"},
			LatestComments: []string{"You build a real site by week 6.", "Super responsive on the forum."}},
	},
	"Data Structures": {
		{ID: "5242880", Name: "Viktor Hahn", AvgRating: 3.2, AvgDifficulty: 4.1, WouldTakeAgainPercent: 55,
			TeacherTags:    []string{"lots of homework"},
			LatestComments: []string{"Hard but you will learn.", "Exams come straight from the problem sets."}},
		{ID: "6291456", Name: "Amara Diallo", AvgRating: 4.4, AvgDifficulty: 3.1, WouldTakeAgainPercent: 90,
			TeacherTags:    []string{"accessible outside class"},
			LatestComments: []string{"Office hours saved my grade."}},
	},
}

// generateSchedule fabricates the generated course list for each distinct
// semester code in the request.
func generateSchedule(stubs []core.CourseStub) core.GeneratedSchedule {
	out := make(core.GeneratedSchedule)
	for _, stub := range stubs {
		code := stub.SemesterCode
		if code == "" {
			code = "tbd"
		}
		course := core.GeneratedCourse{
			CourseName: stub.CourseName,
			Credits:    3,
			Professors: professorCatalog[stub.CourseName],
		}
		if stub.CourseNumber != "" {
			courseCode := stub.CourseNumber
			if stub.DeptCode != "" {
				courseCode = stub.DeptCode + " " + stub.CourseNumber
			}
			course.CourseCode.SetValid(courseCode)
		}
		out[code] = append(out[code], course)
	}
	return out
}

// recommend ranks each queried course's instructors by overall score.
func recommend(queries []core.CourseQuery) []string {
	var recs []string
	for _, q := range queries {
		var best core.Instructor
		for _, inst := range q.Instructors {
			if inst.ScoreOverall > best.ScoreOverall {
				best = inst
			}
		}
		if best.Name == "" {
			continue
		}
		recs = append(recs, fmt.Sprintf(
			"For %s, take %s: rated %.1f/5 overall with %.0f%% of students willing to take them again.",
			q.Course, best.Name, best.ScoreOverall, best.WouldTakeAgainPct,
		))
	}
	return recs
}

func matchesQuery(f core.Friend, query string) bool {
	query = strings.ToLower(query)
	return strings.Contains(strings.ToLower(f.Name), query) ||
		strings.Contains(strings.ToLower(f.Email), query)
}
