package core

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/volatiletech/null/v8"
)

// ID is an opaque backend identifier. The backend hands out numeric ids for
// persisted records while locally synthesized ids are hyphenated strings, so
// both JSON numbers and strings must unmarshal into it.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "null" {
		s = ""
	}
	*id = ID(s)
	return nil
}

func (id ID) String() string { return string(id) }

// IsNumeric reports whether the id has the shape of a persisted backend id.
func (id ID) IsNumeric() bool {
	if id == "" {
		return false
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

type (
	// Session holds the bearer tokens granted by the backend.
	Session struct {
		AccessToken  string `json:"accessToken"`
		RefreshToken string `json:"refreshToken"`
	}

	Profile struct {
		ID          ID        `json:"id"`
		Username    string    `json:"username"`
		Email       string    `json:"email"`
		DisplayName string    `json:"displayName"`
		CreatedAt   time.Time `json:"created_at"`
	}

	ProfileUpdate struct {
		DisplayName string `json:"displayName"`
	}

	Registration struct {
		Username    string `json:"username"`
		Email       string `json:"email"`
		DisplayName string `json:"displayName"`
		Password    string `json:"password"`
	}

	BackendSemester struct {
		ID       ID             `json:"id"`
		Year     int            `json:"year"`
		Name     string         `json:"name"`
		Position int            `json:"position"`
		Classes  []BackendClass `json:"classes,omitempty"`
	}

	NewBackendSemester struct {
		Name     string `json:"name"`
		Year     int    `json:"year"`
		Position int    `json:"position"`
	}

	BackendClass struct {
		ID                 ID          `json:"id"`
		Name               string      `json:"name"`
		CourseCode         null.String `json:"courseCode,omitempty"`
		Credits            int         `json:"credits"`
		Professor          string      `json:"professor"`
		RateMyProfessorURL string      `json:"rateMyProfessorUrl"`
	}

	NewBackendClass struct {
		Name               string `json:"name"`
		Credits            int    `json:"credits"`
		Professor          string `json:"professor"`
		RateMyProfessorURL string `json:"rateMyProfessorUrl"`
		RMPLink            string `json:"rmpLink"` // legacy alias, same value
	}

	// CourseStub seeds the backend's schedule generator.
	CourseStub struct {
		SchoolName   string `json:"school_name"`
		Department   string `json:"department"`
		CourseNumber string `json:"course_number"`
		CourseName   string `json:"course_name"`
		SemesterCode string `json:"semester_code"`
		DeptCode     string `json:"dept_code"`
	}

	// Professor is a candidate instructor as scraped from the ratings site.
	Professor struct {
		ID                    string   `json:"id"`
		Name                  string   `json:"name"`
		AvgRating             float64  `json:"avgRating"`
		AvgDifficulty         float64  `json:"avgDifficulty"`
		WouldTakeAgainPercent float64  `json:"wouldTakeAgainPercent"`
		TeacherTags           []string `json:"teacherTags"`
		LatestComments        []string `json:"latestComments"`
	}

	GeneratedCourse struct {
		CourseName string      `json:"course_name"`
		CourseCode null.String `json:"course_code"`
		Credits    int         `json:"credits,omitempty"`
		Professors []Professor `json:"professors,omitempty"`
	}

	// GeneratedSchedule maps a semester code to its generated courses.
	GeneratedSchedule map[string][]GeneratedCourse

	Instructor struct {
		Name              string   `json:"name"`
		ScoreOverall      float64  `json:"score_overall"`
		WouldTakeAgainPct float64  `json:"would_take_again_pct"`
		Difficulty        float64  `json:"difficulty"`
		RecentEvals       []string `json:"recent_evals"`
	}

	CourseQuery struct {
		Course      string       `json:"course"`
		Instructors []Instructor `json:"instructors"`
	}

	AgentAdvice struct {
		Success         bool     `json:"success"`
		Recommendations []string `json:"recommendations"`
	}

	PreviousClass struct {
		ID        ID     `json:"id"`
		Course    string `json:"course"`
		Semester  string `json:"semester"`
		Grade     string `json:"grade"`
		Professor string `json:"professor"`
	}

	NewPreviousClass struct {
		Course    string `json:"course"`
		Semester  string `json:"semester"`
		Grade     string `json:"grade"`
		Professor string `json:"professor"`
	}

	FriendMeeting struct {
		Day    string `json:"day"`
		Course string `json:"course"`
		Time   string `json:"time"`
	}

	Friend struct {
		ID       ID              `json:"id"`
		Name     string          `json:"name"`
		Email    string          `json:"email"`
		Schedule []FriendMeeting `json:"schedule,omitempty"`
	}

	FriendRequest struct {
		ID            ID       `json:"id"`
		Name          string   `json:"name"`
		Email         string   `json:"email"`
		MutualCourses []string `json:"mutualCourses,omitempty"`
		Outgoing      bool     `json:"outgoing,omitempty"`
	}

	ScheduleShare struct {
		ID        ID        `json:"id"`
		FriendID  ID        `json:"friendId"`
		CanView   bool      `json:"canView"`
		CanEdit   bool      `json:"canEdit"`
		ExpiresAt null.Time `json:"expiresAt,omitempty"`
	}

	Upload struct {
		ID         ID          `json:"id"`
		Type       string      `json:"type"`
		Filename   string      `json:"filename"`
		Notes      null.String `json:"notes,omitempty"`
		UploadedAt time.Time   `json:"uploadedAt"`
	}
)

type (
	AccountGateway interface {
		Login(ctx context.Context, username, password string) (Session, error)
		Register(ctx context.Context, reg Registration) (Session, error)
		Logout(ctx context.Context) error
		RefreshSession(ctx context.Context) (Session, error)
		Profile(ctx context.Context) (Profile, error)
		UpdateProfile(ctx context.Context, up ProfileUpdate) (Profile, error)
	}

	// SemesterGateway performs the authenticated semester/class calls the
	// reconciler and pipeline depend on. year == 0 queries all years.
	SemesterGateway interface {
		Semesters(ctx context.Context, year int, includeClasses bool) ([]BackendSemester, error)
		CreateSemester(ctx context.Context, ns NewBackendSemester) (BackendSemester, error)
		CreateClass(ctx context.Context, semesterID ID, nc NewBackendClass) (BackendClass, error)
		DeleteClass(ctx context.Context, semesterID, classID ID) error
	}

	GenerationGateway interface {
		GenerateSchedule(ctx context.Context, stubs []CourseStub) (GeneratedSchedule, error)
		AgentRecommendations(ctx context.Context, tags []string, queries []CourseQuery) (AgentAdvice, error)
	}

	PreviousClassGateway interface {
		PreviousClasses(ctx context.Context) ([]PreviousClass, error)
		CreatePreviousClass(ctx context.Context, npc NewPreviousClass) (PreviousClass, error)
		DeletePreviousClass(ctx context.Context, id ID) error
	}

	FriendGateway interface {
		Friends(ctx context.Context) ([]Friend, error)
		SearchFriends(ctx context.Context, query string) ([]Friend, error)
		RemoveFriend(ctx context.Context, id ID) error
		FriendRequests(ctx context.Context) ([]FriendRequest, error)
		SendFriendRequest(ctx context.Context, friendID ID, message string) (FriendRequest, error)
		AcceptFriendRequest(ctx context.Context, requestID ID) error
		RejectFriendRequest(ctx context.Context, requestID ID) error
		CancelFriendRequest(ctx context.Context, requestID ID) error
		ScheduleShares(ctx context.Context) ([]ScheduleShare, error)
		CreateScheduleShare(ctx context.Context, friendID ID, canView, canEdit bool, expiresInDays int) (ScheduleShare, error)
		DeleteScheduleShare(ctx context.Context, shareID ID) error
		SharedSchedules(ctx context.Context) ([]BackendSemester, error)
	}

	UploadGateway interface {
		UploadFile(ctx context.Context, typ, filename string, content io.Reader, notes string) (Upload, error)
		Uploads(ctx context.Context, typ string) ([]Upload, error)
		DeleteUpload(ctx context.Context, id ID) error
	}

	// Gateway is the full remote-backend surface. Components should depend on
	// the narrow interface they consume; concrete implementations provide all.
	Gateway interface {
		AccountGateway
		SemesterGateway
		GenerationGateway
		PreviousClassGateway
		FriendGateway
		UploadGateway
	}
)
