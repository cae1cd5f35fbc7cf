package stubapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/schedule"
)

// --- auth & profile ---

func (s *server) handleLogin(ctx echo.Context) error {
	var form struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := ctx.Bind(&form); err != nil {
		return err
	}

	stu, err := s.authenticate(form.Username, form.Password)
	if err != nil {
		return err
	}
	sess, err := s.session(stu)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (s *server) handleRegister(ctx echo.Context) error {
	var reg core.Registration
	if err := ctx.Bind(&reg); err != nil {
		return err
	}
	if reg.Username == "" || reg.Email == "" || reg.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username, email and password are required")
	}

	stu, err := s.store.register(reg)
	if err != nil {
		return err
	}
	sess, err := s.session(stu)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, sess)
}

func (s *server) handleRefresh(ctx echo.Context) error {
	var form struct {
		RefreshToken string `json:"refreshToken"`
	}
	if err := ctx.Bind(&form); err != nil {
		return err
	}

	stu, err := s.parseRefreshToken(form.RefreshToken)
	if err != nil {
		return err
	}
	sess, err := s.session(stu)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, sess)
}

func (s *server) handleLogout(ctx echo.Context) error {
	// tokens are stateless here; logout is an acknowledgement
	if _, err := s.contextStudent(ctx); err != nil {
		return err
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *server) handleProfile(ctx echo.Context) error {
	stu, err := s.contextStudent(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, stu.profile())
}

func (s *server) handleUpdateProfile(ctx echo.Context) error {
	stu, err := s.contextStudent(ctx)
	if err != nil {
		return err
	}

	var up core.ProfileUpdate
	if err = ctx.Bind(&up); err != nil {
		return err
	}

	s.store.mu.Lock()
	if up.DisplayName != "" {
		stu.displayName = up.DisplayName
	}
	s.store.mu.Unlock()
	return ctx.JSON(http.StatusOK, stu.profile())
}

// --- semesters & classes ---

func (s *server) handleListSemesters(ctx echo.Context) error {
	stu, err := s.contextStudent(ctx)
	if err != nil {
		return err
	}

	year, _ := strconv.Atoi(ctx.QueryParam("year"))
	includeClasses := ctx.QueryParam("include_classes") == "true"

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	out := make([]core.BackendSemester, 0, len(stu.semesters))
	for _, sem := range stu.semesters {
		if year != 0 && sem.Year != year {
			continue
		}
		cp := *sem
		if !includeClasses {
			cp.Classes = nil
		} else {
			cp.Classes = append([]core.BackendClass(nil), sem.Classes...)
		}
		out = append(out, cp)
	}
	return ctx.JSON(http.StatusOK, out)
}

func (s *server) handleCreateSemester(ctx echo.Context) error {
	stu, err := s.contextStudent(ctx)
	if err != nil {
		return err
	}

	var ns core.NewBackendSemester
	if err = ctx.Bind(&ns); err != nil {
		return err
	}
	if ns.Name == "" || ns.Year == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "name and year are required")
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	// creating an existing semester returns it unchanged
	for _, sem := range stu.semesters {
		if sem.Year == ns.Year && sem.Name == ns.Name {
			return ctx.JSON(http.StatusOK, *sem)
		}
	}

	sem := &core.BackendSemester{
		ID:       s.store.newID(),
		Year:     ns.Year,
		Name:     ns.Name,
		Position: ns.Position,
	}
	stu.semesters = append(stu.semesters, sem)
	return ctx.JSON(http.StatusCreated, *sem)
}

func (s *server) handleCreateClass(ctx echo.Context) error {
	stu, err := s.contextStudent(ctx)
	if err != nil {
		return err
	}

	var nc core.NewBackendClass
	if err = ctx.Bind(&nc); err != nil {
		return err
	}
	if nc.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	sem := findSemester(stu, core.ID(ctx.Param("id")))
	if sem == nil {
		return errNotFound
	}

	rmp := nc.RateMyProfessorURL
	if rmp == "" {
		rmp = nc.RMPLink
	}
	credits := nc.Credits
	if credits <= 0 {
		credits = 3
	}
	professor := nc.Professor
	if professor == "" {
		professor = schedule.ProfessorTBD
	}
	cls := core.BackendClass{
		ID:                 s.store.newID(),
		Name:               nc.Name,
		Credits:            credits,
		Professor:          professor,
		RateMyProfessorURL: rmp,
	}
	sem.Classes = append(sem.Classes, cls)
	return ctx.JSON(http.StatusCreated, cls)
}

func (s *server) handleDeleteClass(ctx echo.Context) error {
	stu, err := s.contextStudent(ctx)
	if err != nil {
		return err
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	sem := findSemester(stu, core.ID(ctx.Param("id")))
	if sem == nil {
		return errNotFound
	}

	classID := core.ID(ctx.Param("classID"))
	classes := sem.Classes[:0]
	var found bool
	for _, cls := range sem.Classes {
		if cls.ID == classID {
			found = true
			continue
		}
		classes = append(classes, cls)
	}
	if !found {
		return errNotFound
	}
	sem.Classes = classes
	return ctx.NoContent(http.StatusNoContent)
}

// findSemester expects the store lock to be held.
func findSemester(stu *student, id core.ID) *core.BackendSemester {
	for _, sem := range stu.semesters {
		if sem.ID == id {
			return sem
		}
	}
	return nil
}

// --- generation ---

func (s *server) handleGenerateSchedule(ctx echo.Context) error {
	if _, err := s.contextStudent(ctx); err != nil {
		return err
	}

	var payload struct {
		Courses []core.CourseStub `json:"courses"`
	}
	if err := ctx.Bind(&payload); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"schedule": generateSchedule(payload.Courses)})
}

func (s *server) handleAgentRecommend(ctx echo.Context) error {
	if _, err := s.contextStudent(ctx); err != nil {
		return err
	}

	var payload struct {
		Preferences []string           `json:"preferences"`
		Courses     []core.CourseQuery `json:"courses"`
	}
	if err := ctx.Bind(&payload); err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, core.AgentAdvice{
		Success:         true,
		Recommendations: recommend(payload.Courses),
	})
}

// --- previous classes ---

func (s *server) handleListPreviousClasses(ctx echo.Context) error {
	stu, err := s.contextStudent(ctx)
	if err != nil {
		return err
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	return ctx.JSON(http.StatusOK, append([]core.PreviousClass(nil), stu.previous...))
}

func (s *server) handleCreatePreviousClass(ctx echo.Context) error {
	stu, err := s.contextStudent(ctx)
	if err != nil {
		return err
	}

	var npc core.NewPreviousClass
	if err = ctx.Bind(&npc); err != nil {
		return err
	}
	if npc.Course == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "course is required")
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	rec := core.PreviousClass{
		ID:        s.store.newID(),
		Course:    npc.Course,
		Semester:  npc.Semester,
		Grade:     npc.Grade,
		Professor: npc.Professor,
	}
	stu.previous = append(stu.previous, rec)
	return ctx.JSON(http.StatusCreated, rec)
}

func (s *server) handleDeletePreviousClass(ctx echo.Context) error {
	stu, err := s.contextStudent(ctx)
	if err != nil {
		return err
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	id := core.ID(ctx.Param("id"))
	records := stu.previous[:0]
	var found bool
	for _, rec := range stu.previous {
		if rec.ID == id {
			found = true
			continue
		}
		records = append(records, rec)
	}
	if !found {
		return errNotFound
	}
	stu.previous = records
	return ctx.NoContent(http.StatusNoContent)
}

// --- friends & shares ---

func (s *server) handleListFriends(ctx echo.Context) error {
	stu, err := s.contextStudent(ctx)
	if err != nil {
		return err
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	return ctx.JSON(http.StatusOK, append([]core.Friend(nil), stu.friends...))
}

func (s *server) handleSearchFriends(ctx echo.Context) error {
	stu, err := s.contextStudent(ctx)
	if err != nil {
		return err
	}

	query := ctx.QueryParam("q")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	// every other registered student is searchable
	matches := make([]core.Friend, 0)
	for _, other := range s.store.students {
		if other.username == stu.username {
			continue
		}
		candidate := core.Friend{ID: other.id, Name: other.displayName, Email: other.email}
		if matchesQuery(candidate, query) {
			matches = append(matches, candidate)
		}
	}
	return ctx.JSON(http.StatusOK, matches)
}

func (s *server) handleRemoveFriend(ctx echo.Context) error {
	stu, err := s.contextStudent(ctx)
	if err != nil {
		return err
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	id := core.ID(ctx.Param("id"))
	friends := stu.friends[:0]
	var found bool
	for _, f := range stu.friends {
		if f.ID == id {
			found = true
			continue
		}
		friends = append(friends, f)
	}
	if !found {
		return errNotFound
	}
	stu.friends = friends
	return ctx.NoContent(http.StatusNoContent)
}

func (s *server) handleListFriendRequests(ctx echo.Context) error {
	stu, err := s.contextStudent(ctx)
	if err != nil {
		return err
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	return ctx.JSON(http.StatusOK, append([]core.FriendRequest(nil), stu.requests...))
}

func (s *server) handleSendFriendRequest(ctx echo.Context) error {
	stu, err := s.contextStudent(ctx)
	if err != nil {
		return err
	}

	var form struct {
		FriendID core.ID `json:"friendId"`
		Message  string  `json:"message"`
	}
	if err = ctx.Bind(&form); err != nil {
		return err
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	var target *student
	for _, other := range s.store.students {
		if other.id == form.FriendID {
			target = other
			break
		}
	}
	if target == nil {
		return errNotFound
	}

	req := core.FriendRequest{
		ID:       s.store.newID(),
		Name:     target.displayName,
		Email:    target.email,
		Outgoing: true,
	}
	stu.requests = append(stu.requests, req)
	target.requests = append(target.requests, core.FriendRequest{
		ID:    req.ID,
		Name:  stu.displayName,
		Email: stu.email,
	})
	return ctx.JSON(http.StatusCreated, req)
}

func (s *server) handleAcceptFriendRequest(ctx echo.Context) error {
	return s.resolveFriendRequest(ctx, true)
}

func (s *server) handleRejectFriendRequest(ctx echo.Context) error {
	return s.resolveFriendRequest(ctx, false)
}

func (s *server) resolveFriendRequest(ctx echo.Context, accept bool) error {
	stu, err := s.contextStudent(ctx)
	if err != nil {
		return err
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	id := core.ID(ctx.Param("id"))
	var resolved core.FriendRequest
	var found bool
	requests := stu.requests[:0]
	for _, req := range stu.requests {
		if req.ID == id && !req.Outgoing {
			resolved, found = req, true
			continue
		}
		requests = append(requests, req)
	}
	if !found {
		return errNotFound
	}
	stu.requests = requests

	if accept {
		for _, other := range s.store.students {
			if other.email != resolved.Email {
				continue
			}
			stu.friends = append(stu.friends, core.Friend{ID: other.id, Name: other.displayName, Email: other.email})
			other.friends = append(other.friends, core.Friend{ID: stu.id, Name: stu.displayName, Email: stu.email})

			// clear the mirrored outgoing request
			mirror := other.requests[:0]
			for _, req := range other.requests {
				if req.ID != id {
					mirror = append(mirror, req)
				}
			}
			other.requests = mirror
			break
		}
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *server) handleCancelFriendRequest(ctx echo.Context) error {
	stu, err := s.contextStudent(ctx)
	if err != nil {
		return err
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	id := core.ID(ctx.Param("id"))
	requests := stu.requests[:0]
	var found bool
	for _, req := range stu.requests {
		if req.ID == id && req.Outgoing {
			found = true
			continue
		}
		requests = append(requests, req)
	}
	if !found {
		return errNotFound
	}
	stu.requests = requests
	return ctx.NoContent(http.StatusNoContent)
}

func (s *server) handleListShares(ctx echo.Context) error {
	stu, err := s.contextStudent(ctx)
	if err != nil {
		return err
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()
	return ctx.JSON(http.StatusOK, append([]core.ScheduleShare(nil), stu.shares...))
}

func (s *server) handleCreateShare(ctx echo.Context) error {
	stu, err := s.contextStudent(ctx)
	if err != nil {
		return err
	}

	var form struct {
		FriendID      core.ID `json:"friendId"`
		CanView       bool    `json:"canView"`
		CanEdit       bool    `json:"canEdit"`
		ExpiresInDays int     `json:"expiresInDays"`
	}
	if err = ctx.Bind(&form); err != nil {
		return err
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	share := core.ScheduleShare{
		ID:       s.store.newID(),
		FriendID: form.FriendID,
		CanView:  form.CanView,
		CanEdit:  form.CanEdit,
	}
	if form.ExpiresInDays > 0 {
		share.ExpiresAt.SetValid(time.Now().UTC().AddDate(0, 0, form.ExpiresInDays))
	}
	stu.shares = append(stu.shares, share)
	return ctx.JSON(http.StatusCreated, share)
}

func (s *server) handleDeleteShare(ctx echo.Context) error {
	stu, err := s.contextStudent(ctx)
	if err != nil {
		return err
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	id := core.ID(ctx.Param("id"))
	shares := stu.shares[:0]
	var found bool
	for _, share := range stu.shares {
		if share.ID == id {
			found = true
			continue
		}
		shares = append(shares, share)
	}
	if !found {
		return errNotFound
	}
	stu.shares = shares
	return ctx.NoContent(http.StatusNoContent)
}

func (s *server) handleSharedSchedules(ctx echo.Context) error {
	stu, err := s.contextStudent(ctx)
	if err != nil {
		return err
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	// semesters of friends who shared their schedule with this student
	out := make([]core.BackendSemester, 0)
	for _, other := range s.store.students {
		if other.username == stu.username {
			continue
		}
		for _, share := range other.shares {
			if share.FriendID != stu.id || !share.CanView {
				continue
			}
			for _, sem := range other.semesters {
				cp := *sem
				cp.Classes = append([]core.BackendClass(nil), sem.Classes...)
				out = append(out, cp)
			}
			break
		}
	}
	return ctx.JSON(http.StatusOK, out)
}

// --- uploads ---

func (s *server) handleUpload(ctx echo.Context) error {
	stu, err := s.contextStudent(ctx)
	if err != nil {
		return err
	}

	typ := ctx.FormValue("type")
	if typ == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "type is required")
	}
	file, err := ctx.FormFile("file")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	up := core.Upload{
		ID:         s.store.newID(),
		Type:       typ,
		Filename:   file.Filename,
		UploadedAt: time.Now().UTC(),
	}
	if notes := ctx.FormValue("notes"); notes != "" {
		up.Notes.SetValid(notes)
	}
	stu.uploads = append(stu.uploads, up)
	return ctx.JSON(http.StatusCreated, up)
}

func (s *server) handleListUploads(ctx echo.Context) error {
	stu, err := s.contextStudent(ctx)
	if err != nil {
		return err
	}

	typ := ctx.QueryParam("type")

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	out := make([]core.Upload, 0, len(stu.uploads))
	for _, up := range stu.uploads {
		if typ != "" && up.Type != typ {
			continue
		}
		out = append(out, up)
	}
	return ctx.JSON(http.StatusOK, out)
}

func (s *server) handleDeleteUpload(ctx echo.Context) error {
	stu, err := s.contextStudent(ctx)
	if err != nil {
		return err
	}

	s.store.mu.Lock()
	defer s.store.mu.Unlock()

	id := core.ID(ctx.Param("id"))
	uploads := stu.uploads[:0]
	var found bool
	for _, up := range stu.uploads {
		if up.ID == id {
			found = true
			continue
		}
		uploads = append(uploads, up)
	}
	if !found {
		return errNotFound
	}
	stu.uploads = uploads
	return ctx.NoContent(http.StatusNoContent)
}
