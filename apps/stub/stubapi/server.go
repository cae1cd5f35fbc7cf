// Package stubapi is a self-contained stand-in for the university planning
// backend: seeded accounts, in-memory state and canned generator output. It
// exists for local development and for exercising the HTTP gateway in tests.
package stubapi

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
)

type (
	Options struct {
		Address        string
		SecretKey      []byte
		Debug          bool
		DisableReqLogs bool
	}

	Server interface {
		http.Handler
		Start()
		Stop(ctx context.Context) error
	}

	server struct {
		opts  *Options
		app   *echo.Echo
		store *memoryStore
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts:  opts,
		app:   echo.New(),
		store: newMemoryStore(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	if !s.opts.Debug {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Debug = s.opts.Debug
	s.app.HTTPErrorHandler = appHTTPErrorHandler

	s.app.GET("/", home)

	s.app.POST("/auth/login", s.handleLogin)
	s.app.POST("/auth/register", s.handleRegister)
	s.app.POST("/auth/refresh", s.handleRefresh)

	jwt := middleware.JWTWithConfig(s.jwtConfig())
	authed := s.app.Group("", jwt)

	authed.POST("/auth/logout", s.handleLogout)
	authed.GET("/me", s.handleProfile)
	authed.PATCH("/me", s.handleUpdateProfile)

	authed.GET("/semesters", s.handleListSemesters)
	authed.POST("/semesters", s.handleCreateSemester)
	authed.POST("/semesters/:id/classes", s.handleCreateClass)
	authed.DELETE("/semesters/:id/classes/:classID", s.handleDeleteClass)

	authed.POST("/generate-schedule", s.handleGenerateSchedule)
	authed.POST("/api/agent/recommend", s.handleAgentRecommend)

	authed.GET("/previous-classes", s.handleListPreviousClasses)
	authed.POST("/previous-classes", s.handleCreatePreviousClass)
	authed.DELETE("/previous-classes/:id", s.handleDeletePreviousClass)

	authed.GET("/friends", s.handleListFriends)
	authed.GET("/friends/search", s.handleSearchFriends)
	authed.DELETE("/friends/:id", s.handleRemoveFriend)
	authed.GET("/friends/requests", s.handleListFriendRequests)
	authed.POST("/friends/requests", s.handleSendFriendRequest)
	authed.POST("/friends/requests/:id/accept", s.handleAcceptFriendRequest)
	authed.POST("/friends/requests/:id/reject", s.handleRejectFriendRequest)
	authed.DELETE("/friends/requests/:id", s.handleCancelFriendRequest)

	authed.GET("/schedule-shares", s.handleListShares)
	authed.POST("/schedule-shares", s.handleCreateShare)
	authed.DELETE("/schedule-shares/:id", s.handleDeleteShare)
	authed.GET("/schedule-shares/received", s.handleSharedSchedules)

	authed.POST("/uploads", s.handleUpload)
	authed.GET("/uploads", s.handleListUploads)
	authed.DELETE("/uploads/:id", s.handleDeleteUpload)
}

func (s *server) Start() {
	s.app.Logger.Fatal(s.app.Start(s.opts.Address))
}

func (s *server) Stop(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Ratiba stub backend")
}
