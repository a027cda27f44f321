package echoapi

import (
	"context"
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/makonzi/uwepo/core"
	"github.com/makonzi/uwepo/core/announcement"
	"github.com/makonzi/uwepo/core/attendance"
	"github.com/makonzi/uwepo/core/campus"
	"github.com/makonzi/uwepo/core/inventory"
	"github.com/makonzi/uwepo/core/leave"
	"github.com/makonzi/uwepo/core/user"
	reportsvc "github.com/makonzi/uwepo/services/report"
)

type (
	Options struct {
		Address         string
		DisableReqLogs  bool
		Validate        *validator.Validate
		Translator      ut.Translator
		Logger          core.Logger
		SignalShutdown  func()
		UserSvc         *user.Service
		CampusSvc       *campus.Service
		AttendanceSvc   *attendance.Service
		LeaveSvc        *leave.Service
		InventorySvc    *inventory.Service
		AnnouncementSvc *announcement.Service
		ReportSvc       *reportsvc.Service
	}

	Server interface {
		http.Handler
		Start()
		Stop(context.Context) error
	}

	server struct {
		opts *Options
		app  *echo.Echo
	}
)

var _ Server = (*server)(nil)

func NewServer(opts *Options) Server {
	s := &server{
		opts: opts,
		app:  echo.New(),
	}
	s.setup()
	return s
}

func (s *server) setup() {
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.opts.DisableReqLogs {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(core.Conf.Debug || core.Conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.opts.Logger, s.opts.Translator, s.opts.SignalShutdown)
	s.app.Debug = core.Conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerUserAPI(v1, jwt, s.opts)
	registerCampusAPI(v1, jwt, s.opts)
	registerAttendanceAPI(v1, jwt, s.opts)
	registerLeaveAPI(v1, jwt, s.opts)
	registerInventoryAPI(v1, jwt, s.opts)
	registerAnnouncementAPI(v1, jwt, s.opts)
	registerReportAPI(v1, jwt, s.opts)
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
	return ctx.String(http.StatusOK, "Welcome to Uwepo API!")
}
