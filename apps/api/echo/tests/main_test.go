package tests

import (
	"log"
	"os"
	"testing"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/go-playground/locales/en"

	. "github.com/makonzi/uwepo/apps/api/echo"
	"github.com/makonzi/uwepo/core"
	"github.com/makonzi/uwepo/core/announcement"
	"github.com/makonzi/uwepo/core/attendance"
	"github.com/makonzi/uwepo/core/campus"
	"github.com/makonzi/uwepo/core/inventory"
	"github.com/makonzi/uwepo/core/leave"
	"github.com/makonzi/uwepo/core/user"
	emailsvc "github.com/makonzi/uwepo/services/email"
	logsvc "github.com/makonzi/uwepo/services/logger"
	reportsvc "github.com/makonzi/uwepo/services/report"
	inmemdb "github.com/makonzi/uwepo/storage/database/inmem"
)

var (
	db  *inmemdb.DB
	app Server

	usrRepo    user.Repository
	campusRepo campus.Repository
	attRepo    attendance.Repository
)

func TestMain(m *testing.M) {
	conf := core.LoadConfig()
	conf.TestMode = true
	conf.Debug = false

	logger := logsvc.NewRollbarLogger(log.New(os.Stdout, "TEST : ", log.LstdFlags), conf)
	logger.Enable(false)

	// set up DB & repos
	db = inmemdb.Open()
	usrRepo = inmemdb.NewUserRepository(db)
	campusRepo = inmemdb.NewCampusRepository(db)
	attRepo = inmemdb.NewAttendanceRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock()
	usrSvc := user.NewService(usrRepo, mailSvc, logger)
	campusSvc := campus.NewService(campusRepo)
	leaveSvc := leave.NewService(inmemdb.NewLeaveRepository(db))
	invSvc := inventory.NewService(inmemdb.NewInventoryRepository(db))
	annSvc := announcement.NewService(inmemdb.NewAnnouncementRepository(db))
	attSvc := attendance.NewService(attRepo, campusSvc, usrSvc, nil /* legacy */)

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// set up server
	app = NewServer(&Options{
		DisableReqLogs:  true,
		Validate:        validate,
		Translator:      translator,
		Logger:          logger,
		SignalShutdown:  func() {},
		UserSvc:         usrSvc,
		CampusSvc:       campusSvc,
		AttendanceSvc:   attSvc,
		LeaveSvc:        leaveSvc,
		InventorySvc:    invSvc,
		AnnouncementSvc: annSvc,
		ReportSvc:       reportsvc.NewService(conf.AppName),
	})

	os.Exit(m.Run())
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
