package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/makonzi/uwepo/apps/api/echo"
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
	epushdb "github.com/makonzi/uwepo/storage/database/epush"
	"github.com/makonzi/uwepo/storage/database/mongodb"
)

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.LoadConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	db, err := mongodb.Open(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up database: %v", err), err)
	}
	defer func() { _ = db.Client().Disconnect(context.Background()) }()

	if err = mongodb.EnsureIndexes(context.Background(), db); err != nil {
		logger.Fatal(fmt.Sprintf("creating indexes: %v", err), err)
	}

	legacy, err := epushdb.Open(conf)
	if err != nil {
		// legacy machines being down should not stop the API
		logger.Error(fmt.Sprintf("opening legacy DB: %v", err), err)
	}

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService()
	} else {
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	usrSvc := user.NewService(mongodb.NewUserRepository(db), mailSvc, logger)
	campusSvc := campus.NewService(mongodb.NewCampusRepository(db))
	leaveSvc := leave.NewService(mongodb.NewLeaveRepository(db))
	invSvc := inventory.NewService(mongodb.NewInventoryRepository(db))
	annSvc := announcement.NewService(mongodb.NewAnnouncementRepository(db))
	repSvc := reportsvc.NewService(conf.AppName)

	var punchSrc attendance.PunchSource
	if legacy != nil {
		punchSrc = legacy
	}
	attSvc := attendance.NewService(mongodb.NewAttendanceRepository(db), campusSvc, usrSvc, punchSrc)

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// =========================================================================
	// Start API Service

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	server := echoapi.NewServer(&echoapi.Options{
		Address:         conf.ServerAddress(),
		Validate:        validate,
		Translator:      translator,
		Logger:          logger,
		SignalShutdown:  func() { shutdown <- syscall.SIGTERM },
		UserSvc:         usrSvc,
		CampusSvc:       campusSvc,
		AttendanceSvc:   attSvc,
		LeaveSvc:        leaveSvc,
		InventorySvc:    invSvc,
		AnnouncementSvc: annSvc,
		ReportSvc:       repSvc,
	})

	go server.Start()

	// =========================================================================
	// Shutdown

	sig := <-shutdown
	logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

	// give outstanding requests a deadline for completion
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err = server.Stop(ctx); err != nil {
		logger.Fatal(fmt.Sprintf("could not stop server gracefully: %v", err), err)
	}
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
