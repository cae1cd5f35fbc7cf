// Command planner is the student-facing CLI: plan semesters, generate a
// schedule with professor picks, track grades and share with friends.
package main

import (
	"log"
	"os"

	"github.com/trezcool/ratiba/core"
	"github.com/trezcool/ratiba/core/account"
	"github.com/trezcool/ratiba/core/friends"
	"github.com/trezcool/ratiba/core/schedule"
	"github.com/trezcool/ratiba/core/uploads"
	"github.com/trezcool/ratiba/services/email"
	"github.com/trezcool/ratiba/services/gateway"
	"github.com/trezcool/ratiba/services/logger"
	"github.com/trezcool/ratiba/storage/session"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "PLANNER : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.NewConfig()

	translator := core.NewTranslator()
	core.InitValidators(core.Validate, translator)
	account.InitValidators(core.Validate, translator)

	appLogger := logsvc.NewRollbarLogger(logger, conf)

	sessions, err := session.Open(conf)
	errAndDie(err)
	defer func() { _ = sessions.Close() }()

	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, appLogger)
	}

	gw := gatewaysvc.NewHTTPGateway(conf, sessions, appLogger)
	store := schedule.NewStore()
	rec := schedule.NewReconciler(store, gw, appLogger)

	cli := &commandLine{
		in:       os.Stdin,
		out:      os.Stdout,
		conf:     conf,
		accounts: account.NewService(gw, sessions, appLogger),
		planner:  schedule.NewService(gw, store, rec, appLogger),
		pipeline: schedule.NewPipeline(conf, gw, store, rec, appLogger),
		friends:  friends.NewService(conf, gw, mailSvc, appLogger),
		uploads:  uploads.NewService(gw, appLogger),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}

func errAndDie(err error) {
	if err != nil {
		logger.Fatal(err)
	}
}
