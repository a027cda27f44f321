package main

import (
	"context"
	"log"
	"os"

	"github.com/makonzi/uwepo/core"
	"github.com/makonzi/uwepo/storage/database/mongodb"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	conf := core.LoadConfig()

	// set up DB
	db, err := mongodb.Open(conf)
	errAndDie(err)
	defer func() { _ = db.Client().Disconnect(context.Background()) }()
	errAndDie(mongodb.EnsureIndexes(context.Background(), db))

	// start CLI
	cli := commandLine{
		usrRepo:    mongodb.NewUserRepository(db),
		campusRepo: mongodb.NewCampusRepository(db),
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
