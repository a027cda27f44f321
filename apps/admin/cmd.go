package main

import (
	"errors"
	"flag"
	"fmt"
	"syscall"

	"golang.org/x/term"

	"github.com/makonzi/uwepo/core/campus"
	"github.com/makonzi/uwepo/core/user"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	usrRepo    user.Repository
	campusRepo campus.Repository
}

func (cli *commandLine) printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  adduser -email EMAIL -name FULL_NAME [-employee-id ID] [-campus CAMPUS_ID] - bootstrap an active super admin account")
	fmt.Println("  addcampus -name NAME -boundary \"lat,lon;lat,lon;...\" - register a campus with its geofence boundary")
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	addUserCmd := flag.NewFlagSet("adduser", flag.ExitOnError)
	addUserEmail := addUserCmd.String("email", "", "The user's email. The password will be prompted next.")
	addUserName := addUserCmd.String("name", "", "The user's full name.")
	addUserEmpID := addUserCmd.String("employee-id", "", "Optional employee ID; one is generated when omitted.")
	addUserCampus := addUserCmd.String("campus", "", "Optional home campus ID.")

	addCampusCmd := flag.NewFlagSet("addcampus", flag.ExitOnError)
	addCampusName := addCampusCmd.String("name", "", "The campus name.")
	addCampusBoundary := addCampusCmd.String("boundary", "", `The boundary vertices as "lat,lon;lat,lon;..." (at least 3).`)

	switch args[1] {
	case "adduser":
		if err := addUserCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addUserEmail == "" || *addUserName == "" {
			addUserCmd.Usage()
			return errHelp
		}
		fmt.Print("Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Println()
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			addUserCmd.Usage()
			return errHelp
		}
		return cli.addUser(*addUserEmail, *addUserName, string(pwd), *addUserEmpID, *addUserCampus)
	case "addcampus":
		if err := addCampusCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *addCampusName == "" || *addCampusBoundary == "" {
			addCampusCmd.Usage()
			return errHelp
		}
		return cli.addCampus(*addCampusName, *addCampusBoundary)
	default:
		cli.printUsage()
		return errHelp
	}
}
