package main

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/makonzi/uwepo/core"
	"github.com/makonzi/uwepo/core/user"
)

// addUser creates (or re-activates) a super admin account.
// Signup via the API derives roles from the email shape; this bypasses that so
// the first operator account can exist before any director address does.
func (cli *commandLine) addUser(email, fullName, pwd, employeeID, campusID string) error {
	ctx := context.Background()
	email = core.CleanString(email, true /* lower */)
	fullName = core.CleanString(fullName)

	if usr, err := cli.usrRepo.GetUserByEmail(ctx, email); err == nil {
		usr.Role = user.RoleSuperAdmin
		usr.IsActive = true
		if err = usr.SetPassword(pwd); err != nil {
			return err
		}
		usr.UpdatedAt = time.Now().UTC()
		_, err = cli.usrRepo.UpdateUser(ctx, usr)
		return err
	} else if err != user.ErrNotFound {
		return err
	}

	if employeeID == "" {
		employeeID = "emp-" + strings.Split(uuid.New().String(), "-")[0]
	}
	now := time.Now().UTC()
	usr := user.User{
		EmployeeID: employeeID,
		Email:      email,
		FullName:   fullName,
		Role:       user.RoleSuperAdmin,
		CampusID:   campusID,
		IsActive:   true,
		FirstLogin: true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	_, err := cli.usrRepo.CreateUser(ctx, usr)
	return err
}
