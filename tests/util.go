package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/makonzi/uwepo/core/attendance"
	"github.com/makonzi/uwepo/core/campus"
	"github.com/makonzi/uwepo/core/user"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	fullName, email, employeeID, pwd string,
	role user.Role,
	campusID string,
	isActive bool,
) user.User {
	t.Helper()

	tstamp := time.Now().UTC()
	usr := user.User{
		EmployeeID: employeeID,
		Email:      email,
		FullName:   fullName,
		Role:       role,
		CampusID:   campusID,
		IsActive:   isActive,
		CreatedAt:  tstamp,
		UpdatedAt:  tstamp,
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(context.Background(), usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

func CreateCampus(t *testing.T, repo campus.Repository, name string, boundary []campus.Vertex) campus.Campus {
	t.Helper()

	c, err := repo.CreateCampus(context.Background(), campus.Campus{
		Name:      name,
		Boundary:  boundary,
		CreatedAt: time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("CreateCampus() failed: %v", err)
	}
	return c
}

// SquareBoundary is a 10x10 degree square anchored at the origin.
func SquareBoundary() []campus.Vertex {
	return []campus.Vertex{
		{Lat: 0, Lon: 0},
		{Lat: 0, Lon: 10},
		{Lat: 10, Lon: 10},
		{Lat: 10, Lon: 0},
	}
}

func CreateRecord(t *testing.T, repo attendance.Repository, rec attendance.Record) attendance.Record {
	t.Helper()

	rec, err := repo.CreateRecord(context.Background(), rec)
	if err != nil {
		t.Fatalf("CreateRecord() failed: %v", err)
	}
	return rec
}
