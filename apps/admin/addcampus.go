package main

import (
	"context"
	"fmt"
	"time"

	"github.com/makonzi/uwepo/core"
	"github.com/makonzi/uwepo/core/campus"
)

// addCampus registers a campus from the legacy "lat,lon;lat,lon;..." format.
func (cli *commandLine) addCampus(name, boundary string) error {
	vertices, err := campus.ParseBoundary(boundary)
	if err != nil {
		return err
	}

	c := campus.Campus{
		Name:      core.CleanString(name),
		Boundary:  vertices,
		CreatedAt: time.Now().UTC(),
	}
	c, err = cli.campusRepo.CreateCampus(context.Background(), c)
	if err != nil {
		return err
	}
	fmt.Printf("campus %q registered with ID %s (%d vertices)\n", c.Name, c.ID, len(c.Boundary))
	return nil
}
