package campus

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/paulmach/orb"

	"github.com/makonzi/uwepo/core"
)

// Vertex is one corner of a campus boundary polygon.
type Vertex struct {
	Lat float64 `json:"lat" bson:"lat" validate:"min=-90,max=90"`
	Lon float64 `json:"lon" bson:"lon" validate:"min=-180,max=180"`
}

// Campus is a university site with a polygonal geofence boundary.
// The boundary is immutable while attendance sessions reference it.
type Campus struct {
	ID        string    `json:"id" bson:"_id,omitempty"`
	Name      string    `json:"name" bson:"name"`
	Boundary  []Vertex  `json:"boundary" bson:"boundary"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"` // UTC
}

// ring converts the boundary into a closed orb.Ring ((lon, lat) order).
func (c Campus) ring() orb.Ring {
	ring := make(orb.Ring, 0, len(c.Boundary)+1)
	for _, v := range c.Boundary {
		ring = append(ring, orb.Point{v.Lon, v.Lat})
	}
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}

// NewCampus contains information needed to register a new Campus.
type NewCampus struct {
	Name     string   `json:"name" validate:"required"`
	Boundary []Vertex `json:"boundary" validate:"required,min=3,dive"`
}

func (nc *NewCampus) Validate(validate *validator.Validate) error {
	nc.Name = core.CleanString(nc.Name)
	return validate.Struct(nc)
}

// ParseBoundary parses the legacy "lat,lon;lat,lon;..." boundary wire format.
func ParseBoundary(s string) ([]Vertex, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), ";"))
	if s == "" {
		return nil, fmt.Errorf("empty boundary")
	}
	pairs := strings.Split(s, ";")
	verts := make([]Vertex, 0, len(pairs))
	for _, pair := range pairs {
		parts := strings.Split(strings.TrimSpace(pair), ",")
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid boundary point %q", pair)
		}
		lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid latitude %q", parts[0])
		}
		lon, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid longitude %q", parts[1])
		}
		verts = append(verts, Vertex{Lat: lat, Lon: lon})
	}
	if len(verts) < 3 {
		return nil, fmt.Errorf("boundary needs at least 3 vertices, got %d", len(verts))
	}
	return verts, nil
}
