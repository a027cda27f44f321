package inmemdb

import (
	"fmt"
	"sync"

	"github.com/makonzi/uwepo/core/announcement"
	"github.com/makonzi/uwepo/core/attendance"
	"github.com/makonzi/uwepo/core/campus"
	"github.com/makonzi/uwepo/core/inventory"
	"github.com/makonzi/uwepo/core/leave"
	"github.com/makonzi/uwepo/core/user"
)

// DB is a mutex-guarded map store mirroring the document store's semantics.
// It backs the test suites and local hacking without a running database.
type DB struct {
	mutex sync.RWMutex

	pkCount       int
	users         map[string]*user.User
	campuses      map[string]*campus.Campus
	campusOrder   []string
	records       map[string]*attendance.Record
	leaves        map[string]*leave.Request
	holidays      []leave.Holiday
	items         map[string]*inventory.Item
	itemRequests  map[string]*inventory.Request
	announcements map[string]*announcement.Announcement
}

func Open() *DB {
	return &DB{
		users:         make(map[string]*user.User),
		campuses:      make(map[string]*campus.Campus),
		records:       make(map[string]*attendance.Record),
		leaves:        make(map[string]*leave.Request),
		items:         make(map[string]*inventory.Item),
		itemRequests:  make(map[string]*inventory.Request),
		announcements: make(map[string]*announcement.Announcement),
	}
}

// nextID must be called with the write lock held.
func (db *DB) nextID() string {
	db.pkCount++
	return fmt.Sprintf("%d", db.pkCount)
}

// AddHoliday seeds the holiday calendar.
func (db *DB) AddHoliday(h leave.Holiday) {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	h.ID = db.nextID()
	db.holidays = append(db.holidays, h)
}

// Reset drops everything; test helpers use it between cases.
func (db *DB) Reset() {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	db.pkCount = 0
	db.users = make(map[string]*user.User)
	db.campuses = make(map[string]*campus.Campus)
	db.campusOrder = nil
	db.records = make(map[string]*attendance.Record)
	db.leaves = make(map[string]*leave.Request)
	db.holidays = nil
	db.items = make(map[string]*inventory.Item)
	db.itemRequests = make(map[string]*inventory.Request)
	db.announcements = make(map[string]*announcement.Announcement)
}
