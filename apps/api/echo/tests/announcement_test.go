package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/makonzi/uwepo/core/announcement"
	"github.com/makonzi/uwepo/core/user"
	testutil "github.com/makonzi/uwepo/tests"
)

func Test_announcementApi(t *testing.T) {
	resetDB(t)

	emp := testutil.CreateUser(t, usrRepo, "Jane Doe", "jane.doe@dseu.ac.in", "emp-1", "", user.RoleEmployee, "c1", true)
	admin := testutil.CreateUser(t, usrRepo, "Director", "director-north@dseu.ac.in", "emp-2", "", user.RoleAdmin, "c1", true)
	otherAdmin := testutil.CreateUser(t, usrRepo, "Director South", "director-south@dseu.ac.in", "emp-3", "", user.RoleAdmin, "c2", true)
	vc := testutil.CreateUser(t, usrRepo, "VC", "vc@dseu.ac.in", "emp-vc", "", user.RoleSuperAdmin, "", true)

	post := func(t *testing.T, token string, na announcement.NewAnnouncement) (int, string) {
		t.Helper()
		req, rec := newAuthRequest(http.MethodPost, "/v1/announcements", token, marchallObj(t, na))
		app.ServeHTTP(rec, req)
		return rec.Code, rec.Body.String()
	}

	t.Run("employees may not post", func(t *testing.T) {
		code, _ := post(t, getToken(t, emp), announcement.NewAnnouncement{
			Title: "Lost keys", Body: "Found a set of keys in block B.", Level: announcement.LevelCampus,
		})
		if code != http.StatusForbidden {
			t.Errorf("code = %v; want %v", code, http.StatusForbidden)
		}
	})

	t.Run("university level is reserved for the VC office", func(t *testing.T) {
		code, _ := post(t, getToken(t, admin), announcement.NewAnnouncement{
			Title: "Big news", Body: "Everyone read this.", Level: announcement.LevelUniversity,
		})
		if code != http.StatusForbidden {
			t.Errorf("code = %v; want %v", code, http.StatusForbidden)
		}
	})

	t.Run("feed mixes university and own-campus posts", func(t *testing.T) {
		if code, body := post(t, getToken(t, admin), announcement.NewAnnouncement{
			Title: "North exams", Body: "Exams start Monday.", Level: announcement.LevelCampus,
		}); code != http.StatusCreated {
			t.Fatalf("campus post code = %v (%s)", code, body)
		}
		if code, body := post(t, getToken(t, otherAdmin), announcement.NewAnnouncement{
			Title: "South exams", Body: "Exams start Tuesday.", Level: announcement.LevelCampus,
		}); code != http.StatusCreated {
			t.Fatalf("campus post code = %v (%s)", code, body)
		}
		if code, body := post(t, getToken(t, vc), announcement.NewAnnouncement{
			Title: "Convocation", Body: "Convocation on the 25th.", Level: announcement.LevelUniversity,
		}); code != http.StatusCreated {
			t.Fatalf("university post code = %v (%s)", code, body)
		}

		req, rec := newAuthRequest(http.MethodGet, "/v1/announcements", getToken(t, emp))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("feed code = %v (%s)", rec.Code, rec.Body.String())
		}
		var feed []announcement.Announcement
		if err := json.Unmarshal(rec.Body.Bytes(), &feed); err != nil {
			t.Fatalf("decoding feed: %v", err)
		}
		if len(feed) != 2 {
			t.Fatalf("len(feed) = %d; want 2 (university + own campus)", len(feed))
		}
		for _, a := range feed {
			if a.Title == "South exams" {
				t.Error("feed leaked another campus's announcement")
			}
		}
	})

	t.Run("bad since parameter", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/announcements?since=yesterday", getToken(t, emp))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, httpErr{Error: "since must be YYYY-MM-DD"}),
		}, rec)
	})
}
