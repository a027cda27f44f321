package tests

import (
	"encoding/json"
	"net/http"
	"regexp"
	"testing"

	"github.com/makonzi/uwepo/apps/api/echo"
	"github.com/makonzi/uwepo/core/user"
	emailsvc "github.com/makonzi/uwepo/services/email"
	testutil "github.com/makonzi/uwepo/tests"
)

var otpRegex = regexp.MustCompile(`\b\d{6}\b`)

// lastMailedOTP digs the code out of the most recent console email.
func lastMailedOTP(t *testing.T) string {
	t.Helper()
	if len(emailsvc.SentMessages) == 0 {
		t.Fatal("no OTP email was sent")
	}
	msg := emailsvc.SentMessages[len(emailsvc.SentMessages)-1]
	code := otpRegex.FindString(msg.BodyStr)
	if code == "" {
		t.Fatalf("no OTP found in email body: %q", msg.BodyStr)
	}
	return code
}

func Test_userApi_signupFlow(t *testing.T) {
	resetDB(t)

	signup := marchallObj(t, user.NewUser{
		Email:    "jane.doe@dseu.ac.in",
		Password: "LeT@1234",
		FullName: "Jane Doe",
		CampusID: "c1",
	})
	login := marchallObj(t, echoapi.LoginRequest{Email: "jane.doe@dseu.ac.in", Password: "LeT@1234"})

	// sign up
	req, rec := newRequest(http.MethodPost, "/v1/users/signup", signup)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup code = %v; want %v (%s)", rec.Code, http.StatusCreated, rec.Body.String())
	}

	// duplicate email is refused
	req, rec = newRequest(http.MethodPost, "/v1/users/signup", signup)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("duplicate signup code = %v; want %v", rec.Code, http.StatusBadRequest)
	}

	// login before verification is refused
	req, rec = newRequest(http.MethodPost, "/v1/users/login", login)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Errorf("unverified login code = %v; want %v", rec.Code, http.StatusForbidden)
	}

	// a wrong code is refused
	req, rec = newRequest(http.MethodPost, "/v1/users/verify-otp",
		marchallObj(t, user.VerifyOTP{Email: "jane.doe@dseu.ac.in", OTP: "000000"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bogus OTP code = %v; want %v", rec.Code, http.StatusBadRequest)
	}

	// verify with the mailed code
	req, rec = newRequest(http.MethodPost, "/v1/users/verify-otp",
		marchallObj(t, user.VerifyOTP{Email: "jane.doe@dseu.ac.in", OTP: lastMailedOTP(t)}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("verify code = %v; want %v (%s)", rec.Code, http.StatusOK, rec.Body.String())
	}

	// log in
	req, rec = newRequest(http.MethodPost, "/v1/users/login", login)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("login code = %v; want %v (%s)", rec.Code, http.StatusOK, rec.Body.String())
	}
	var res echoapi.LoginResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &res); err != nil {
		t.Fatalf("decoding login response: %v", err)
	}
	if res.Token == "" {
		t.Error("login returned an empty token")
	}
	if res.Role != user.RoleEmployee {
		t.Errorf("Role = %v; want %v", res.Role, user.RoleEmployee)
	}

	// wrong password
	req, rec = newRequest(http.MethodPost, "/v1/users/login",
		marchallObj(t, echoapi.LoginRequest{Email: "jane.doe@dseu.ac.in", Password: "nope"}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad login code = %v; want %v", rec.Code, http.StatusBadRequest)
	}
}

func Test_userApi_signupValidation(t *testing.T) {
	resetDB(t)

	tests := []httpTest{
		{
			name: "empty body", body: marchallObj(t, user.NewUser{}), wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"email":     "this field is required",
				"password":  "this field is required",
				"full_name": "this field is required",
			}),
		},
		{
			name: "weak password",
			body: marchallObj(t, user.NewUser{Email: "a.b@dseu.ac.in", Password: "abc", FullName: "A B"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"password": "password must be at least 6 characters and contain lower, upper, digit and special characters",
			}),
		},
		{
			name: "off-domain email",
			body: marchallObj(t, user.NewUser{Email: "a.b@gmail.com", Password: "LeT@1234", FullName: "A B"}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"email": "invalid email. use a valid campus email address",
			}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(http.MethodPost, "/v1/users/signup", tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_userQuery(t *testing.T) {
	resetDB(t)

	north := testutil.CreateUser(t, usrRepo, "North Emp", "n.emp@dseu.ac.in", "emp-n1", "", user.RoleEmployee, "c1", true)
	south := testutil.CreateUser(t, usrRepo, "South Emp", "s.emp@dseu.ac.in", "emp-s1", "", user.RoleEmployee, "c2", true)
	admin := testutil.CreateUser(t, usrRepo, "Director", "director-north@dseu.ac.in", "emp-n2", "", user.RoleAdmin, "c1", true)
	vc := testutil.CreateUser(t, usrRepo, "VC", "vc@dseu.ac.in", "emp-vc", "", user.RoleSuperAdmin, "", true)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", token: getToken(t, north), wantCode: http.StatusForbidden,
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Admin sees own campus only", token: getToken(t, admin), wantCode: http.StatusOK,
			wantData: marchallList(t, north, admin),
		},
		{
			name: "Super admin sees everyone", token: getToken(t, vc), wantCode: http.StatusOK,
			wantData: marchallList(t, north, south, admin, vc),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, "/v1/users", tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_userApi_profile(t *testing.T) {
	resetDB(t)

	usr := testutil.CreateUser(t, usrRepo, "Jane Doe", "jane.doe@dseu.ac.in", "emp-1", "", user.RoleEmployee, "c1", true)
	token := getToken(t, usr)

	t.Run("get", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/profile", token)
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusOK, wantData: marchallObj(t, usr)}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("update", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPut, "/v1/profile", token,
			marchallObj(t, user.UpdateProfile{Designation: "Assistant Professor", Department: "CSE"}))
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("code = %v; want %v (%s)", rec.Code, http.StatusOK, rec.Body.String())
		}
		var got user.User
		if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
			t.Fatalf("decoding profile: %v", err)
		}
		if got.Designation != "Assistant Professor" || got.Department != "CSE" {
			t.Errorf("profile not updated: %+v", got)
		}
	})
}
