package user

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/makonzi/uwepo/core"
)

var (
	// errors
	ErrNotFound      = errors.New("user not found")
	ErrEmailExists   = errors.New("a user with this email already exists")
	ErrInvalidEmail  = errors.New("invalid email. use a valid campus email address")
	ErrInvalidOTP    = errors.New("invalid OTP")
	ErrOTPExpired    = errors.New("OTP has expired. request a new one")
	ErrNoPendingOTP  = errors.New("no OTP verification pending for this account")
	ErrAlreadyActive = errors.New("account is already verified")
)

type (
	Repository interface {
		CreateUser(ctx context.Context, usr User) (User, error)
		GetUserByID(ctx context.Context, id string) (User, error)
		GetUserByEmail(ctx context.Context, email string) (User, error)
		GetUserByEmployeeID(ctx context.Context, employeeID string) (User, error)
		QueryAllUsers(ctx context.Context) ([]User, error)
		// FilterUsers applies AND operation on available QueryFilter fields.
		FilterUsers(ctx context.Context, filter QueryFilter) ([]User, error)
		UpdateUser(ctx context.Context, usr User) (User, error)
		SetUserOTP(ctx context.Context, email, secret string, expires time.Time) error
		// ActivateUser flips is_active on and clears any pending OTP.
		ActivateUser(ctx context.Context, email string) error
		ClearUserOTP(ctx context.Context, email string) error
		SetUserPassword(ctx context.Context, email string, hash []byte) error
		SetLastLogin(ctx context.Context, id string, t time.Time) error
		FlagRedNotice(ctx context.Context, id, reason string) error
	}

	Service struct {
		repo    Repository
		mailSvc core.EmailService
		logger  core.Logger
	}
)

func NewService(repo Repository, mailSvc core.EmailService, logger core.Logger) *Service {
	return &Service{repo: repo, mailSvc: mailSvc, logger: logger}
}

// Signup registers an inactive account and mails a verification OTP.
// The role is derived from the email shape; addresses off the campus mail
// domain are rejected.
func (svc *Service) Signup(ctx context.Context, nu NewUser) (User, error) {
	role, ok := AssignRole(nu.Email, core.Conf.CampusMailDomain)
	if !ok {
		return User{}, core.NewValidationError(ErrInvalidEmail, core.FieldError{Field: "email", Error: ErrInvalidEmail.Error()})
	}

	if _, err := svc.repo.GetUserByEmail(ctx, nu.Email); err == nil {
		return User{}, core.NewValidationError(ErrEmailExists, core.FieldError{Field: "email", Error: ErrEmailExists.Error()})
	} else if err != ErrNotFound {
		return User{}, err
	}

	secret, code, err := generateOTP(nu.Email)
	if err != nil {
		return User{}, err
	}

	now := nowFunc().UTC()
	expires := now.Add(core.Conf.Attendance.OTPValidity)
	empID := nu.EmployeeID
	if empID == "" {
		empID = "emp-" + strings.Split(uuid.New().String(), "-")[0]
	}
	usr := User{
		EmployeeID: empID,
		Email:      nu.Email,
		FullName:   nu.FullName,
		Role:       role,
		CampusID:   nu.CampusID,
		IsActive:   false,
		FirstLogin: true,
		OTPSecret:  secret,
		OTPExpires: &expires,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, err
	}

	usr, err = svc.repo.CreateUser(ctx, usr)
	if err != nil {
		return User{}, err
	}
	svc.sendOTPMail(usr, code, "account verification")
	return usr, nil
}

// VerifyOTP activates a freshly signed-up account. Verifying an already
// active account is a no-op.
func (svc *Service) VerifyOTP(ctx context.Context, email, code string) error {
	usr, err := svc.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if usr.IsActive {
		return nil
	}
	if err := svc.checkOTP(usr, code); err != nil {
		return err
	}
	return svc.repo.ActivateUser(ctx, usr.Email)
}

// ForgotPassword issues a password-reset OTP to an existing account.
func (svc *Service) ForgotPassword(ctx context.Context, email string) error {
	if _, ok := AssignRole(email, core.Conf.CampusMailDomain); !ok {
		return core.NewValidationError(ErrInvalidEmail, core.FieldError{Field: "email", Error: ErrInvalidEmail.Error()})
	}
	usr, err := svc.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}

	secret, code, err := generateOTP(usr.Email)
	if err != nil {
		return err
	}
	expires := nowFunc().UTC().Add(core.Conf.Attendance.OTPValidity)
	if err := svc.repo.SetUserOTP(ctx, usr.Email, secret, expires); err != nil {
		return err
	}
	svc.sendOTPMail(usr, code, "password reset")
	return nil
}

// VerifyForgotOTP confirms a password-reset OTP and clears it, allowing the
// password to be reset.
func (svc *Service) VerifyForgotOTP(ctx context.Context, email, code string) error {
	usr, err := svc.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := svc.checkOTP(usr, code); err != nil {
		return err
	}
	return svc.repo.ClearUserOTP(ctx, usr.Email)
}

// ResetPassword sets a new password after OTP verification.
func (svc *Service) ResetPassword(ctx context.Context, email, pwd string) error {
	usr, err := svc.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return err
	}
	if err := usr.SetPassword(pwd); err != nil {
		return err
	}
	return svc.repo.SetUserPassword(ctx, usr.Email, usr.PasswordHash)
}

func (svc *Service) GetByID(ctx context.Context, id string) (User, error) {
	return svc.repo.GetUserByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (User, error) {
	return svc.repo.GetUserByEmail(ctx, core.CleanString(email, true /* lower */))
}

func (svc *Service) GetByEmployeeID(ctx context.Context, employeeID string) (User, error) {
	return svc.repo.GetUserByEmployeeID(ctx, core.CleanString(employeeID, true /* lower */))
}

func (svc *Service) QueryAll(ctx context.Context) ([]User, error) {
	return svc.repo.QueryAllUsers(ctx)
}

func (svc *Service) Filter(ctx context.Context, filter QueryFilter) ([]User, error) {
	if filter.IsEmpty() {
		return svc.repo.QueryAllUsers(ctx)
	}
	return svc.repo.FilterUsers(ctx, filter)
}

func (svc *Service) SetLastLogin(ctx context.Context, usr User) (User, error) {
	now := time.Now().UTC()
	if err := svc.repo.SetLastLogin(ctx, usr.ID, now); err != nil {
		return usr, err
	}
	usr.LastLogin = now
	usr.FirstLogin = false
	return usr, nil
}

// UpdateProfile applies the self-service profile fields, leaving everything
// else untouched.
func (svc *Service) UpdateProfile(ctx context.Context, id string, up UpdateProfile) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if name := core.CleanString(up.FullName); name != "" {
		usr.FullName = name
	}
	if d := core.CleanString(up.Designation); d != "" {
		usr.Designation = d
	}
	if d := core.CleanString(up.Department); d != "" {
		usr.Department = d
	}
	if up.ProfilePicture != "" {
		usr.ProfilePicture = up.ProfilePicture
	}
	usr.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateUser(ctx, usr)
}

// FlagRedNotice persists the escalation flag on the user's profile.
// Re-flagging an already escalated user only refreshes the reason.
func (svc *Service) FlagRedNotice(ctx context.Context, id, reason string) (User, error) {
	usr, err := svc.repo.GetUserByID(ctx, id)
	if err != nil {
		return User{}, err
	}
	if err := svc.repo.FlagRedNotice(ctx, usr.ID, reason); err != nil {
		return User{}, err
	}
	usr.RedNoticeIssued = true
	usr.RedNoticeReason = reason
	return usr, nil
}

func (svc *Service) checkOTP(usr User, code string) error {
	if usr.OTPSecret == "" {
		return ErrNoPendingOTP
	}
	if usr.OTPExpires != nil && usr.OTPExpires.Before(nowFunc().UTC()) {
		return ErrOTPExpired
	}
	if !verifyOTP(usr.OTPSecret, code) {
		return ErrInvalidOTP
	}
	return nil
}

func (svc *Service) sendOTPMail(usr User, code, purpose string) {
	body := fmt.Sprintf(
		"Hello,\n\nYour OTP for %s is: %s.\nIt is valid for the next %d minutes.\n\nRegards,\n%s IT Team",
		purpose, code, int(core.Conf.Attendance.OTPValidity.Minutes()), core.Conf.AppName,
	)
	svc.mailSvc.SendMessages(&core.EmailMessage{
		To:      []mail.Address{{Name: usr.FullName, Address: usr.Email}},
		Subject: "Your OTP for " + strings.Title(purpose),
		BodyStr: body,
	})
}
