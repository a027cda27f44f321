package echoapi

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/makonzi/uwepo/core"
	"github.com/makonzi/uwepo/core/user"
)

type userApi struct {
	opts *Options
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, opts *Options) {
	api := userApi{opts: opts}

	ug := g.Group("/users")

	// un-authed endpoints
	ug.POST("/signup", api.signup)
	ug.POST("/verify-otp", api.verifyOTP)
	ug.POST("/login", api.login)
	ug.POST("/forgot-password", api.forgotPassword)
	ug.POST("/verify-forgot-otp", api.verifyForgotOTP)
	ug.POST("/reset-password", api.resetPassword)

	// authed endpoints
	ag := ug.Group("", jwt)
	ag.POST("/token-refresh", api.refreshToken)
	ag.GET("", api.query, capabilityMiddleware(user.CapManageUsers))
	ag.GET("/:id", api.retrieve, capabilityMiddleware(user.CapManageUsers))

	pg := g.Group("/profile", jwt)
	pg.GET("", api.profile)
	pg.PUT("", api.updateProfile)
	pg.POST("/picture", api.uploadPicture)
}

// Handlers

func (api *userApi) signup(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	usr, err := api.opts.UserSvc.Signup(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "signing up")
	}
	return ctx.JSON(http.StatusCreated, SuccessResponse{
		Success: fmt.Sprintf("An OTP has been sent to %s. Verify to activate your account.", usr.Email),
	})
}

func (api *userApi) verifyOTP(ctx echo.Context) error {
	var data user.VerifyOTP
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VerifyOTP")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	if err := api.opts.UserSvc.VerifyOTP(ctx.Request().Context(), data.Email, data.OTP); err != nil {
		return errors.Wrap(err, "verifying OTP")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Account verified. You can now log in."})
}

func (api *userApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	claims, err := authenticate(ctx, data.Email, data.Password, api.opts.UserSvc)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Role: claims.Role})
}

func (api *userApi) forgotPassword(ctx echo.Context) error {
	var data ForgotPasswordRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ForgotPasswordRequest")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	if err := api.opts.UserSvc.ForgotPassword(ctx.Request().Context(), data.Email); !(err == nil || errors.Cause(err) == user.ErrNotFound) {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an OTP will arrive in your inbox shortly to reset your password.",
	})
}

func (api *userApi) verifyForgotOTP(ctx echo.Context) error {
	var data user.VerifyOTP
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to VerifyOTP")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	if err := api.opts.UserSvc.VerifyForgotOTP(ctx.Request().Context(), data.Email, data.OTP); err != nil {
		return errors.Wrap(err, "verifying reset OTP")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "OTP verified. You can now set a new password."})
}

func (api *userApi) resetPassword(ctx echo.Context) error {
	var data user.ResetUserPassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetUserPassword")
	}
	if err := data.Validate(api.opts.Validate); err != nil {
		return err
	}

	if err := api.opts.UserSvc.ResetPassword(ctx.Request().Context(), data.Email, data.Password); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.opts.UserSvc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *userApi) query(ctx echo.Context) error {
	filter := new(user.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []user.User{})
	}

	// admins only see their own campus; super admins see everything
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if claims.Role != user.RoleSuperAdmin {
		filter.CampusID = claims.CampusID
	}

	users, err := api.opts.UserSvc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying users")
	}
	return ctx.JSON(http.StatusOK, users)
}

func (api *userApi) retrieve(ctx echo.Context) error {
	usr, err := api.opts.UserSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return errors.Wrap(err, "finding user by ID")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) profile(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.opts.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) updateProfile(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.opts.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	var data user.UpdateProfile
	if err = ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}

	usr, err = api.opts.UserSvc.UpdateProfile(ctx.Request().Context(), usr.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating profile")
	}
	return ctx.JSON(http.StatusOK, usr)
}

func (api *userApi) uploadPicture(ctx echo.Context) error {
	usr, err := getContextUser(ctx, api.opts.UserSvc)
	if err != nil {
		return errors.Wrap(err, "getting context user")
	}

	fh, err := ctx.FormFile("picture")
	if err != nil {
		return core.NewValidationError(nil, core.FieldError{Field: "picture", Error: "this field is required"})
	}
	src, err := fh.Open()
	if err != nil {
		return errors.Wrap(err, "opening upload")
	}
	defer src.Close()

	dir := filepath.Join(core.Conf.WorkDir, "media", "profile_pictures")
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating media dir")
	}
	name := usr.ID + filepath.Ext(fh.Filename)
	dst, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return errors.Wrap(err, "creating picture file")
	}
	defer dst.Close()
	if _, err = io.Copy(dst, src); err != nil {
		return errors.Wrap(err, "saving picture")
	}

	usr, err = api.opts.UserSvc.UpdateProfile(ctx.Request().Context(), usr.ID, user.UpdateProfile{
		ProfilePicture: filepath.Join("media", "profile_pictures", name),
	})
	if err != nil {
		return errors.Wrap(err, "updating profile picture")
	}
	return ctx.JSON(http.StatusOK, usr)
}

type (
	LoginRequest struct {
		Email    string `json:"email" validate:"required,email"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string    `json:"token"`
		Role  user.Role `json:"role,omitempty"`
	}

	ForgotPasswordRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}
)

func (lr *LoginRequest) Validate(validate *validator.Validate) error {
	lr.Email = core.CleanString(lr.Email, true /* lower */)
	return validate.Struct(lr)
}

func (fr *ForgotPasswordRequest) Validate(validate *validator.Validate) error {
	fr.Email = core.CleanString(fr.Email, true /* lower */)
	return validate.Struct(fr)
}
