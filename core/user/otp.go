package user

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"github.com/makonzi/uwepo/core"
)

var nowFunc = time.Now // mockable

// otpPeriod is the TOTP time step. One step spans the whole validity window
// so the mailed code stays stable until it expires.
func otpPeriod() uint {
	return uint(core.Conf.Attendance.OTPValidity / time.Second)
}

func otpOpts() totp.ValidateOpts {
	return totp.ValidateOpts{
		Period:    otpPeriod(),
		Skew:      1,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	}
}

// generateOTP creates a fresh TOTP secret and the currently valid code.
func generateOTP(email string) (secret, code string, err error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      core.Conf.AppName,
		AccountName: email,
		Period:      otpPeriod(),
	})
	if err != nil {
		return "", "", err
	}
	secret = key.Secret()
	code, err = totp.GenerateCodeCustom(secret, nowFunc(), otpOpts())
	if err != nil {
		return "", "", err
	}
	return secret, code, nil
}

// verifyOTP checks a code against the stored secret.
func verifyOTP(secret, code string) bool {
	ok, err := totp.ValidateCustom(code, secret, nowFunc(), otpOpts())
	if err != nil {
		return false
	}
	return ok
}
