// Package mfa wraps TOTP code generation for the MFA enrolment flow.
package mfa

import (
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp/totp"
)

// CurrentCode computes the TOTP code for the provisioned secret at the given
// time.
func CurrentCode(secret string, at time.Time) (string, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return "", fmt.Errorf("mfa: empty secret")
	}
	code, err := totp.GenerateCode(secret, at)
	if err != nil {
		return "", fmt.Errorf("mfa: generate code: %w", err)
	}
	return code, nil
}

// Validate reports whether the code matches the secret at the given time.
func Validate(code, secret string) bool {
	return totp.Validate(strings.TrimSpace(code), strings.TrimSpace(secret))
}
