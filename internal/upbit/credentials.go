package upbit

// Credentials is the Upbit API key pair. The secret key is only ever used as
// the HMAC key for Sign and is never sent over the wire.
type Credentials struct {
	AccessKey string
	SecretKey string
}

// Complete reports whether both halves of the key pair are present.
func (c Credentials) Complete() bool {
	return c.AccessKey != "" && c.SecretKey != ""
}

// EnsurePrivateEnabled gates every call to an authenticated endpoint. It fails
// when private access has not been switched on, regardless of credentials, and
// when either half of the key pair is missing.
func EnsurePrivateEnabled(enabled bool, creds Credentials) error {
	if !enabled {
		return &ConfigurationError{
			Reason:  ReasonTradingDisabled,
			Message: "private trading tools are disabled: set UPBIT_ENABLE_TRADING=true to enable",
		}
	}
	if !creds.Complete() {
		return &ConfigurationError{
			Reason:  ReasonMissingCredentials,
			Message: "upbit API keys are not configured: set UPBIT_ACCESS_KEY and UPBIT_SECRET_KEY",
		}
	}
	return nil
}
