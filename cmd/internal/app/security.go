package app

import "errors"

// minStrongSecretBytes follows the HMAC-SHA256 recommendation of a key at
// least as long as the hash output.
const minStrongSecretBytes = 32

// ValidateSecurityConfig enforces the token-secret policy at startup.
//
// Fail-fast is intentional: starting a production instance on the development
// signing secret must be impossible once the policy flag is set.
func ValidateSecurityConfig(cfg Config) error {
	if cfg.TokenSecret == "" {
		return errors.New("security policy: AUTH_TOKEN_SECRET is empty")
	}
	if !cfg.RequireStrongSecret {
		return nil
	}

	if cfg.TokenSecret == devTokenSecret {
		return errors.New("security policy: AUTH_REQUIRE_STRONG_SECRET=true but AUTH_TOKEN_SECRET is the development default")
	}
	// Bytes, not runes: the key is fed to HMAC as raw bytes.
	if len(cfg.TokenSecret) < minStrongSecretBytes {
		return errors.New("security policy: AUTH_REQUIRE_STRONG_SECRET=true but AUTH_TOKEN_SECRET is too short (min 32 bytes)")
	}
	return nil
}
