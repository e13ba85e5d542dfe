package termsim

import (
	"errors"
	"fmt"
	"strings"
)

// DatabaseConfig describes how to reach the Postgres progress store.
type DatabaseConfig struct {
	// DSN is a libpq connection string or postgresql:// URI.
	// For token-based methods the password part is replaced by the token.
	DSN string

	AuthMethod AuthMethod

	// AWSRegion is required for AuthMethodAWSIAM.
	AWSRegion string

	// Azure Entra ID parameters. If all three are set a service principal is used,
	// otherwise the default Azure credential chain.
	AzureTenantID     string
	AzureClientID     string
	AzureClientSecret string

	// GoogleInstance is the Cloud SQL instance connection name (project:region:instance).
	GoogleInstance string
}

// Validate checks the fields required by the selected auth method.
func (c *DatabaseConfig) Validate() error {
	var errs []error

	if strings.TrimSpace(c.DSN) == "" {
		errs = append(errs, fmt.Errorf("database dsn is required: %w", ErrInvalidConfig))
	}
	if !c.AuthMethod.IsValid() {
		errs = append(errs, fmt.Errorf("auth method %v: %w", c.AuthMethod, ErrUnsupportedAuthMethod))
	}
	if c.AuthMethod == AuthMethodAWSIAM && c.AWSRegion == "" {
		errs = append(errs, fmt.Errorf("aws iam auth requires a region: %w", ErrInvalidConfig))
	}
	if c.AuthMethod == AuthMethodGoogleIAM && c.GoogleInstance == "" {
		errs = append(errs, fmt.Errorf("google iam auth requires an instance connection name: %w", ErrInvalidConfig))
	}

	return errors.Join(errs...)
}

// AuthMethod represents the type of database authentication to use.
type AuthMethod int

const (
	AuthMethodStandard     AuthMethod = iota // Password in the DSN or PGPASSWORD
	AuthMethodAWSIAM                         // AWS IAM Database Authentication
	AuthMethodGoogleIAM                      // Google Cloud SQL IAM
	AuthMethodAzureEntraID                   // Azure Active Directory (Entra ID)
)

// String returns a human-readable string representation of the AuthMethod.
func (a AuthMethod) String() string {
	switch a {
	case AuthMethodStandard:
		return "Standard"
	case AuthMethodAWSIAM:
		return "AWS IAM"
	case AuthMethodGoogleIAM:
		return "Google IAM"
	case AuthMethodAzureEntraID:
		return "Azure Entra ID"
	default:
		return fmt.Sprintf("Unknown(%d)", a)
	}
}

// IsValid returns true if the AuthMethod is a valid, defined value.
func (a AuthMethod) IsValid() bool {
	return a >= AuthMethodStandard && a <= AuthMethodAzureEntraID
}

// ParseAuthMethod maps a configuration name to an AuthMethod.
// An empty name selects AuthMethodStandard.
func ParseAuthMethod(name string) (AuthMethod, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "standard", "password":
		return AuthMethodStandard, nil
	case "aws", "aws-iam":
		return AuthMethodAWSIAM, nil
	case "google", "google-iam", "gcp":
		return AuthMethodGoogleIAM, nil
	case "azure", "azure-entra", "entra":
		return AuthMethodAzureEntraID, nil
	default:
		return 0, fmt.Errorf("auth method %q: %w", name, ErrUnsupportedAuthMethod)
	}
}
