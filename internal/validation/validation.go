// Package validation checks tool arguments and HTTP requests before they
// reach the Starknet layer.
package validation

import (
	"math"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mbd888/starknet-mcp/internal/amount"
	"github.com/mbd888/starknet-mcp/internal/felt"
	"github.com/mbd888/starknet-mcp/internal/starknetid"
)

// MaxRequestSize is the maximum request body size (1MB)
const MaxRequestSize = 1 << 20 // 1MB

// MaxStringLength is the maximum length for free-text arguments
const MaxStringLength = 10000

// MaxCalldataWords caps calldata passed to call_contract.
const MaxCalldataWords = 256

// RequestSizeMiddleware limits request body size
func RequestSizeMiddleware(maxSize int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize)
		c.Next()
	}
}

// SanitizeString removes dangerous characters and limits length
func SanitizeString(s string, maxLen int) string {
	s = strings.TrimSpace(s)

	if len(s) > maxLen {
		s = s[:maxLen]
	}

	// Remove null bytes
	s = strings.ReplaceAll(s, "\x00", "")

	return s
}

// ValidationError represents a validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return "validation failed"
	}
	msgs := make([]string, len(e))
	for i, v := range e {
		msgs[i] = v.Field + ": " + v.Message
	}
	return strings.Join(msgs, "; ")
}

// Validate runs validators and collects their errors. It returns nil when
// every validator passes so the result can be returned as an error directly.
func Validate(validators ...func() *ValidationError) error {
	var errs ValidationErrors
	for _, v := range validators {
		if err := v(); err != nil {
			errs = append(errs, *err)
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// Required checks if a field is non-empty
func Required(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if strings.TrimSpace(value) == "" {
			return &ValidationError{Field: field, Message: "is required"}
		}
		return nil
	}
}

// ValidAddress checks that a field is a Starknet address.
func ValidAddress(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if value == "" {
			return nil // Use Required for required fields
		}
		if !felt.IsAddress(value) {
			return &ValidationError{Field: field, Message: "must be a Starknet address (0x + up to 64 hex chars)"}
		}
		return nil
	}
}

// ValidIdentifier checks that a field is an address or a well-formed
// StarknetID name.
func ValidIdentifier(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if value == "" {
			return nil
		}
		if felt.IsAddress(value) || starknetid.IsValidName(starknetid.CanonicalName(value)) {
			return nil
		}
		return &ValidationError{Field: field, Message: "must be a Starknet address or a .stark name"}
	}
}

// ValidFelt checks that a field is a field element in hex or decimal.
func ValidFelt(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if value == "" {
			return nil
		}
		if _, err := felt.Parse(value); err != nil {
			return &ValidationError{Field: field, Message: "must be a field element (0x hex or decimal)"}
		}
		return nil
	}
}

// MaxLength checks if a field exceeds max length
func MaxLength(field, value string, max int) func() *ValidationError {
	return func() *ValidationError {
		if len(value) > max {
			return &ValidationError{Field: field, Message: "exceeds maximum length"}
		}
		return nil
	}
}

// MaxItems checks the length of a list argument.
func MaxItems(field string, n, max int) func() *ValidationError {
	return func() *ValidationError {
		if n > max {
			return &ValidationError{Field: field, Message: "has too many items"}
		}
		return nil
	}
}

// ValidAmount checks that value is a positive decimal amount in any form
// amount.Parse accepts, including ".5" and "1.". Precision is checked later
// against the token's decimals.
func ValidAmount(field, value string) func() *ValidationError {
	return func() *ValidationError {
		if value == "" {
			return nil
		}
		raw, err := amount.Parse(value, math.MaxUint8)
		if err != nil {
			return &ValidationError{Field: field, Message: "invalid amount format"}
		}
		if raw.Sign() == 0 {
			return &ValidationError{Field: field, Message: "amount must be greater than zero"}
		}
		return nil
	}
}
