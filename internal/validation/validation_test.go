package validation

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestValidAddress(t *testing.T) {
	tests := []struct {
		addr  string
		valid bool
	}{
		{"0x049d36570d4e46f48e99674bd3fcc84644ddd6b96f7c741b1562b82f9e004dc7", true},
		{"0x49D36570D4E46F48E99674BD3FCC84644DDD6B96F7C741B1562B82F9E004DC7", true},
		{"0x1", true},
		{"", true}, // Required handles emptiness

		{"0x", false},
		{"0xGG", false},
		{"0x" + strings.Repeat("f", 65), false},
		{"alice.stark", false},
	}

	for _, tc := range tests {
		valid := ValidAddress("address", tc.addr)() == nil
		if valid != tc.valid {
			t.Errorf("ValidAddress(%q) valid=%v, want %v", tc.addr, valid, tc.valid)
		}
	}
}

func TestValidIdentifier(t *testing.T) {
	tests := []struct {
		id    string
		valid bool
	}{
		{"0x1234", true},
		{"alice.stark", true},
		{"Alice.Stark", true},
		{"my-name", true},
		{"bad name.stark", false},
		{"under_score", false},
	}

	for _, tc := range tests {
		valid := ValidIdentifier("identifier", tc.id)() == nil
		if valid != tc.valid {
			t.Errorf("ValidIdentifier(%q) valid=%v, want %v", tc.id, valid, tc.valid)
		}
	}
}

func TestValidFelt(t *testing.T) {
	for _, v := range []string{"0x0", "0xabc", "12345"} {
		if err := ValidFelt("key", v)(); err != nil {
			t.Errorf("ValidFelt(%q) unexpected error %v", v, err)
		}
	}
	for _, v := range []string{"0x", "xyz", "-1"} {
		if err := ValidFelt("key", v)(); err == nil {
			t.Errorf("ValidFelt(%q) expected error", v)
		}
	}
}

func TestSanitizeString(t *testing.T) {
	tests := []struct {
		input    string
		maxLen   int
		expected string
	}{
		{"hello", 10, "hello"},
		{"  hello  ", 10, "hello"},
		{"hello world", 5, "hello"},
		{"hello\x00world", 20, "helloworld"},
	}

	for _, tc := range tests {
		result := SanitizeString(tc.input, tc.maxLen)
		if result != tc.expected {
			t.Errorf("SanitizeString(%q, %d) = %q, want %q", tc.input, tc.maxLen, result, tc.expected)
		}
	}
}

func TestValidate(t *testing.T) {
	err := Validate(
		Required("recipient", "alice.stark"),
		ValidIdentifier("recipient", "alice.stark"),
	)
	if err != nil {
		t.Errorf("Expected no errors, got %v", err)
	}

	err = Validate(
		Required("recipient", ""),
		ValidAddress("token", "invalid"),
	)
	var errs ValidationErrors
	if !errors.As(err, &errs) {
		t.Fatalf("Expected ValidationErrors, got %T", err)
	}
	if len(errs) != 2 {
		t.Errorf("Expected 2 errors, got %d", len(errs))
	}
	if !strings.Contains(err.Error(), "recipient: is required") || !strings.Contains(err.Error(), "token:") {
		t.Errorf("unexpected message %q", err.Error())
	}
}

func TestValidAmount(t *testing.T) {
	tests := []struct {
		value string
		valid bool
	}{
		{"1.00", true},
		{"0.50", true},
		{"100", true},
		{"0.000001", true},
		{".5", true},
		{"1.", true},

		// Invalid
		{".", false},
		{"", true},
		{"abc", false},
		{"-1.00", false},
		{"1.2.3", false},
		{"0.000", false},
	}

	for _, tc := range tests {
		err := ValidAmount("amount", tc.value)()
		valid := err == nil
		if valid != tc.valid {
			t.Errorf("ValidAmount(%q) valid=%v, want %v", tc.value, valid, tc.valid)
		}
	}
}

func TestMaxLength(t *testing.T) {
	if err := MaxLength("field", "hello", 5)(); err != nil {
		t.Error("Expected no error for string at limit")
	}
	if err := MaxLength("field", "hello world", 5)(); err == nil {
		t.Error("Expected error for string over limit")
	}
}

func TestMaxItems(t *testing.T) {
	if err := MaxItems("calldata", 3, 3)(); err != nil {
		t.Error("Expected no error at limit")
	}
	if err := MaxItems("calldata", 4, 3)(); err == nil {
		t.Error("Expected error over limit")
	}
}

func TestRequestSizeMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestSizeMiddleware(8))
	r.POST("/mcp", func(c *gin.Context) {
		if _, err := io.ReadAll(c.Request.Body); err != nil {
			c.Status(http.StatusRequestEntityTooLarge)
			return
		}
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(strings.Repeat("x", 64)))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Errorf("Expected 413, got %d", w.Code)
	}
}
