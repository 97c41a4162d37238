package security

import (
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "plain text untouched", input: "Alice Smith", want: "Alice Smith"},
		{name: "strips angle brackets", input: "<script>alert(1)</script>", want: "scriptalert(1)/script"},
		{name: "strips javascript protocol", input: "javascript:alert(1)", want: "alert(1)"},
		{name: "strips javascript protocol any case", input: "JaVaScRiPt:go()", want: "go()"},
		{name: "strips event handlers", input: `img src=x onerror=alert(1)`, want: "img src=x alert(1)"},
		{name: "strips event handlers any case", input: "div OnClick=steal()", want: "div steal()"},
		{name: "trims whitespace", input: "  \t padded \n", want: "padded"},
		{name: "combined vectors", input: ` <a href="javascript:x" onmouseover=y>hi</a> `, want: `a href="x" yhi/a`},
		{name: "empty", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.input))
		})
	}
}

func TestSanitizeCapsLength(t *testing.T) {
	long := strings.Repeat("a", MaxInputLength+250)
	assert.Len(t, Sanitize(long), MaxInputLength)

	// counted in characters, not bytes
	multi := strings.Repeat("é", MaxInputLength+1)
	assert.Equal(t, MaxInputLength, len([]rune(Sanitize(multi))))
}

func TestValidateCaseSubmission(t *testing.T) {
	validDescription := strings.Repeat("d", MinDescriptionLength)

	tests := []struct {
		name        string
		claimant    string
		respondent  string
		description string
		wantErrs    []string
	}{
		{
			name:        "valid",
			claimant:    "Alice",
			respondent:  "Bob",
			description: validDescription,
			wantErrs:    []string{},
		},
		{
			name:     "all missing",
			wantErrs: []string{"Claimant name is required", "Respondent name is required", "Case description is required"},
		},
		{
			name:        "whitespace only names",
			claimant:    "   ",
			respondent:  "\t",
			description: validDescription,
			wantErrs:    []string{"Claimant name is required", "Respondent name is required"},
		},
		{
			name:        "names too long",
			claimant:    strings.Repeat("a", MaxNameLength+1),
			respondent:  strings.Repeat("b", MaxNameLength+1),
			description: validDescription,
			wantErrs:    []string{"Claimant name must be less than 100 characters", "Respondent name must be less than 100 characters"},
		},
		{
			name:        "description too short",
			claimant:    "Alice",
			respondent:  "Bob",
			description: "too short",
			wantErrs:    []string{"Case description must be at least 50 characters"},
		},
		{
			name:        "description too long",
			claimant:    "Alice",
			respondent:  "Bob",
			description: strings.Repeat("d", MaxDescriptionLength+1),
			wantErrs:    []string{"Case description must be less than 5000 characters"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantErrs, ValidateCaseSubmission(tt.claimant, tt.respondent, tt.description))
		})
	}
}

func TestIsValidEvidenceURL(t *testing.T) {
	assert.True(t, IsValidEvidenceURL("https://example.com/contract.pdf"))
	assert.True(t, IsValidEvidenceURL("http://example.com"))
	assert.False(t, IsValidEvidenceURL("ftp://example.com/file"))
	assert.False(t, IsValidEvidenceURL("example.com/file"))
	assert.False(t, IsValidEvidenceURL("https://"))
	assert.False(t, IsValidEvidenceURL("https://example.com/"+strings.Repeat("x", MaxEvidenceURLLength)))
}

func TestIsValidEthAddress(t *testing.T) {
	assert.True(t, IsValidEthAddress("0x46f90440678a21461d232555ed376f1D14aEe284"))
	assert.False(t, IsValidEthAddress("46f90440678a21461d232555ed376f1D14aEe284"))
	assert.False(t, IsValidEthAddress("0x46f90440678a21461d232555ed376f1D14aEe28"))
	assert.False(t, IsValidEthAddress("0xZZf90440678a21461d232555ed376f1D14aEe284"))
}

func TestIsValidTxHash(t *testing.T) {
	assert.True(t, IsValidTxHash("0x"+strings.Repeat("ab", 32)))
	assert.False(t, IsValidTxHash("0x"+strings.Repeat("ab", 31)))
	assert.False(t, IsValidTxHash(strings.Repeat("ab", 32)))
	assert.False(t, IsValidTxHash("0x"+strings.Repeat("zz", 32)))
}

func TestIsValidPaymentAmount(t *testing.T) {
	assert.True(t, IsValidPaymentAmount("0.001", "0.5"))
	assert.True(t, IsValidPaymentAmount("0.5", "0.5"))
	assert.False(t, IsValidPaymentAmount("0", "0.5"))
	assert.False(t, IsValidPaymentAmount("-1", "0.5"))
	assert.False(t, IsValidPaymentAmount("0.6", "0.5"))
	assert.False(t, IsValidPaymentAmount("abc", "0.5"))
	assert.False(t, IsValidPaymentAmount("0.1", "abc"))
}

func TestNewCaseID(t *testing.T) {
	now := time.UnixMilli(1700000000000)
	id := NewCaseID(now)

	assert.True(t, strings.HasPrefix(id, "CASE-"+strconv.FormatInt(now.UnixMilli(), 36)+"-"))
	parts := strings.Split(id, "-")
	assert.Len(t, parts, 3)
	assert.Len(t, parts[2], 9)
	assert.True(t, IsValidCaseID(id))
	assert.NotEqual(t, id, NewCaseID(now))
}

func TestIsValidCaseID(t *testing.T) {
	assert.True(t, IsValidCaseID("CASE-1712345678901-abc123xyz"))
	assert.False(t, IsValidCaseID("case-1-2"))
	assert.False(t, IsValidCaseID("CASE-1"))
	assert.False(t, IsValidCaseID("CASE-1-2; drop"))
	assert.False(t, IsValidCaseID(""))
}
