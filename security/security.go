// Package security holds the input hygiene applied to everything a client sends us.
package security

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Length limits for case submissions
const (
	MaxInputLength       = 5000
	MaxNameLength        = 100
	MinDescriptionLength = 50
	MaxDescriptionLength = 5000
	MaxEvidenceURLLength = 2048
)

var (
	angleBrackets  = regexp.MustCompile(`[<>]`)
	jsProtocol     = regexp.MustCompile(`(?i)javascript:`)
	eventHandlers  = regexp.MustCompile(`(?i)on\w+=`)
	ethAddress     = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	txHash         = regexp.MustCompile(`^0x[a-fA-F0-9]{64}$`)
	caseIDAlphabet = regexp.MustCompile(`^CASE-[0-9a-z]+-[0-9a-z]+$`)
)

// Sanitize strips markup and script vectors from user input, trims it and caps its
// length at MaxInputLength characters.
func Sanitize(input string) string {
	s := angleBrackets.ReplaceAllString(input, "")
	s = jsProtocol.ReplaceAllString(s, "")
	s = eventHandlers.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	return truncate(s, MaxInputLength)
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}

// ValidateCaseSubmission returns every rule the submission breaks. An empty slice
// means the submission is valid.
func ValidateCaseSubmission(claimant, respondent, description string) []string {
	errs := []string{}

	if strings.TrimSpace(claimant) == "" {
		errs = append(errs, "Claimant name is required")
	}
	if strings.TrimSpace(respondent) == "" {
		errs = append(errs, "Respondent name is required")
	}
	if strings.TrimSpace(description) == "" {
		errs = append(errs, "Case description is required")
	}

	if utf8.RuneCountInString(claimant) > MaxNameLength {
		errs = append(errs, fmt.Sprintf("Claimant name must be less than %d characters", MaxNameLength))
	}
	if utf8.RuneCountInString(respondent) > MaxNameLength {
		errs = append(errs, fmt.Sprintf("Respondent name must be less than %d characters", MaxNameLength))
	}
	descLen := utf8.RuneCountInString(description)
	if description != "" && descLen < MinDescriptionLength {
		errs = append(errs, fmt.Sprintf("Case description must be at least %d characters", MinDescriptionLength))
	}
	if descLen > MaxDescriptionLength {
		errs = append(errs, fmt.Sprintf("Case description must be less than %d characters", MaxDescriptionLength))
	}

	return errs
}

// IsValidEvidenceURL reports whether u is an absolute http or https URL
func IsValidEvidenceURL(u string) bool {
	if len(u) > MaxEvidenceURLLength {
		return false
	}
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	return (parsed.Scheme == "http" || parsed.Scheme == "https") && parsed.Host != ""
}

// IsValidEthAddress validates the 0x-prefixed 20 byte hex address format
func IsValidEthAddress(address string) bool {
	return ethAddress.MatchString(address)
}

// IsValidTxHash validates the 0x-prefixed 32 byte hex transaction hash format
func IsValidTxHash(hash string) bool {
	return txHash.MatchString(hash)
}

// IsValidPaymentAmount reports whether amount is a positive number no larger than max
func IsValidPaymentAmount(amount, max string) bool {
	a, err := strconv.ParseFloat(amount, 64)
	if err != nil {
		return false
	}
	m, err := strconv.ParseFloat(max, 64)
	if err != nil {
		return false
	}
	return a > 0 && a <= m
}

// NewCaseID generates a case identifier of the form CASE-<base36 millis>-<random>
func NewCaseID(now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("CASE-%s-%s", strconv.FormatInt(now.UnixMilli(), 36), random)
}

// IsValidCaseID reports whether id looks like something NewCaseID produced
func IsValidCaseID(id string) bool {
	return len(id) <= 64 && caseIDAlphabet.MatchString(id)
}
