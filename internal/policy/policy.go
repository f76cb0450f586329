// Package policy decides whether a registration's password and email are
// acceptable. It is a pure function of its inputs and the domain set fixed
// at construction.
package policy

import (
	"strings"
	"unicode"

	"github.com/trustelem/zxcvbn"
)

// MinScore is the lowest zxcvbn score (0-4) a password may have.
const MinScore = 3

const (
	ReasonDisposableEmail = "Disposable emails are not allowed"
	ReasonWeakPassword    = "Password is too weak"

	minSuggestedLength = 12
)

// DefaultDisposableDomains are always blocked; configuration can add more.
var DefaultDisposableDomains = []string{
	"10minutemail.com",
	"guerrillamail.com",
	"mailinator.com",
	"temp-mail.org",
}

type Rejection string

const (
	RejectionNone       Rejection = ""
	RejectionDisposable Rejection = "disposable_email"
	RejectionWeak       Rejection = "weak_password"
)

type Evaluation struct {
	Accepted    bool
	Rejection   Rejection
	Reason      string
	Score       int
	Suggestions []string
}

type Engine struct {
	disposable map[string]struct{}
	minScore   int
}

func NewEngine(extraDisposable []string) *Engine {
	domains := make(map[string]struct{}, len(DefaultDisposableDomains)+len(extraDisposable))
	for _, d := range DefaultDisposableDomains {
		domains[d] = struct{}{}
	}
	for _, d := range extraDisposable {
		if d = strings.TrimSpace(d); d != "" {
			domains[d] = struct{}{}
		}
	}
	return &Engine{disposable: domains, minScore: MinScore}
}

// Evaluate checks the email domain first, then the password strength.
func (e *Engine) Evaluate(password string, email string) Evaluation {
	if e.IsDisposable(email) {
		return Evaluation{
			Rejection: RejectionDisposable,
			Reason:    ReasonDisposableEmail,
			Score:     -1,
		}
	}

	score := Score(password, userInputs(email))
	if score < e.minScore {
		return Evaluation{
			Rejection:   RejectionWeak,
			Reason:      ReasonWeakPassword,
			Score:       score,
			Suggestions: suggestionsFor(password, email),
		}
	}

	return Evaluation{Accepted: true, Score: score}
}

// IsDisposable matches the text after the last '@' exactly, case-sensitive.
func (e *Engine) IsDisposable(email string) bool {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	_, blocked := e.disposable[email[at+1:]]
	return blocked
}

// Score returns the zxcvbn strength estimate on a 0-4 scale.
func Score(password string, inputs []string) int {
	if password == "" {
		return 0
	}
	return zxcvbn.PasswordStrength(password, inputs).Score
}

func userInputs(email string) []string {
	if email == "" {
		return nil
	}
	inputs := []string{email}
	if at := strings.LastIndex(email, "@"); at > 0 {
		inputs = append(inputs, email[:at])
	}
	return inputs
}

func suggestionsFor(password string, email string) []string {
	var suggestions []string

	if len([]rune(password)) < minSuggestedLength {
		suggestions = append(suggestions, "Use at least 12 characters; a few uncommon words work well.")
	}

	var lower, upper, digit, symbol bool
	for _, r := range password {
		switch {
		case unicode.IsLower(r):
			lower = true
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsDigit(r):
			digit = true
		default:
			symbol = true
		}
	}
	classes := 0
	for _, present := range []bool{lower, upper, digit, symbol} {
		if present {
			classes++
		}
	}
	if classes < 3 {
		suggestions = append(suggestions, "Mix upper and lower case letters with digits and symbols.")
	}

	if at := strings.LastIndex(email, "@"); at > 0 {
		local := strings.ToLower(email[:at])
		if len(local) >= 3 && strings.Contains(strings.ToLower(password), local) {
			suggestions = append(suggestions, "Avoid reusing parts of your email address.")
		}
	}

	suggestions = append(suggestions, "Avoid common passwords, names, dates and keyboard patterns.")
	return suggestions
}
