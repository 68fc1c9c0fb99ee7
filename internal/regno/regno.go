// Package regno parses, validates and canonicalizes student registration
// numbers.
//
// The raw form entered by students is "<FA|SP><YY>-<PROGRAM>-<NNN>", e.g.
// "FA23-BSE-007". Permanent user records are keyed by the canonical form
// "<YYYY><PROGRAM><NNN>", e.g. "2023BSE007".
package regno

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// EmailDomain is the institutional mail domain appended to registration numbers.
const EmailDomain = "cuiwah.edu.pk"

// FirstBatchYear is the earliest batch year accepted at signup.
const FirstBatchYear = 2022

// ErrUnparseable is returned when a registration number does not match the raw form.
var ErrUnparseable = errors.New("registration number is not parseable")

// Programs lists the program codes a registration number may carry.
var Programs = []string{"BCS", "BSE", "BAI", "BME", "CVE", "BBA", "BAF", "BEE", "BCE", "BPY"}

var rawPattern = regexp.MustCompile(`^(FA|SP)(\d{2})-(` + strings.Join(Programs, "|") + `)-(\d{3})$`)

// Number is a parsed registration number.
type Number struct {
	Batch    string
	Year     int
	Program  string
	Sequence string
}

// Canonical returns the storage key form of the number.
func (n Number) Canonical() string {
	return fmt.Sprintf("%04d%s%s", n.Year, n.Program, n.Sequence)
}

// Codec validates and transforms registration numbers against a clock.
type Codec struct {
	now func() time.Time
}

// NewCodec creates a Codec using the wall clock.
func NewCodec() *Codec {
	return &Codec{now: time.Now}
}

// NewCodecWithClock creates a Codec that reads the current year from now.
func NewCodecWithClock(now func() time.Time) *Codec {
	return &Codec{now: now}
}

// Normalize trims surrounding whitespace and upper-cases raw.
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}

// Parse splits raw into its parts. Matching is case-insensitive.
func Parse(raw string) (Number, error) {
	m := rawPattern.FindStringSubmatch(Normalize(raw))
	if m == nil {
		return Number{}, ErrUnparseable
	}

	yy, err := strconv.Atoi(m[2])
	if err != nil {
		return Number{}, ErrUnparseable
	}

	return Number{
		Batch:    m[1],
		Year:     2000 + yy,
		Program:  m[3],
		Sequence: m[4],
	}, nil
}

// Validate reports whether raw is well formed and its batch year lies in
// [FirstBatchYear, current year].
func (c *Codec) Validate(raw string) bool {
	n, err := Parse(raw)
	if err != nil {
		return false
	}
	return n.Year >= FirstBatchYear && n.Year <= c.now().Year()
}

// ToCanonical returns the canonical key for raw, or ErrUnparseable.
func (c *Codec) ToCanonical(raw string) (string, error) {
	n, err := Parse(raw)
	if err != nil {
		return "", err
	}
	return n.Canonical(), nil
}

// DeriveEmail returns the institutional address of the registration number owner.
func (c *Codec) DeriveEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw)) + "@" + EmailDomain
}

// IsProgram reports whether code is a known program code.
func IsProgram(code string) bool {
	for _, p := range Programs {
		if p == code {
			return true
		}
	}
	return false
}
