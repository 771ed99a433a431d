package site

import (
	"fmt"
	"strings"
)

// Policy says what to do when a content problem is found.
type Policy int

const (
	Ignore Policy = iota // Say nothing
	Log                  // Log at info level
	Warn                 // Log a warning
	Throw                // Fail the build
)

var policyNames = []string{"ignore", "log", "warn", "throw"}

func (p Policy) String() string {
	if p < Ignore || p > Throw {
		return fmt.Sprintf("Policy(%d)", int(p))
	}
	return policyNames[p]
}

func (p Policy) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Policy) UnmarshalText(text []byte) error {
	s := strings.ToLower(strings.TrimSpace(string(text)))
	for i, n := range policyNames {
		if s == n {
			*p = Policy(i)
			return nil
		}
	}
	return fmt.Errorf("unknown policy %q (want one of %s)", s, strings.Join(policyNames, ", "))
}

// Report applies the policy to err. It returns err only for Throw;
// the other policies log through logf and return nil.
func (p Policy) Report(logf func(format string, args ...any), err error) error {
	if err == nil {
		return nil
	}
	switch p {
	case Throw:
		return err
	case Warn:
		logf("[WARNING] %s", err)
	case Log:
		logf("[INFO] %s", err)
	}
	return nil
}
