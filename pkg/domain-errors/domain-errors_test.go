package domainerrors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
)

// DomainErrorsSuite tests the domain error primitives.
//
// These are used at every trust boundary; the invariants "wrapped domain
// errors preserve the original code" and "errors.Is matches by code" must hold.
type DomainErrorsSuite struct {
	suite.Suite
}

func TestDomainErrorsSuite(t *testing.T) {
	suite.Run(t, new(DomainErrorsSuite))
}

func (s *DomainErrorsSuite) TestErrorInterface() {
	s.Run("returns message when present", func() {
		err := &Error{Code: CodeNotFound, Message: "profile not found"}
		s.Equal("profile not found", err.Error())
	})

	s.Run("returns code when message is empty", func() {
		err := &Error{Code: CodeAccountUnavailable}
		s.Equal("account_unavailable", err.Error())
	})
}

func (s *DomainErrorsSuite) TestUnwrap() {
	inner := errors.New("store timeout")
	err := &Error{Code: CodeTimeout, Message: "lookup timed out", Err: inner}
	s.Equal(inner, errors.Unwrap(err))
}

func (s *DomainErrorsSuite) TestIsMatching() {
	s.Run("matches by code only", func() {
		err1 := &Error{Code: CodeNotFound, Message: "profile not found"}
		err2 := &Error{Code: CodeNotFound, Message: "company not found"}
		s.True(errors.Is(err1, err2))
	})

	s.Run("does not match different codes", func() {
		s.False(errors.Is(&Error{Code: CodeNotFound}, &Error{Code: CodeInternal}))
	})
}

func (s *DomainErrorsSuite) TestWrapPreservesCode() {
	inner := New(CodeAccountUnavailable, "deleted recently")
	wrapped := Wrap(inner, CodeInternal, "sign-in rejected")

	s.True(HasCode(wrapped, CodeAccountUnavailable))
	s.False(HasCode(wrapped, CodeInternal))
}

func (s *DomainErrorsSuite) TestHasCode() {
	s.True(HasCode(New(CodeForbidden, "no override for employees"), CodeForbidden))
	s.False(HasCode(errors.New("plain"), CodeForbidden))
	s.False(HasCode(nil, CodeForbidden))
}
