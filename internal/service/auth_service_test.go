package service

import (
	"github.com/d60-Lab/socialfeed/pkg/apperr"
)

func (s *ServiceSuite) TestSignupAndLogin() {
	res, err := s.auth.Signup(s.ctx, SignupInput{
		Name:     "Rajan",
		Username: " Rajan_01 ",
		Email:    "Rajan@Example.com",
		Password: "secret1",
	})
	s.Require().NoError(err)
	s.Equal("rajan_01", res.User.Username)
	s.Equal("rajan@example.com", res.User.Email)
	s.NotEqual("secret1", res.User.Password)
	s.NotEmpty(res.Token)

	u, err := s.auth.Authenticate(s.ctx, res.Token)
	s.Require().NoError(err)
	s.Equal(res.User.ID, u.ID)

	login, err := s.auth.Login(s.ctx, LoginInput{Email: "RAJAN@example.com", Password: "secret1"})
	s.Require().NoError(err)
	s.Equal(res.User.ID, login.User.ID)

	_, err = s.auth.Login(s.ctx, LoginInput{Email: "rajan@example.com", Password: "wrong"})
	s.requireKind(err, apperr.KindInvalidInput)
	_, err = s.auth.Login(s.ctx, LoginInput{Email: "nobody@example.com", Password: "secret1"})
	s.requireKind(err, apperr.KindInvalidInput)
}

func (s *ServiceSuite) TestSignupConflicts() {
	_, err := s.auth.Signup(s.ctx, SignupInput{Name: "Neha", Username: "neha", Email: "neha@example.com", Password: "secret1"})
	s.Require().NoError(err)

	_, err = s.auth.Signup(s.ctx, SignupInput{Name: "N", Username: "neha", Email: "other@example.com", Password: "secret1"})
	s.requireKind(err, apperr.KindConflict)
	s.Contains(err.Error(), "username already taken")

	_, err = s.auth.Signup(s.ctx, SignupInput{Name: "N", Username: "neha2", Email: "NEHA@example.com", Password: "secret1"})
	s.requireKind(err, apperr.KindConflict)
	s.Contains(err.Error(), "email already registered")
}

func (s *ServiceSuite) TestSignupValidation() {
	cases := map[string]SignupInput{
		"short username":  {Name: "A", Username: "ab", Email: "a@example.com", Password: "secret1"},
		"bad characters":  {Name: "A", Username: "a-b-c", Email: "a@example.com", Password: "secret1"},
		"bad email":       {Name: "A", Username: "abc", Email: "not-an-email", Password: "secret1"},
		"short password":  {Name: "A", Username: "abc", Email: "a@example.com", Password: "123"},
		"missing name":    {Name: "  ", Username: "abc", Email: "a@example.com", Password: "secret1"},
	}
	for name, in := range cases {
		_, err := s.auth.Signup(s.ctx, in)
		s.Run(name, func() { s.requireKind(err, apperr.KindInvalidInput) })
	}
}

func (s *ServiceSuite) TestAuthenticateRejectsUnknownUser() {
	tok, err := s.tokens.Issue("ghost")
	s.Require().NoError(err)
	_, err = s.auth.Authenticate(s.ctx, tok)
	s.requireKind(err, apperr.KindUnauthorized)

	_, err = s.auth.Authenticate(s.ctx, "garbage")
	s.requireKind(err, apperr.KindUnauthorized)
}
