package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/fsdevblog/floramart/internal/domain"
	"github.com/fsdevblog/floramart/internal/repository/repoargs"
	"github.com/fsdevblog/floramart/internal/transport/api/tokens"
)

type memUserRepo struct {
	nextID     int64
	byUsername map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{byUsername: make(map[string]*domain.User)}
}

func (r *memUserRepo) CreateUser(_ context.Context, args repoargs.CreateUser) (*domain.User, error) {
	if _, ok := r.byUsername[args.Username]; ok {
		return nil, domain.ErrDuplicateKey
	}
	r.nextID++
	user := &domain.User{
		ID:        r.nextID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
		Username:  args.Username,
		Password:  args.Password,
		Role:      args.Role,
	}
	r.byUsername[user.Username] = user
	u := *user
	return &u, nil
}

func (r *memUserRepo) FindUserByUsername(_ context.Context, username string) (*domain.User, error) {
	user, ok := r.byUsername[username]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}
	u := *user
	return &u, nil
}

func (r *memUserRepo) FindByID(_ context.Context, id int64) (*domain.User, error) {
	for _, user := range r.byUsername {
		if user.ID == id {
			u := *user
			return &u, nil
		}
	}
	return nil, domain.ErrRecordNotFound
}

type UserServiceTestSuite struct {
	suite.Suite
	service *UserService
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceTestSuite))
}

func (s *UserServiceTestSuite) SetupTest() {
	u := newStubUOW()
	u.put(repoargs.UserRepoName, newMemUserRepo())

	var err error
	s.service, err = NewUserService(u, []byte("test-secret"))
	s.Require().NoError(err)
}

func (s *UserServiceTestSuite) TestRegister_DefaultRole() {
	user, token, err := s.service.Register(context.Background(), RegisterUserArgs{
		Username: "mai",
		Password: "secret123",
	})
	s.Require().NoError(err)
	s.Equal(domain.RoleCustomer, user.Role)
	s.NotEmpty(token)

	// токен несет ID и роль пользователя.
	claims, claimsErr := tokens.ValidateUserJWT(token, []byte("test-secret"))
	s.Require().NoError(claimsErr)
	s.Equal(user.ID, claims.ID)
	s.Equal(domain.RoleCustomer, claims.Role)
}

func (s *UserServiceTestSuite) TestRegister_FloristRole() {
	user, _, err := s.service.Register(context.Background(), RegisterUserArgs{
		Username: "linh",
		Password: "secret123",
		Role:     domain.RoleFlorist,
	})
	s.Require().NoError(err)
	s.Equal(domain.RoleFlorist, user.Role)
}

func (s *UserServiceTestSuite) TestRegister_DuplicateUsername() {
	_, _, err := s.service.Register(context.Background(), RegisterUserArgs{Username: "mai", Password: "secret123"})
	s.Require().NoError(err)

	_, _, err = s.service.Register(context.Background(), RegisterUserArgs{Username: "mai", Password: "another456"})
	s.Require().ErrorIs(err, domain.ErrDuplicateKey)
}

func (s *UserServiceTestSuite) TestLogin() {
	_, _, err := s.service.Register(context.Background(), RegisterUserArgs{Username: "mai", Password: "secret123"})
	s.Require().NoError(err)

	user, token, loginErr := s.service.Login(context.Background(), LoginUserArgs{Username: "mai", Password: "secret123"})
	s.Require().NoError(loginErr)
	s.Equal("mai", user.Username)
	s.NotEmpty(token)
}

func (s *UserServiceTestSuite) TestLogin_WrongPassword() {
	_, _, err := s.service.Register(context.Background(), RegisterUserArgs{Username: "mai", Password: "secret123"})
	s.Require().NoError(err)

	_, _, err = s.service.Login(context.Background(), LoginUserArgs{Username: "mai", Password: "wrong"})
	s.Require().ErrorIs(err, domain.ErrPasswordMissMatch)
}

func (s *UserServiceTestSuite) TestLogin_UnknownUser() {
	_, _, err := s.service.Login(context.Background(), LoginUserArgs{Username: "ghost", Password: "secret123"})
	s.Require().ErrorIs(err, domain.ErrRecordNotFound)
}
