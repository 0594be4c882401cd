package user

import (
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/preskool/core"
)

var (
	// errors
	ErrNotFound       = errors.New("user not found")
	ErrEmailExists    = errors.New("a user with this email already exists")
	ErrUsernameExists = errors.New("a user with this username already exists")
	ErrInvalidLogin   = errors.New("invalid credentials")
	ErrDeactivated    = errors.New("account deactivated")
)

type (
	Repository interface {
		CheckUsernameUniqueness(username, email string) error
		CreateUser(user User) (User, error)
		GetUserByID(id int) (User, error)
		GetUserByUsernameOrEmail(username string) (User, error)
		SetLastLogin(id int, at time.Time) error
		SetPassword(id int, hash []byte) error
	}

	Service struct {
		repo Repository
		now  func() time.Time
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (svc *Service) checkUniqueness(uname, email string) error {
	if err := svc.repo.CheckUsernameUniqueness(uname, email); err != nil {
		var field string
		switch errors.Cause(err) {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

// Create stores a validated NewUser.
func (svc *Service) Create(nu NewUser) (User, error) {
	usr := User{
		Name:      nu.Name,
		Username:  nu.Username,
		Email:     nu.Email,
		IsActive:  true,
		Roles:     nu.Roles,
		CreatedAt: svc.now().UTC(),
	}
	if err := usr.SetPassword(nu.Password); err != nil {
		return User{}, errors.Wrap(err, "hashing password")
	}
	return svc.repo.CreateUser(usr)
}

func (svc *Service) GetByID(id int) (User, error) {
	return svc.repo.GetUserByID(id)
}

// Authenticate checks the credentials of an active user and records the login.
func (svc *Service) Authenticate(uname, pwd string) (User, error) {
	usr, err := svc.repo.GetUserByUsernameOrEmail(core.CleanString(uname, true /* lower */))
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return User{}, ErrInvalidLogin
		}
		return User{}, errors.Wrap(err, "finding user by username or email")
	}
	if err = usr.CheckPassword(pwd); err != nil {
		return User{}, ErrInvalidLogin
	}
	if !usr.IsActive {
		return User{}, ErrDeactivated
	}

	usr.LastLogin = svc.now().UTC()
	if err = svc.repo.SetLastLogin(usr.ID, usr.LastLogin); err != nil {
		return User{}, errors.Wrap(err, "setting lastLogin")
	}
	return usr, nil
}

// ResetPassword replaces the password of the user known by username or email.
func (svc *Service) ResetPassword(uname string, np NewPassword) error {
	usr, err := svc.repo.GetUserByUsernameOrEmail(core.CleanString(uname, true /* lower */))
	if err != nil {
		return err
	}
	if err = usr.SetPassword(np.Password); err != nil {
		return errors.Wrap(err, "hashing password")
	}
	return svc.repo.SetPassword(usr.ID, usr.PasswordHash)
}

// EnsureAdmin creates the admin owner account unless a user with that username exists.
func (svc *Service) EnsureAdmin(username, password string) (User, error) {
	usr, err := svc.repo.GetUserByUsernameOrEmail(core.CleanString(username, true /* lower */))
	if err == nil {
		return usr, nil
	}
	if errors.Cause(err) != ErrNotFound {
		return User{}, errors.Wrap(err, "finding admin")
	}
	return svc.Create(NewUser{
		Name:     "Administrator",
		Username: core.CleanString(username, true /* lower */),
		Password: password,
		Roles:    []string{RoleAdminOwner},
	})
}
