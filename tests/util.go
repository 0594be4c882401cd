package testutil

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/trezcool/preskool/apps/devapi/echo"
	"github.com/trezcool/preskool/core"
	"github.com/trezcool/preskool/core/record"
	"github.com/trezcool/preskool/core/user"
	"github.com/trezcool/preskool/storage/database"
)

const (
	AdminUsername = "admin"
	AdminPassword = "Adm1n!pass"
)

func CreateUser(
	t *testing.T,
	repo user.Repository,
	name, uname, pwd string,
	roles []string,
	isActive bool,
) user.User {
	usr := user.User{
		Name:      name,
		Username:  uname,
		Email:     uname + "@test.cd",
		Roles:     roles,
		IsActive:  isActive,
		CreatedAt: time.Now().UTC(),
	}
	if pwd != "" {
		if err := usr.SetPassword(pwd); err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
	}
	usr, err := repo.CreateUser(usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}

// DevAPI is a seeded in-memory dev API served over HTTP.
type DevAPI struct {
	*httptest.Server
	Conf  *core.Config
	Repos *database.Repositories
}

func NewDevAPI(t *testing.T) *DevAPI {
	conf := core.NewTestConfig()

	repos, err := database.Open(conf.Database)
	if err != nil {
		t.Fatalf("database.Open() failed: %v", err)
	}
	if err = record.Seed(context.Background(), repos.Records); err != nil {
		t.Fatalf("record.Seed() failed: %v", err)
	}
	usrSvc := user.NewService(repos.Users)
	if _, err = usrSvc.EnsureAdmin(AdminUsername, AdminPassword); err != nil {
		t.Fatalf("EnsureAdmin() failed: %v", err)
	}

	app := echoapi.NewServer(conf, nil, echoapi.Deps{
		Records: repos.Records,
		UserSvc: usrSvc,
	})
	srv := httptest.NewServer(app)
	t.Cleanup(func() {
		srv.Close()
		_ = repos.Close()
	})

	conf.API.BaseURL = srv.URL
	return &DevAPI{Server: srv, Conf: conf, Repos: repos}
}
