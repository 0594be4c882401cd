package main

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io/fs"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/preskool/core"
	"github.com/trezcool/preskool/core/entity"
	"github.com/trezcool/preskool/core/user"
	"github.com/trezcool/preskool/services/api"
	"github.com/trezcool/preskool/tests"
)

type cliTest struct {
	name       string
	args       []string // without program name
	input      string
	wantErr    error
	wantErrStr string
	wantOut    []string
}

type testCLI struct {
	srv *testutil.DevAPI
	out *bytes.Buffer
}

func setup(t *testing.T) *testCLI {
	srv := testutil.NewDevAPI(t)
	srv.Conf.API.TokenFile = filepath.Join(t.TempDir(), "token")
	return &testCLI{srv: srv, out: &bytes.Buffer{}}
}

// newCLI returns a fresh command line reading input.
func (tc *testCLI) newCLI(input string) *commandLine {
	tc.out.Reset()
	cli := newCommandLine(tc.srv.Conf, core.NopLogger{}, strings.NewReader(input), tc.out)
	cli.usrSvc = user.NewService(tc.srv.Repos.Users)
	return cli
}

func mockPasswords(pwds ...string) {
	readPasswordFunc = func(fd int) ([]byte, error) {
		if len(pwds) == 0 {
			return nil, nil
		}
		pwd := pwds[0]
		pwds = pwds[1:]
		return []byte(pwd), nil
	}
}

func (tc *testCLI) login(t *testing.T) {
	mockPasswords(testutil.AdminPassword)
	require.NoError(t, tc.newCLI("").run([]string{"admin", "login", "-username", testutil.AdminUsername}))
}

func (tc *testCLI) runTests(t *testing.T, tests []cliTest) {
	for _, tt := range tests {
		args := append([]string{"admin"}, tt.args...)

		t.Run(tt.name, func(t *testing.T) {
			err := tc.newCLI(tt.input).run(args)
			switch {
			case tt.wantErr != nil:
				assert.Equal(t, tt.wantErr, errors.Cause(err))
			case tt.wantErrStr != "":
				require.Error(t, err)
				assert.Equal(t, tt.wantErrStr, err.Error())
			default:
				require.NoError(t, err)
			}
			for _, want := range tt.wantOut {
				assert.Contains(t, tc.out.String(), want)
			}
		})
	}
}

func Test_commandLine_usage(t *testing.T) {
	tc := setup(t)
	tc.runTests(t, []cliTest{
		{name: "no command", wantErr: errHelp, wantOut: []string{"Usage:"}},
		{name: "unknown command", args: []string{"lol"}, wantErr: errHelp},
		{name: "list: no entity", args: []string{"list"}, wantErr: errHelp},
		{name: "list: -h", args: []string{"list", "-h"}, wantErr: errHelp},
		{name: "update: no id", args: []string{"update", "sections", "-data", `{"name": "C"}`}, wantErr: errHelp},
		{name: "login: no username", args: []string{"login"}, wantErr: errHelp},
		{name: "not logged in", args: []string{"list", "sections"}, wantErr: errNotLoggedIn},
		{name: "entities", args: []string{"entities"}, wantOut: []string{"hostelrooms", "Hostel Rooms", "sections"}},
	})
}

func Test_commandLine_login(t *testing.T) {
	tc := setup(t)

	mockPasswords("")
	assert.Equal(t, errHelp, tc.newCLI("").run([]string{"admin", "login", "-username", "admin"}))

	mockPasswords("nope")
	err := tc.newCLI("").run([]string{"admin", "login", "-username", "admin"})
	require.Error(t, err)
	assert.Equal(t, "logging in: invalid credentials", err.Error())

	tc.login(t)
	assert.Contains(t, tc.out.String(), "Logged in until")
	token, err := api.LoadToken(tc.srv.Conf.API.TokenFile)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func Test_commandLine_list(t *testing.T) {
	tc := setup(t)
	tc.login(t)

	tc.runTests(t, []cliTest{
		{
			name: "unknown entity", args: []string{"list", "section"},
			wantErrStr: `unknown entity "section"; did you mean "sections"?`,
		},
		{name: "all", args: []string{"list", "sections"}, wantOut: []string{"Sections\n========", "CLASS", "SE1", "1-3 of 3 items", "(Previous)", "(Next)"}},
		{name: "search", args: []string{"list", "sections", "-search", "class 2"}, wantOut: []string{"SE3", "1-1 of 1 items"}},
		{name: "class by room no", args: []string{"list", "sections", "-class", "101"}, wantOut: []string{"Sections (class room 101)", "1-2 of 2 items"}},
		{name: "class by id", args: []string{"list", "sections", "-class", "2"}, wantOut: []string{"(class room 102)", "1-1 of 1 items"}},
		{
			name: "unknown class", args: []string{"list", "sections", "-class", "999"},
			wantErrStr: `unknown class room "999"; choose one of 101, 102, Lab A`,
		},
		{name: "bad page size", args: []string{"list", "sections", "-size", "15"}, wantErrStr: "invalid page size 15: must be one of [10 20 30]"},
		{
			name: "unknown sort field", args: []string{"list", "sections", "-sort", "nope"},
			wantErrStr: `cannot sort sections by "nope"; fields are id, class, section, noOfStudents, noOfSubjects, status`,
		},
		{name: "select page", args: []string{"list", "sections", "-select"}, wantOut: []string{"[x]", "selected: 1, 2, 3"}},
	})
}

func Test_commandLine_listJSON(t *testing.T) {
	tc := setup(t)
	tc.login(t)

	require.NoError(t, tc.newCLI("").run([]string{"admin", "list", "hostelrooms", "-sort", "amount", "-desc", "-json"}))

	var rows []entity.ViewRow
	require.NoError(t, json.Unmarshal(tc.out.Bytes(), &rows))
	keys := make([]string, len(rows))
	for i, row := range rows {
		keys[i] = row.Key
	}
	assert.Equal(t, []string{"8", "7", "9"}, keys)
	assert.Equal(t, "₹600", rows[0].Fields["amount"])
}

func Test_commandLine_mutations(t *testing.T) {
	tc := setup(t)
	tc.login(t)

	tc.runTests(t, []cliTest{
		{
			name: "create", args: []string{"create", "hostelrooms", "-data", `{"room_no": "H-9", "monthly_fee": 300}`},
			wantOut: []string{"Hostel Rooms: create done.", "H-9", "1-4 of 4 items"},
		},
		{
			name: "create: prompted", args: []string{"create", "hostelrooms"}, input: `{"room_no": "H-10"}` + "\n",
			wantOut: []string{"New Hostel Rooms (JSON object): ", "H-10", "1-5 of 5 items"},
		},
		{name: "create: invalid json", args: []string{"create", "hostelrooms", "-data", `{"room_no"`}, wantErrStr: "opening \"createForm\": invalid data:\n  data: data must be valid JSON"},
		{name: "create: not an object", args: []string{"create", "hostelrooms", "-data", `[1]`}, wantErrStr: `opening "createForm": data must be a non-empty JSON object`},
		{name: "create: no input", args: []string{"create", "hostelrooms"}, wantErrStr: `opening "createForm": reading input: EOF`},
		{
			name: "update", args: []string{"update", "hostelrooms", "-id", "7", "-data", `{"room_no": "A-13"}`},
			wantOut: []string{"Hostel Rooms: update done.", "A-13"},
		},
		{
			name: "update: unknown id", args: []string{"update", "hostelrooms", "-id", "99", "-data", `{"room_no": "Z"}`},
			wantErrStr: "updating hostelrooms: not found",
		},
		{name: "delete: cancelled", args: []string{"delete", "hostelrooms", "-id", "7"}, input: "n\n", wantErr: errCancelled},
		{
			name: "delete: confirmed", args: []string{"delete", "hostelrooms", "-id", "7"}, input: "y\n",
			wantOut: []string{"Delete Hostel Rooms 7? [y/N]", "Hostel Rooms: delete done.", "1-4 of 4 items"},
		},
		{name: "delete: -yes", args: []string{"delete", "hostelrooms", "-id", "8", "-yes"}, wantOut: []string{"1-3 of 3 items"}},
		{name: "delete: unknown id", args: []string{"delete", "hostelrooms", "-id", "8", "-yes"}, wantErrStr: "deleting hostelrooms: not found"},
	})
}

func Test_commandLine_accounts(t *testing.T) {
	tc := setup(t)

	mockPasswords("Her0!pass", "Her0!pass")
	require.NoError(t, tc.newCLI("").run([]string{"admin", "adduser", "-name", "Hero", "-username", "hero", "-role", user.RoleTeacher}))
	assert.Contains(t, tc.out.String(), `User "hero" created`)

	mockPasswords("Her0!pass", "Her0!pass")
	err := tc.newCLI("").run([]string{"admin", "adduser", "-name", "Hero", "-username", "hero"})
	require.Error(t, err)
	assert.Equal(t, "invalid data:\n  username: a user with this username already exists", err.Error())

	mockPasswords("weak", "weak")
	err = tc.newCLI("").run([]string{"admin", "adduser", "-name", "Zero", "-username", "zero", "-role", "boss"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "password must contain at least 8 characters")
	assert.Contains(t, err.Error(), "roles: invalid roles")

	mockPasswords("N3w!pass", "N3w!pass")
	require.NoError(t, tc.newCLI("").run([]string{"admin", "resetpassword", "-username", "HERO"}))

	mockPasswords("N3w!pass", "N3w!pass")
	err = tc.newCLI("").run([]string{"admin", "resetpassword", "-username", "nobody"})
	assert.Equal(t, user.ErrNotFound, errors.Cause(err))

	// the dev API accepts the new password
	mockPasswords("N3w!pass")
	require.NoError(t, tc.newCLI("").run([]string{"admin", "login", "-username", "hero"}))
}

func Test_commandLine_migrate(t *testing.T) {
	tc := setup(t)

	connectDBFunc = func(core.DatabaseConfig) (*sql.DB, error) {
		return sql.Open("postgres", "postgres://localhost/preskool_test?sslmode=disable")
	}
	gooseRunFunc = func(command string, db *sql.DB, fsys fs.FS, dir string, args ...string) error {
		switch command {
		case "up", "up-by-one", "down", "fix", "redo", "reset", "status", "version": // pass
		case "up-to", "down-to":
			if len(args) == 0 {
				return fmt.Errorf("%s must be of form: goose [OPTIONS] DRIVER DBSTRING %s VERSION", command, command)
			}
			if _, err := strconv.ParseInt(args[0], 10, 64); err != nil {
				return fmt.Errorf("version must be a number (got '%s')", args[0])
			}
		case "create":
			if len(args) == 0 {
				return fmt.Errorf("create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]")
			}
		default:
			return fmt.Errorf("%q: no such command", command)
		}
		if _, err := fs.Stat(fsys, dir+"/00001_init.sql"); err != nil {
			return err
		}
		return nil
	}

	tc.runTests(t, []cliTest{
		{name: "no subcommand", args: []string{"migrate"}, wantErr: errHelp},
		{name: "unknown subcommand", args: []string{"migrate", "lol"}, wantErrStr: "\"lol\": no such command"},
		{name: "up-to: no args", args: []string{"migrate", "up-to"}, wantErrStr: "up-to must be of form: goose [OPTIONS] DRIVER DBSTRING up-to VERSION"},
		{name: "up-to: non-int arg", args: []string{"migrate", "up-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "create: no args", args: []string{"migrate", "create"}, wantErrStr: "create must be of form: goose [OPTIONS] DRIVER DBSTRING create NAME [go|sql]"},
		{name: "down-to: non-int arg", args: []string{"migrate", "down-to", "lol"}, wantErrStr: "version must be a number (got 'lol')"},
		{name: "up", args: []string{"migrate", "up"}},
		{name: "up-to", args: []string{"migrate", "up-to", "1"}},
		{name: "down", args: []string{"migrate", "down"}},
		{name: "status", args: []string{"migrate", "status"}},
		{name: "create", args: []string{"migrate", "create", "fees", "sql"}},
	})
}
