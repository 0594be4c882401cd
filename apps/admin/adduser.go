package main

import (
	"strings"

	"github.com/trezcool/preskool/core/user"
)

func (cli *commandLine) runAddUser(args []string) error {
	addUserCmd := cli.flagSet("adduser")
	name := addUserCmd.String("name", "", "The user's full name.")
	uname := addUserCmd.String("username", "", "The user's username.")
	email := addUserCmd.String("email", "", "The user's email.")
	roles := addUserCmd.String("role", "", "Comma separated roles, eg. "+user.RoleTeacher+". The password will be prompted next.")
	if err := cli.parse(addUserCmd, args); err != nil {
		return err
	}
	if *name == "" || (*uname == "" && *email == "") {
		addUserCmd.Usage()
		return errHelp
	}

	nu := user.NewUser{
		Name:     *name,
		Username: *uname,
		Email:    *email,
	}
	for _, role := range strings.Split(*roles, ",") {
		if role = strings.TrimSpace(role); role != "" {
			nu.Roles = append(nu.Roles, role)
		}
	}

	var err error
	if nu.Password, err = cli.readPassword("Enter password"); err != nil {
		return err
	}
	if nu.PasswordConfirm, err = cli.readPassword("Confirm password"); err != nil {
		return err
	}
	return cli.addUser(nu)
}

// addUser validates and creates a dev API account.
func (cli *commandLine) addUser(nu user.NewUser) error {
	svc, err := cli.users()
	if err != nil {
		return err
	}
	if err = nu.Validate(cli.validate, svc); err != nil {
		return cli.validationMessage(err)
	}
	usr, err := svc.Create(nu)
	if err != nil {
		return err
	}
	cli.printf("User %q created (id %d).\n", usr.Username, usr.ID)
	return nil
}
