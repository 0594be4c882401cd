package main

import (
	"github.com/trezcool/preskool/core/user"
)

func (cli *commandLine) runResetPassword(args []string) error {
	resetPasswordCmd := cli.flagSet("resetpassword")
	uname := resetPasswordCmd.String("username", "", "The user's username or email. The password will be prompted next.")
	if err := cli.parse(resetPasswordCmd, args); err != nil {
		return err
	}
	if *uname == "" {
		resetPasswordCmd.Usage()
		return errHelp
	}

	pwd, err := cli.readPassword("Enter password")
	if err != nil {
		return err
	}
	if pwd == "" {
		resetPasswordCmd.Usage()
		return errHelp
	}
	confirm, err := cli.readPassword("Confirm password")
	if err != nil {
		return err
	}
	return cli.resetPassword(*uname, user.NewPassword{Password: pwd, PasswordConfirm: confirm})
}

func (cli *commandLine) resetPassword(uname string, np user.NewPassword) error {
	svc, err := cli.users()
	if err != nil {
		return err
	}
	if err = np.Validate(cli.validate); err != nil {
		return cli.validationMessage(err)
	}
	if err = svc.ResetPassword(uname, np); err != nil {
		return err
	}
	cli.println("Password updated.")
	return nil
}
