package main

import (
	"fmt"

	"github.com/trezcool/preskool/core/entity"
	"github.com/trezcool/preskool/services/api"
)

func (cli *commandLine) entities() error {
	for _, name := range entity.Names() {
		schema := entity.MustLookup(name)
		cli.printf("  %-16s %s\n", name, schema.Title)
	}
	return nil
}

func (cli *commandLine) runLogin(args []string) error {
	loginCmd := cli.flagSet("login")
	uname := loginCmd.String("username", "", "The username or email. The password will be prompted next.")
	if err := cli.parse(loginCmd, args); err != nil {
		return err
	}
	if *uname == "" {
		loginCmd.Usage()
		return errHelp
	}
	pwd, err := cli.readPassword("Enter password")
	if err != nil {
		return err
	}
	if pwd == "" {
		loginCmd.Usage()
		return errHelp
	}
	return cli.login(*uname, pwd)
}

// login stores the token the API hands out for the credentials.
func (cli *commandLine) login(uname, pwd string) error {
	ctx, cancel := cli.context()
	defer cancel()

	client := api.NewClient(cli.conf.API, api.WithLogger(cli.logger))
	token, err := client.Login(ctx, uname, pwd)
	if err != nil {
		return err
	}
	if err = api.SaveToken(cli.conf.API.TokenFile, token); err != nil {
		return err
	}

	msg := "Logged in."
	if exp, err := api.TokenExpiry(token); err == nil && !exp.IsZero() {
		msg = fmt.Sprintf("Logged in until %s.", exp.Local().Format("2006-01-02 15:04"))
	}
	cli.println(msg)
	return nil
}
