package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"sort"
	"strings"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/trezcool/preskool/core"
	"github.com/trezcool/preskool/core/dialog"
	"github.com/trezcool/preskool/core/user"
	"github.com/trezcool/preskool/services/api"
	"github.com/trezcool/preskool/storage/database"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp        = errors.New("help provided")
	errNotLoggedIn = errors.New("not logged in; run: admin login -username USERNAME")
)

type commandLine struct {
	conf    *core.Config
	logger  core.Logger
	out     io.Writer
	in      *bufio.Reader
	dialogs *dialog.Manager

	validate   *validator.Validate
	translator ut.Translator

	// opened on first use by the account commands
	usrSvc *user.Service
	closer io.Closer
}

func newCommandLine(conf *core.Config, logger core.Logger, in io.Reader, out io.Writer) *commandLine {
	validate, translator := core.NewValidator()
	user.RegisterValidators(validate, translator)
	core.RegisterCustomTranslation(validate, translator, jsonTag, jsonText, true)
	return &commandLine{
		conf:       conf,
		logger:     logger,
		out:        out,
		in:         bufio.NewReader(in),
		dialogs:    dialog.NewManager(),
		validate:   validate,
		translator: translator,
	}
}

func (cli *commandLine) printUsage() {
	cli.println("Usage:")
	cli.println("  entities - list the known entities")
	cli.println("  login -username USERNAME - log in to the API; the password is prompted next")
	cli.println("  list ENTITY [-search S] [-sort FIELD,-FIELD] [-desc] [-page N] [-size N] [-select] [-class ID] [-json]")
	cli.println("  create ENTITY [-data JSON] - the payload is prompted when -data is omitted")
	cli.println("  update ENTITY -id ID [-data JSON]")
	cli.println("  delete ENTITY -id ID [-yes]")
	cli.println("  adduser -name NAME -username USERNAME [-email EMAIL] [-role ROLE,...] - create a dev API account")
	cli.println("  resetpassword -username USERNAME|EMAIL - reset a dev API account's password")
	cli.println("  migrate COMMAND [ARGS] - run goose migrations on the postgres database")
}

func (cli *commandLine) println(a ...interface{}) {
	_, _ = fmt.Fprintln(cli.out, a...)
}

func (cli *commandLine) printf(format string, a ...interface{}) {
	_, _ = fmt.Fprintf(cli.out, format, a...)
}

func (cli *commandLine) flagSet(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(cli.out)
	return fs
}

func (cli *commandLine) parse(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return errHelp
		}
		return err
	}
	return nil
}

// entityArgs splits "ENTITY -flags..." for the commands taking an entity first.
func entityArgs(args []string) (string, []string, bool) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		return "", args, false
	}
	return args[0], args[1:], true
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}
	defer cli.close()

	cmdArgs := args[2:]
	switch args[1] {
	case "entities":
		return cli.entities()
	case "login":
		return cli.runLogin(cmdArgs)
	case "list":
		return cli.runList(cmdArgs)
	case "create", "update", "delete":
		return cli.runMutation(args[1], cmdArgs)
	case "adduser":
		return cli.runAddUser(cmdArgs)
	case "resetpassword":
		return cli.runResetPassword(cmdArgs)
	case "migrate":
		if len(cmdArgs) == 0 {
			cli.printUsage()
			return errHelp
		}
		return cli.migrate(cmdArgs)
	default:
		cli.printUsage()
		return errHelp
	}
}

// readPassword prompts for a password without echoing it.
func (cli *commandLine) readPassword(prompt string) (string, error) {
	cli.printf("%s:", prompt)
	pwd, err := readPasswordFunc(int(syscall.Stdin))
	cli.println()
	if err != nil {
		return "", errors.Wrap(err, "reading password")
	}
	return string(pwd), nil
}

// readLine prompts for one line of input.
func (cli *commandLine) readLine(prompt string) (string, error) {
	cli.printf("%s: ", prompt)
	line, err := cli.in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", errors.Wrap(err, "reading input")
	}
	return strings.TrimSpace(line), nil
}

// context bounds one command by the API timeout.
func (cli *commandLine) context() (context.Context, context.CancelFunc) {
	if cli.conf.API.Timeout > 0 {
		return context.WithTimeout(context.Background(), cli.conf.API.Timeout)
	}
	return context.WithCancel(context.Background())
}

// client returns an API client carrying the configured or saved token.
func (cli *commandLine) client() (*api.Client, error) {
	token := cli.conf.API.Token
	if token == "" {
		var err error
		if token, err = api.LoadToken(cli.conf.API.TokenFile); err != nil {
			return nil, err
		}
	}
	if token == "" {
		return nil, errNotLoggedIn
	}
	return api.NewClient(cli.conf.API, api.WithToken(token), api.WithLogger(cli.logger)), nil
}

// users opens the account store of the dev API database.
func (cli *commandLine) users() (*user.Service, error) {
	if cli.usrSvc != nil {
		return cli.usrSvc, nil
	}
	if cli.conf.Database.Engine != database.EnginePostgres {
		return nil, errors.Errorf("account commands need the %s database engine, got %q", database.EnginePostgres, cli.conf.Database.Engine)
	}
	repos, err := database.Open(cli.conf.Database)
	if err != nil {
		return nil, err
	}
	cli.closer = repos
	cli.usrSvc = user.NewService(repos.Users)
	return cli.usrSvc, nil
}

func (cli *commandLine) close() {
	if cli.closer != nil {
		if err := cli.closer.Close(); err != nil {
			cli.logger.Error("closing database", err)
		}
		cli.closer = nil
	}
}

// validationMessage flattens validation errors into one line per field.
func (cli *commandLine) validationMessage(err error) error {
	fldErrs, ok := core.TranslateErrors(err, cli.translator)
	if !ok {
		return err
	}
	lines := make([]string, 0, len(fldErrs))
	for fld, msg := range fldErrs {
		lines = append(lines, fld+": "+msg)
	}
	sort.Strings(lines)
	return errors.New("invalid data:\n  " + strings.Join(lines, "\n  "))
}
