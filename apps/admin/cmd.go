package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"syscall"
	"text/tabwriter"

	"golang.org/x/term"

	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core/resource"
	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core/session"
)

var (
	readPasswordFunc = term.ReadPassword // mockable

	errHelp = errors.New("help provided")
)

type commandLine struct {
	reg  *resource.Registry
	svc  *resource.Service
	auth session.Authenticator
	out  io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  login -username USERNAME - log in and print the access token")
	fmt.Fprintln(cli.out, "  list -resource RESOURCE [-search QUERY] - list the records of a resource, newest first")
	fmt.Fprintln(cli.out, "  delete -resource RESOURCE -id ID -token TOKEN - delete a record")
	fmt.Fprintln(cli.out, "  health - check the backend")
	fmt.Fprintf(cli.out, "Resources: %s\n", strings.Join(cli.resourceNames(), ", "))
}

func (cli *commandLine) resourceNames() []string {
	defs := cli.reg.All()
	names := make([]string, 0, len(defs))
	for _, def := range defs {
		names = append(names, def.Name)
	}
	return names
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	loginCmd := flag.NewFlagSet("login", flag.ExitOnError)
	loginUname := loginCmd.String("username", "", "The administrator's username. The password will be prompted next.")

	listCmd := flag.NewFlagSet("list", flag.ExitOnError)
	listResource := listCmd.String("resource", "", "The resource to list (eg. courses).")
	listSearch := listCmd.String("search", "", "Only show records matching this text.")

	deleteCmd := flag.NewFlagSet("delete", flag.ExitOnError)
	deleteResource := deleteCmd.String("resource", "", "The resource of the record (eg. courses).")
	deleteID := deleteCmd.String("id", "", "The record's id.")
	deleteToken := deleteCmd.String("token", "", "An access token, as printed by login.")

	ctx := context.Background()

	switch args[1] {
	case "login":
		if err := loginCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *loginUname == "" {
			loginCmd.Usage()
			return errHelp
		}
		fmt.Fprint(cli.out, "Enter password:")
		pwd, err := readPasswordFunc(syscall.Stdin)
		fmt.Fprintln(cli.out)
		if err != nil {
			return err
		}
		if len(pwd) == 0 {
			loginCmd.Usage()
			return errHelp
		}
		return cli.login(ctx, *loginUname, string(pwd))
	case "list":
		if err := listCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *listResource == "" {
			listCmd.Usage()
			return errHelp
		}
		return cli.list(ctx, *listResource, *listSearch)
	case "delete":
		if err := deleteCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *deleteResource == "" || *deleteID == "" || *deleteToken == "" {
			deleteCmd.Usage()
			return errHelp
		}
		return cli.delete(ctx, *deleteResource, *deleteID, *deleteToken)
	case "health":
		return cli.health(ctx)
	default:
		cli.printUsage()
		return errHelp
	}
}

func (cli *commandLine) login(ctx context.Context, username, password string) error {
	sess, err := cli.auth.Login(ctx, strings.TrimSpace(username), password)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "logged in as %s (%s)\n", sess.Username, sess.Role)
	fmt.Fprintf(cli.out, "token: %s\n", sess.Token)
	return nil
}

func (cli *commandLine) list(ctx context.Context, name, search string) error {
	def, err := cli.reg.Lookup(name)
	if err != nil {
		return err
	}
	lv := resource.LoadList(ctx, cli.svc, def, search)
	if lv.Failed() {
		return errors.New(lv.Err)
	}
	if lv.Empty() {
		fmt.Fprintf(cli.out, "No %s found.\n", def.Label)
		return nil
	}

	cols := def.Columns()
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	header := []string{"ID"}
	for _, col := range cols {
		header = append(header, strings.ToUpper(col.Label))
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, rec := range lv.Records {
		row := []string{rec.ID()}
		for _, col := range cols {
			row = append(row, def.Display(rec, col.Name))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	return w.Flush()
}

func (cli *commandLine) delete(ctx context.Context, name, id, token string) error {
	def, err := cli.reg.Lookup(name)
	if err != nil {
		return err
	}
	res, err := cli.svc.Delete(ctx, session.Session{Token: token}, def, id)
	if err != nil {
		return err
	}
	fmt.Fprintln(cli.out, res.Message)
	return nil
}

func (cli *commandLine) health(ctx context.Context) error {
	body, err := cli.svc.Health(ctx)
	if err != nil {
		return err
	}
	status, _ := body["status"].(string)
	fmt.Fprintf(cli.out, "backend: %s\n", status)
	return nil
}
