package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/pflag"

	"github.com/nkiryanov/triply/internal/models"
	"github.com/nkiryanov/triply/internal/session"
)

var errUsage = errors.New("wrong usage")

type command struct {
	name  string
	usage string

	// Restore stored session and refuse to run anonymously
	auth bool

	run func(ctx context.Context, app *App, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{name: "login", usage: "login --email E [--password P]", run: loginCmd},
		{name: "register", usage: "register --email E --first-name F --last-name L [--password P]", run: registerCmd},
		{name: "logout", usage: "logout", run: logoutCmd},
		{name: "status", usage: "status", run: statusCmd},
		{name: "whoami", usage: "whoami", auth: true, run: whoamiCmd},
		{name: "profile", usage: "profile [--first-name F] [--last-name L] [--phone P] [--bio B]", auth: true, run: profileCmd},
		{name: "passwd", usage: "passwd --old OLD --new NEW", auth: true, run: passwdCmd},

		{name: "trips", usage: "trips [--upcoming | --past | --search Q]", auth: true, run: tripsCmd},
		{name: "trip", usage: "trip show|create|update|delete ...", auth: true, run: tripCmd},
		{name: "destinations", usage: "destinations TRIP", auth: true, run: destinationsCmd},
		{name: "destination", usage: "destination add|delete ...", auth: true, run: destinationCmd},
		{name: "activities", usage: "activities DESTINATION", auth: true, run: activitiesCmd},
		{name: "activity", usage: "activity add|done|delete ...", auth: true, run: activityCmd},
		{name: "route", usage: "route TRIP", auth: true, run: routeCmd},

		{name: "expenses", usage: "expenses TRIP", auth: true, run: expensesCmd},
		{name: "expense", usage: "expense add|delete ...", auth: true, run: expenseCmd},
		{name: "budget", usage: "budget TRIP [--set AMOUNT --currency USD]", auth: true, run: budgetCmd},

		{name: "collaborators", usage: "collaborators TRIP", auth: true, run: collaboratorsCmd},
		{name: "invite", usage: "invite --trip T --email E [--role viewer] [--message M]", auth: true, run: inviteCmd},
		{name: "invitations", usage: "invitations TRIP", auth: true, run: invitationsCmd},
		{name: "respond", usage: "respond INVITATION accept|decline", auth: true, run: respondCmd},

		{name: "docs", usage: "docs TRIP", auth: true, run: docsCmd},
		{name: "upload", usage: "upload --trip T --title TITLE [--type other] FILE", auth: true, run: uploadCmd},

		{name: "checklist", usage: "checklist [--trip T] [add TEXT | toggle ID | edit ID TEXT | remove ID | clear | reset]", run: checklistCmd},
		{name: "weather", usage: "weather [--days N] [--forecast] CITY", run: weatherCmd},
	}
}

func findCommand(name string) (command, bool) {
	for _, cmd := range commands {
		if cmd.name == name {
			return cmd, true
		}
	}
	return command{}, false
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, "Usage: triply [global flags] COMMAND [args]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	for _, cmd := range commands {
		fmt.Fprintf(out, "  %s\n", cmd.usage)
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Run 'triply --help' to see global flags.")
}

func newFlagSet(name string, out io.Writer) *pflag.FlagSet {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(out)
	return fs
}

// Positional argument or usage error
func arg(args []string, i int, name string) (string, error) {
	if i >= len(args) || args[i] == "" {
		return "", fmt.Errorf("%w: %s is required", errUsage, name)
	}
	return args[i], nil
}

func idArg(args []string, i int, name string) (models.ID, error) {
	v, err := arg(args, i, name)
	return models.ID(v), err
}

// Empty string means zero
func parseDecimal(name string, v string) (decimal.Decimal, error) {
	if v == "" {
		return decimal.Zero, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %s must be a number", errUsage, name)
	}
	return d, nil
}

// Empty string means unknown
func parseNullDecimal(name string, v string) (decimal.NullDecimal, error) {
	if v == "" {
		return decimal.NullDecimal{}, nil
	}
	d, err := parseDecimal(name, v)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}, nil
}

func table(out io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
}

func (a *App) password(flagValue string) string {
	if flagValue != "" || a.getenv == nil {
		return flagValue
	}
	return a.getenv("TRIPLY_PASSWORD")
}

// Auth

func loginCmd(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("login", app.out)
	email := fs.StringP("email", "e", "", "Account email")
	password := fs.StringP("password", "p", "", "Password, TRIPLY_PASSWORD is used if empty")
	if err := fs.Parse(args); err != nil {
		return err
	}

	user, err := app.Session.Login(ctx, models.Credentials{Email: *email, Password: app.password(*password)})
	if err != nil {
		return err
	}
	fmt.Fprintf(app.out, "Logged in as %s <%s>\n", user.DisplayName(), user.Email)
	return nil
}

func registerCmd(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("register", app.out)
	var reg models.Registration
	fs.StringVarP(&reg.Email, "email", "e", "", "Account email")
	fs.StringVar(&reg.Username, "username", "", "Username")
	fs.StringVar(&reg.FirstName, "first-name", "", "First name")
	fs.StringVar(&reg.LastName, "last-name", "", "Last name")
	fs.StringVar(&reg.Phone, "phone", "", "Phone")
	password := fs.StringP("password", "p", "", "Password, TRIPLY_PASSWORD is used if empty")
	if err := fs.Parse(args); err != nil {
		return err
	}
	reg.Password = app.password(*password)
	reg.Password2 = reg.Password

	user, err := app.Session.Register(ctx, reg)
	if err != nil {
		return err
	}
	if !app.Session.Authenticated() {
		fmt.Fprintln(app.out, "Account created, run 'triply login' to sign in")
		return nil
	}
	fmt.Fprintf(app.out, "Registered and logged in as %s <%s>\n", user.DisplayName(), user.Email)
	return nil
}

func logoutCmd(ctx context.Context, app *App, _ []string) error {
	if err := app.Session.Logout(ctx); err != nil {
		return err
	}
	fmt.Fprintln(app.out, "Logged out")
	return nil
}

func statusCmd(ctx context.Context, app *App, _ []string) error {
	err := app.Session.RestoreSession(ctx)

	fmt.Fprintf(app.out, "Profile: %s\n", app.Config.Profile)
	fmt.Fprintf(app.out, "Backend: %s\n", app.Client.BaseURL())
	fmt.Fprintf(app.out, "Status:  %s\n", app.Session.Status())
	if err != nil {
		return err
	}
	if !app.Session.Authenticated() {
		return nil
	}

	user := app.Session.CurrentUser()
	fmt.Fprintf(app.out, "User:    %s <%s>\n", user.DisplayName(), user.Email)

	pair, err := app.Tokens.Get(ctx)
	if err != nil {
		return err
	}
	if exp, err := session.AccessExpiry(pair.Access); err == nil {
		left := time.Until(exp).Round(time.Second)
		if left > 0 {
			fmt.Fprintf(app.out, "Access token expires in %s\n", left)
		} else {
			fmt.Fprintln(app.out, "Access token expired, it is refreshed on the next request")
		}
	}
	return nil
}

func whoamiCmd(_ context.Context, app *App, _ []string) error {
	user, err := app.Session.RequireUser()
	if err != nil {
		return err
	}
	w := table(app.out)
	fmt.Fprintf(w, "ID\t%s\n", user.ID)
	fmt.Fprintf(w, "Email\t%s\n", user.Email)
	fmt.Fprintf(w, "Username\t%s\n", user.Username)
	fmt.Fprintf(w, "Name\t%s\n", user.DisplayName())
	if user.Phone != "" {
		fmt.Fprintf(w, "Phone\t%s\n", user.Phone)
	}
	return w.Flush()
}

func profileCmd(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("profile", app.out)
	username := fs.String("username", "", "Username")
	firstName := fs.String("first-name", "", "First name")
	lastName := fs.String("last-name", "", "Last name")
	phone := fs.String("phone", "", "Phone")
	bio := fs.String("bio", "", "Bio")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Only flags given explicitly are sent
	var upd models.ProfileUpdate
	set := func(name string, v *string) *string {
		if fs.Changed(name) {
			return v
		}
		return nil
	}
	upd.Username = set("username", username)
	upd.FirstName = set("first-name", firstName)
	upd.LastName = set("last-name", lastName)
	upd.Phone = set("phone", phone)
	upd.Bio = set("bio", bio)

	user, err := app.Session.UpdateProfile(ctx, upd)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.out, "Profile updated: %s <%s>\n", user.DisplayName(), user.Email)
	return nil
}

func passwdCmd(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("passwd", app.out)
	var change models.PasswordChange
	fs.StringVar(&change.OldPassword, "old", "", "Current password")
	fs.StringVar(&change.NewPassword, "new", "", "New password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if err := app.Session.ChangePassword(ctx, change); err != nil {
		return err
	}
	fmt.Fprintln(app.out, "Password changed")
	return nil
}
