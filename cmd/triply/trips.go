package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/nkiryanov/triply/internal/budget"
	"github.com/nkiryanov/triply/internal/geo"
	"github.com/nkiryanov/triply/internal/models"
)

func tripsCmd(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("trips", app.out)
	upcoming := fs.Bool("upcoming", false, "Only upcoming trips")
	past := fs.Bool("past", false, "Only past trips")
	search := fs.String("search", "", "Search by title or destination")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var (
		page models.Page[models.Trip]
		err  error
	)
	switch {
	case *upcoming:
		page, err = app.Client.Trips.Upcoming(ctx)
	case *past:
		page, err = app.Client.Trips.Past(ctx)
	case *search != "":
		page, err = app.Client.Trips.Search(ctx, *search)
	default:
		page, err = app.Client.Trips.List(ctx)
	}
	if err != nil {
		return err
	}

	if len(page.Results) == 0 {
		fmt.Fprintln(app.out, "No trips yet")
		return nil
	}
	w := table(app.out)
	fmt.Fprintln(w, "ID\tTITLE\tDESTINATION\tDATES\tDAYS\tBUDGET")
	for _, t := range page.Results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s..%s\t%d\t%s\n",
			t.ID, t.Title, t.Destination, t.StartDate, t.EndDate, t.DurationDays, budget.Format(t.Budget, t.Currency))
	}
	return w.Flush()
}

func tripFlags(fs *pflag.FlagSet) (in *models.TripInput, amount *string) {
	in = &models.TripInput{}
	fs.StringVar(&in.Title, "title", "", "Title")
	fs.StringVar(&in.Description, "description", "", "Description")
	fs.StringVar(&in.Destination, "destination", "", "Destination")
	fs.StringVar(&in.StartDate, "start", "", "Start date, YYYY-MM-DD")
	fs.StringVar(&in.EndDate, "end", "", "End date, YYYY-MM-DD")
	fs.StringVar(&in.Currency, "currency", models.CurrencyUSD, "Currency (USD, INR)")
	fs.BoolVar(&in.IsPublic, "public", false, "Share trip publicly")
	amount = fs.String("budget", "", "Budget amount")
	return in, amount
}

func tripCmd(ctx context.Context, app *App, args []string) error {
	action, err := arg(args, 0, "action")
	if err != nil {
		return err
	}
	args = args[1:]

	switch action {
	case "show":
		id, err := idArg(args, 0, "trip id")
		if err != nil {
			return err
		}
		trip, err := app.Client.Trips.Get(ctx, id)
		if err != nil {
			return err
		}
		printTrip(app.out, trip)
		return nil

	case "create", "update":
		fs := newFlagSet("trip "+action, app.out)
		in, amount := tripFlags(fs)
		if err := fs.Parse(args); err != nil {
			return err
		}
		if in.Budget, err = parseDecimal("budget", *amount); err != nil {
			return err
		}

		var trip models.Trip
		if action == "create" {
			trip, err = app.Client.Trips.Create(ctx, *in)
		} else {
			var id models.ID
			if id, err = idArg(fs.Args(), 0, "trip id"); err != nil {
				return err
			}
			trip, err = app.Client.Trips.Update(ctx, id, *in)
		}
		if err != nil {
			return err
		}
		printTrip(app.out, trip)
		return nil

	case "delete":
		id, err := idArg(args, 0, "trip id")
		if err != nil {
			return err
		}
		if err := app.Client.Trips.Delete(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(app.out, "Trip %s deleted\n", id)
		return nil

	default:
		return fmt.Errorf("%w: unknown trip action %q", errUsage, action)
	}
}

func printTrip(out io.Writer, t models.Trip) {
	w := table(out)
	fmt.Fprintf(w, "ID\t%s\n", t.ID)
	fmt.Fprintf(w, "Title\t%s\n", t.Title)
	fmt.Fprintf(w, "Destination\t%s\n", t.Destination)
	fmt.Fprintf(w, "Dates\t%s..%s (%d days)\n", t.StartDate, t.EndDate, t.DurationDays)
	fmt.Fprintf(w, "Budget\t%s\n", budget.Format(t.Budget, t.Currency))
	if t.Description != "" {
		fmt.Fprintf(w, "Description\t%s\n", t.Description)
	}
	_ = w.Flush()
}

// Itinerary

func destinationsCmd(ctx context.Context, app *App, args []string) error {
	trip, err := idArg(args, 0, "trip id")
	if err != nil {
		return err
	}
	page, err := app.Client.Itinerary.Destinations(ctx, trip)
	if err != nil {
		return err
	}

	w := table(app.out)
	fmt.Fprintln(w, "ID\tDAY\tNAME\tLOCATION\tACTIVITIES")
	for _, d := range page.Results {
		location := "-"
		if c, ok := d.Coordinates(); ok {
			location = fmt.Sprintf("%.4f,%.4f", c.Lat, c.Lng)
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%d\n", d.ID, d.DayNumber, d.Name, location, d.ActivitiesCount)
	}
	return w.Flush()
}

func destinationCmd(ctx context.Context, app *App, args []string) error {
	action, err := arg(args, 0, "action")
	if err != nil {
		return err
	}
	args = args[1:]

	switch action {
	case "add":
		fs := newFlagSet("destination add", app.out)
		var in models.DestinationInput
		trip := fs.String("trip", "", "Trip id")
		fs.StringVar(&in.Name, "name", "", "Name")
		fs.StringVar(&in.Address, "address", "", "Address")
		fs.IntVar(&in.DayNumber, "day", 1, "Day of the trip")
		fs.StringVar(&in.Notes, "notes", "", "Notes")
		lat := fs.String("lat", "", "Latitude")
		lng := fs.String("lng", "", "Longitude")
		if err := fs.Parse(args); err != nil {
			return err
		}
		in.Trip = models.ID(*trip)
		if in.Latitude, err = parseNullDecimal("lat", *lat); err != nil {
			return err
		}
		if in.Longitude, err = parseNullDecimal("lng", *lng); err != nil {
			return err
		}

		d, err := app.Client.Itinerary.CreateDestination(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(app.out, "Destination %s added to day %d\n", d.ID, d.DayNumber)
		return nil

	case "delete":
		id, err := idArg(args, 0, "destination id")
		if err != nil {
			return err
		}
		if err := app.Client.Itinerary.DeleteDestination(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(app.out, "Destination %s deleted\n", id)
		return nil

	default:
		return fmt.Errorf("%w: unknown destination action %q", errUsage, action)
	}
}

func activitiesCmd(ctx context.Context, app *App, args []string) error {
	destination, err := idArg(args, 0, "destination id")
	if err != nil {
		return err
	}
	page, err := app.Client.Itinerary.Activities(ctx, destination)
	if err != nil {
		return err
	}

	w := table(app.out)
	fmt.Fprintln(w, "ID\tDONE\tTIME\tTITLE\tCATEGORY\tCOST")
	for _, a := range page.Results {
		done := " "
		if a.IsCompleted {
			done = "x"
		}
		fmt.Fprintf(w, "%s\t[%s]\t%s\t%s\t%s\t%s\n", a.ID, done, a.StartTime, a.Title, a.Category, a.EstimatedCost.StringFixed(2))
	}
	return w.Flush()
}

func activityCmd(ctx context.Context, app *App, args []string) error {
	action, err := arg(args, 0, "action")
	if err != nil {
		return err
	}
	args = args[1:]

	switch action {
	case "add":
		fs := newFlagSet("activity add", app.out)
		var in models.ActivityInput
		destination := fs.String("destination", "", "Destination id")
		fs.StringVar(&in.Title, "title", "", "Title")
		fs.StringVar(&in.Description, "description", "", "Description")
		fs.StringVar(&in.Category, "category", models.ActivityOther, "Category")
		fs.StringVar(&in.StartTime, "start", "", "Start time, HH:MM")
		fs.StringVar(&in.EndTime, "end", "", "End time, HH:MM")
		fs.StringVar(&in.BookingURL, "booking-url", "", "Booking link")
		cost := fs.String("cost", "", "Estimated cost")
		if err := fs.Parse(args); err != nil {
			return err
		}
		in.Destination = models.ID(*destination)
		if in.EstimatedCost, err = parseDecimal("cost", *cost); err != nil {
			return err
		}

		a, err := app.Client.Itinerary.CreateActivity(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(app.out, "Activity %s added\n", a.ID)
		return nil

	case "done", "undo":
		id, err := idArg(args, 0, "activity id")
		if err != nil {
			return err
		}
		a, err := app.Client.Itinerary.SetActivityCompleted(ctx, id, action == "done")
		if err != nil {
			return err
		}
		fmt.Fprintf(app.out, "Activity %s completed: %t\n", a.ID, a.IsCompleted)
		return nil

	case "delete":
		id, err := idArg(args, 0, "activity id")
		if err != nil {
			return err
		}
		if err := app.Client.Itinerary.DeleteActivity(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(app.out, "Activity %s deleted\n", id)
		return nil

	default:
		return fmt.Errorf("%w: unknown activity action %q", errUsage, action)
	}
}

func routeCmd(ctx context.Context, app *App, args []string) error {
	trip, err := idArg(args, 0, "trip id")
	if err != nil {
		return err
	}
	page, err := app.Client.Itinerary.Destinations(ctx, trip)
	if err != nil {
		return err
	}

	route, err := geo.BuildRoute(page.Results)
	if err != nil {
		return err
	}

	w := table(app.out)
	for _, leg := range route.Legs {
		fmt.Fprintf(w, "%s\t->\t%s\t%.1f km\n", leg.From, leg.To, leg.DistanceKm)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(app.out, "Total: %.1f km, about %.1f hours on the road\n", route.TotalKm, route.EstimatedHours)

	if app.Config.MapsAPIKey != "" {
		fmt.Fprintf(app.out, "Map: %s\n", geo.StaticMapURL(route.Stops[0].Point, geo.DefaultZoom, app.Config.MapsAPIKey))
	}
	return nil
}

// Budget

func expensesCmd(ctx context.Context, app *App, args []string) error {
	trip, err := idArg(args, 0, "trip id")
	if err != nil {
		return err
	}
	page, err := app.Client.Budget.Expenses(ctx, trip)
	if err != nil {
		return err
	}

	w := table(app.out)
	fmt.Fprintln(w, "ID\tDATE\tTITLE\tCATEGORY\tAMOUNT")
	for _, e := range page.Results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.ID, e.Date, e.Title, e.Category, e.Amount.StringFixed(2))
	}
	fmt.Fprintf(w, "\t\tTotal\t\t%s\n", budget.Total(page.Results).StringFixed(2))
	return w.Flush()
}

func expenseCmd(ctx context.Context, app *App, args []string) error {
	action, err := arg(args, 0, "action")
	if err != nil {
		return err
	}
	args = args[1:]

	switch action {
	case "add":
		fs := newFlagSet("expense add", app.out)
		var in models.ExpenseInput
		trip := fs.String("trip", "", "Trip id")
		fs.StringVar(&in.Title, "title", "", "Title")
		fs.StringVar(&in.Description, "description", "", "Description")
		fs.StringVar(&in.Category, "category", models.ExpenseOther, "Category")
		fs.StringVar(&in.ExpenseType, "type", models.ExpensePersonal, "Expense type (personal, group)")
		fs.StringVar(&in.Date, "date", "", "Date, YYYY-MM-DD")
		amount := fs.String("amount", "", "Amount")
		if err := fs.Parse(args); err != nil {
			return err
		}
		in.Trip = models.ID(*trip)
		if in.Amount, err = parseDecimal("amount", *amount); err != nil {
			return err
		}

		e, err := app.Client.Budget.CreateExpense(ctx, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(app.out, "Expense %s added: %s\n", e.ID, e.Amount.StringFixed(2))
		return nil

	case "delete":
		id, err := idArg(args, 0, "expense id")
		if err != nil {
			return err
		}
		if err := app.Client.Budget.DeleteExpense(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(app.out, "Expense %s deleted\n", id)
		return nil

	default:
		return fmt.Errorf("%w: unknown expense action %q", errUsage, action)
	}
}

func budgetCmd(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("budget", app.out)
	set := fs.String("set", "", "Set total budget")
	currency := fs.String("currency", models.CurrencyUSD, "Currency (USD, INR)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	trip, err := idArg(fs.Args(), 0, "trip id")
	if err != nil {
		return err
	}

	var summary models.BudgetSummary
	if *set != "" {
		total, err := parseDecimal("set", *set)
		if err != nil {
			return err
		}
		summary, err = app.Client.Budget.UpdateBudget(ctx, trip, models.BudgetInput{Currency: *currency, TotalBudget: total})
		if err != nil {
			return err
		}
	} else {
		if summary, err = app.Client.Budget.Summary(ctx, trip); err != nil {
			return err
		}
	}
	if summary.Currency != "" {
		*currency = summary.Currency
	}

	w := table(app.out)
	fmt.Fprintf(w, "Budget\t%s\n", budget.Format(summary.TotalBudget, *currency))
	fmt.Fprintf(w, "Spent\t%s (%s%%)\n", budget.Format(summary.TotalSpent, *currency),
		budget.PercentUsed(summary.TotalSpent, summary.TotalBudget).StringFixed(1))
	fmt.Fprintf(w, "Remaining\t%s\n", budget.Format(summary.Remaining, *currency))
	for _, c := range budget.SortedByAmount(summary.ExpensesByCategory) {
		fmt.Fprintf(w, "  %s\t%s\n", c.Category, budget.Format(c.Amount, *currency))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if alert, ok := budget.CheckSummary(summary, *currency); ok {
		fmt.Fprintf(app.out, "%s %s\n", alert.Title, alert.Message)
	}
	return nil
}

// Collaboration

func collaboratorsCmd(ctx context.Context, app *App, args []string) error {
	trip, err := idArg(args, 0, "trip id")
	if err != nil {
		return err
	}
	page, err := app.Client.Collaboration.Collaborators(ctx, trip)
	if err != nil {
		return err
	}

	w := table(app.out)
	fmt.Fprintln(w, "ID\tUSER\tROLE")
	for _, c := range page.Results {
		who := c.User.String()
		if c.UserDetails != nil {
			who = c.UserDetails.Email
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", c.ID, who, c.Role)
	}
	return w.Flush()
}

func inviteCmd(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("invite", app.out)
	var in models.InvitationInput
	trip := fs.String("trip", "", "Trip id")
	fs.StringVar(&in.InviteeEmail, "email", "", "Who to invite")
	fs.StringVar(&in.Role, "role", models.RoleViewer, "Role (editor, viewer)")
	fs.StringVar(&in.Message, "message", "", "Personal message")
	if err := fs.Parse(args); err != nil {
		return err
	}
	in.Trip = models.ID(*trip)

	inv, err := app.Client.Collaboration.Invite(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.out, "Invitation %s sent to %s\n", inv.ID, inv.InviteeEmail)
	return nil
}

func invitationsCmd(ctx context.Context, app *App, args []string) error {
	trip, err := idArg(args, 0, "trip id")
	if err != nil {
		return err
	}
	page, err := app.Client.Collaboration.Invitations(ctx, trip)
	if err != nil {
		return err
	}

	w := table(app.out)
	fmt.Fprintln(w, "ID\tEMAIL\tROLE\tSTATUS")
	for _, inv := range page.Results {
		status := inv.Status
		if inv.IsExpired {
			status = models.InvitationExpired
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", inv.ID, inv.InviteeEmail, inv.Role, status)
	}
	return w.Flush()
}

func respondCmd(ctx context.Context, app *App, args []string) error {
	id, err := idArg(args, 0, "invitation id")
	if err != nil {
		return err
	}
	action, err := arg(args, 1, "action")
	if err != nil {
		return err
	}

	inv, err := app.Client.Collaboration.Respond(ctx, id, action)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.out, "Invitation %s: %s\n", inv.ID, inv.Status)
	return nil
}

// Documents

func docsCmd(ctx context.Context, app *App, args []string) error {
	trip, err := idArg(args, 0, "trip id")
	if err != nil {
		return err
	}
	page, err := app.Client.Documents.List(ctx, trip)
	if err != nil {
		return err
	}

	w := table(app.out)
	fmt.Fprintln(w, "ID\tTYPE\tTITLE\tSIZE")
	for _, d := range page.Results {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", d.ID, d.DocumentType, d.Title, d.FileSize)
	}
	return w.Flush()
}

func uploadCmd(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("upload", app.out)
	var in models.DocumentUpload
	trip := fs.String("trip", "", "Trip id")
	fs.StringVar(&in.Title, "title", "", "Title")
	fs.StringVar(&in.DocumentType, "type", "other", "Type (passport, visa, ticket, booking, insurance, other)")
	fs.StringVar(&in.Description, "description", "", "Description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := arg(fs.Args(), 0, "file")
	if err != nil {
		return err
	}
	in.Trip = models.ID(*trip)
	in.FileName, in.Content, err = readFile(path)
	if err != nil {
		return err
	}

	doc, err := app.Client.Documents.Upload(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(app.out, "Document %s uploaded (%d bytes)\n", doc.ID, doc.FileSize)
	return nil
}
