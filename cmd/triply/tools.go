package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nkiryanov/triply/internal/checklist"
	"github.com/nkiryanov/triply/internal/models"
)

func readFile(path string) (name string, content []byte, err error) {
	content, err = os.ReadFile(path)
	if err != nil {
		return "", nil, fmt.Errorf("error while reading file. Err: %w", err)
	}
	return filepath.Base(path), content, nil
}

func checklistCmd(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("checklist", app.out)
	trip := fs.String("trip", "", "Trip id, shared checklist if empty")
	category := fs.String("category", checklist.CategoryOther, "Category of added item")
	if err := fs.Parse(args); err != nil {
		return err
	}
	args = fs.Args()
	list := checklist.New(app.Local, models.ID(*trip))

	action := "list"
	if len(args) > 0 {
		action, args = args[0], args[1:]
	}

	switch action {
	case "list":
		// printed below
	case "add":
		item, err := list.Add(ctx, strings.Join(args, " "), *category)
		if err != nil {
			return err
		}
		fmt.Fprintf(app.out, "Added %q to %s\n", item.Text, item.Category)
	case "toggle":
		id, err := arg(args, 0, "item id")
		if err != nil {
			return err
		}
		if _, err := list.Toggle(ctx, id); err != nil {
			return err
		}
	case "edit":
		id, err := arg(args, 0, "item id")
		if err != nil {
			return err
		}
		if _, err := list.Edit(ctx, id, strings.Join(args[1:], " ")); err != nil {
			return err
		}
	case "remove":
		id, err := arg(args, 0, "item id")
		if err != nil {
			return err
		}
		if err := list.Remove(ctx, id); err != nil {
			return err
		}
	case "clear":
		n, err := list.ClearCompleted(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(app.out, "Removed %d packed items\n", n)
	case "reset":
		if err := list.Reset(ctx); err != nil {
			return err
		}
	default:
		return fmt.Errorf("%w: unknown checklist action %q", errUsage, action)
	}

	items, err := list.Items(ctx)
	if err != nil {
		return err
	}
	progress := checklist.ProgressOf(items)
	fmt.Fprintf(app.out, "Packed %d of %d (%d%%)\n", progress.Checked, progress.Total, progress.Percent)

	for _, group := range checklist.Grouped(items) {
		fmt.Fprintf(app.out, "%s\n", group.Category)
		for _, item := range group.Items {
			mark := " "
			if item.Checked {
				mark = "x"
			}
			fmt.Fprintf(app.out, "  [%s] %s  (%s)\n", mark, item.Text, item.ID)
		}
	}
	return nil
}

func weatherCmd(ctx context.Context, app *App, args []string) error {
	fs := newFlagSet("weather", app.out)
	forecast := fs.Bool("forecast", false, "Show forecast instead of current weather")
	days := fs.Int("days", 0, "Days of forecast")
	if err := fs.Parse(args); err != nil {
		return err
	}
	city := strings.Join(fs.Args(), " ")

	if !*forecast && *days == 0 {
		current, err := app.Weather.Current(ctx, city)
		if err != nil {
			return err
		}
		w := table(app.out)
		fmt.Fprintf(w, "City\t%s\n", current.City)
		fmt.Fprintf(w, "Now\t%d°C, %s\n", current.Temp, current.Description)
		fmt.Fprintf(w, "Feels like\t%d°C\n", current.FeelsLike)
		fmt.Fprintf(w, "Min / Max\t%d°C / %d°C\n", current.TempMin, current.TempMax)
		fmt.Fprintf(w, "Humidity\t%d%%\n", current.Humidity)
		fmt.Fprintf(w, "Wind\t%.1f m/s\n", current.WindSpeed)
		return w.Flush()
	}

	forecastDays, err := app.Weather.Forecast(ctx, city, *days)
	if err != nil {
		return err
	}
	w := table(app.out)
	fmt.Fprintln(w, "DATE\tDAY\tNIGHT\tHUMIDITY\tSKY")
	for _, d := range forecastDays {
		fmt.Fprintf(w, "%s\t%d°C\t%d°C\t%d%%\t%s\n", d.Date, d.TempDay, d.TempNight, d.Humidity, d.Description)
	}
	return w.Flush()
}
