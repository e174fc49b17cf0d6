package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"miru/internal/dashboard"
	"miru/internal/gateway"
	"miru/internal/message"
	"miru/internal/metrics"
	"miru/internal/models"
	"miru/internal/report"

	"github.com/urfave/cli/v2"
)

const msgUnexpected = "Something went wrong."

func fieldFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "name", Usage: "farmer name"},
		&cli.StringFlag{Name: "phone", Usage: "telephone number"},
		&cli.StringFlag{Name: "tubes", Usage: "number of tubes"},
		&cli.StringFlag{Name: "date", Usage: "booking date, YYYY-MM-DD"},
		&cli.StringFlag{Name: "location", Usage: "farm location"},
	}
}

func (a *app) commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "list",
			Usage: "show bookings",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "filter by name, location or phone"},
				&cli.IntFlag{Name: "page", Value: 1},
				&cli.IntFlag{Name: "page-size", Value: dashboard.DefaultPageSize},
			},
			Action: a.list,
		},
		{
			Name:   "add",
			Usage:  "create a booking",
			Flags:  fieldFlags(),
			Action: a.add,
		},
		{
			Name:      "edit",
			Usage:     "change a booking; omitted fields keep their value",
			ArgsUsage: "<id>",
			Flags:     fieldFlags(),
			Action:    a.edit,
		},
		{
			Name:      "delete",
			Usage:     "remove a booking",
			ArgsUsage: "<id>",
			Action:    a.remove,
		},
		{
			Name:   "report",
			Usage:  "print the booking report",
			Action: a.printReport,
		},
		{
			Name:  "pdf",
			Usage: "write the PDF report",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output file (default Miru_Report_<date>.pdf)"},
			},
			Action: a.pdf,
		},
		{
			Name:  "export",
			Usage: "write the bookings spreadsheet",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Value: report.XLSXFilename},
			},
			Action: a.export,
		},
		{
			Name:      "remind",
			Usage:     "print the WhatsApp reminder for a booking",
			ArgsUsage: "<id>",
			Action:    a.remind,
		},
		{
			Name:   "status",
			Usage:  "check the remote store and the local mirror",
			Action: a.status,
		},
		{
			Name:   "upcoming",
			Usage:  "list deliveries that are still due",
			Action: a.upcoming,
		},
	}
}

func (a *app) today() models.Date {
	return models.DateOf(a.now())
}

func (a *app) list(c *cli.Context) error {
	all, src, err := a.gw.List(c.Context)
	if err != nil {
		return a.fail("list", err)
	}
	page := dashboard.Paginate(dashboard.Search(all, c.String("search")), c.Int("page"), c.Int("page-size"))
	return dashboard.RenderList(a.out, page, dashboard.KPIs(report.Aggregate(all, a.today())), src)
}

func (a *app) add(c *cli.Context) error {
	draft := models.Draft{
		Name:        c.String("name"),
		Phone:       c.String("phone"),
		Tubes:       c.String("tubes"),
		BookingDate: c.String("date"),
		Location:    c.String("location"),
	}
	fields, err := draft.Validate()
	if err != nil {
		return a.fail("create", err)
	}

	b, src, err := a.gw.Create(c.Context, fields)
	if err != nil {
		return a.fail("create", err)
	}
	fmt.Fprintln(a.out, "Booking saved.")
	return dashboard.RenderBooking(a.out, b, src)
}

func (a *app) edit(c *cli.Context) error {
	id, err := idArg(c)
	if err != nil {
		return err
	}
	current, _, err := a.gw.Find(c.Context, id)
	if err != nil {
		return a.fail("update", err)
	}

	draft := models.DraftFrom(current)
	overrides := map[string]*string{
		"name":     &draft.Name,
		"phone":    &draft.Phone,
		"tubes":    &draft.Tubes,
		"date":     &draft.BookingDate,
		"location": &draft.Location,
	}
	for flag, field := range overrides {
		if c.IsSet(flag) {
			*field = c.String(flag)
		}
	}

	fields, err := draft.Validate()
	if err != nil {
		return a.fail("update", err)
	}
	b, src, err := a.gw.Update(c.Context, id, fields)
	if err != nil {
		return a.fail("update", err)
	}
	fmt.Fprintln(a.out, "Booking updated.")
	return dashboard.RenderBooking(a.out, b, src)
}

func (a *app) remove(c *cli.Context) error {
	id, err := idArg(c)
	if err != nil {
		return err
	}
	src, err := a.gw.Delete(c.Context, id)
	if err != nil {
		return a.fail("delete", err)
	}
	_, err = fmt.Fprintf(a.out, "Booking %s deleted [%s].\n", id, dashboard.Badge(src))
	return err
}

func (a *app) summary(c *cli.Context) (report.Summary, error) {
	list, _, err := a.gw.List(c.Context)
	if err != nil {
		return report.Summary{}, a.fail("report", err)
	}
	return report.Aggregate(list, a.today()), nil
}

func (a *app) printReport(c *cli.Context) error {
	s, err := a.summary(c)
	if err != nil {
		return err
	}
	return dashboard.RenderSummary(a.out, s)
}

func (a *app) upcoming(c *cli.Context) error {
	s, err := a.summary(c)
	if err != nil {
		return err
	}
	return dashboard.RenderUpcoming(a.out, s.Upcoming)
}

func (a *app) pdf(c *cli.Context) error {
	s, err := a.summary(c)
	if err != nil {
		return err
	}
	now := a.now()
	out := c.String("out")
	if out == "" {
		out = report.PDFFilename(now)
	}
	if err := writeFile(out, func(w io.Writer) error { return report.WritePDF(w, s, now) }); err != nil {
		return a.fail("pdf", err)
	}
	metrics.IncExport("pdf")
	_, err = fmt.Fprintf(a.out, "Report written to %s\n", out)
	return err
}

func (a *app) export(c *cli.Context) error {
	list, _, err := a.gw.List(c.Context)
	if err != nil {
		return a.fail("export", err)
	}
	out := c.String("out")
	if err := writeFile(out, func(w io.Writer) error { return report.WriteXLSX(w, list) }); err != nil {
		return a.fail("export", err)
	}
	metrics.IncExport("xlsx")
	_, err = fmt.Fprintf(a.out, "%d bookings exported to %s\n", len(list), out)
	return err
}

func (a *app) remind(c *cli.Context) error {
	id, err := idArg(c)
	if err != nil {
		return err
	}
	b, _, err := a.gw.Find(c.Context, id)
	if err != nil {
		return a.fail("remind", err)
	}
	return dashboard.RenderReminder(a.out, message.Build(b))
}

func (a *app) status(c *cli.Context) error {
	remoteState := "reachable"
	if err := a.remote.HealthCheck(c.Context); err != nil {
		a.logger.Debug().Err(err).Msg("health check failed")
		remoteState = "unreachable"
	}
	local, err := a.local.Read(c.Context)
	if err != nil {
		return a.fail("status", err)
	}
	fmt.Fprintf(a.out, "Remote store: %s\n", remoteState)
	_, err = fmt.Fprintf(a.out, "Local mirror: %s (%d bookings)\n", a.mirrorDesc, len(local))
	return err
}

// fail prints validation details, the remote store's rejection or a generic
// message and sets a non-zero exit code.
func (a *app) fail(op string, err error) error {
	var (
		verr *models.ValidationError
		rej  *gateway.RejectedError
	)
	switch {
	case errors.As(err, &verr):
		_ = dashboard.RenderValidation(a.out, verr)
		return cli.Exit("", 1)
	case errors.As(err, &rej):
		return cli.Exit(rej.Err.Message, 1)
	case errors.Is(err, gateway.ErrNotFound):
		return cli.Exit("Booking not found.", 1)
	default:
		a.logger.Error().Err(err).Str("op", op).Msg("operation failed")
		return cli.Exit(msgUnexpected, 1)
	}
}

func idArg(c *cli.Context) (string, error) {
	if c.NArg() != 1 {
		return "", cli.Exit(fmt.Sprintf("usage: miru %s <id>", c.Command.Name), 2)
	}
	return c.Args().First(), nil
}

func writeFile(path string, render func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
