package clicmds

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"
	"gitlab.com/extmon/store"
)

// ReportsFlags for the reports command
func ReportsFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "datadir",
			Usage: "data directory",
			Value: "extmontmp",
		},
		&cli.StringFlag{
			Name:  "id",
			Usage: "session id to dump, lists all sessions when empty",
			Value: "",
		},
		&cli.StringFlag{
			Name:  "export",
			Usage: "directory to export the report as json, prints to stdout when empty",
			Value: "",
		},
	}
}

// Reports lists persisted sessions or dumps one by id
func Reports(ctx *cli.Context) error {
	reports := store.NewReportStore(ctx.String("datadir") + "/reports")
	if err := reports.Init(); err != nil {
		log.Error().Err(err).Msg("failed to open report store")
		return err
	}
	defer reports.Close()

	id := ctx.String("id")
	if id == "" {
		return listReports(reports)
	}

	report, err := reports.Get(id)
	if err != nil {
		return err
	}

	if dir := ctx.String("export"); dir != "" {
		path, err := store.WriteReportFile(dir, report)
		if err != nil {
			return err
		}
		fmt.Printf("report written to %s\n", path)
		return nil
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func listReports(reports *store.ReportStore) error {
	ids, err := reports.List()
	if err != nil {
		return err
	}
	if len(ids) == 0 {
		fmt.Println("no sessions recorded")
		return nil
	}
	for _, id := range ids {
		report, err := reports.Get(id)
		if err != nil {
			fmt.Printf("%s (unreadable: %s)\n", id, err)
			continue
		}
		fmt.Printf("%s  %s  %s  requests=%d findings=%d\n",
			report.ID,
			report.StartTime.Format("2006-01-02 15:04:05"),
			report.Name,
			report.Stats.TotalRequests,
			len(report.SuspiciousActivities))
	}
	return nil
}
