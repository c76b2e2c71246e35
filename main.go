package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
	"gitlab.com/extmon/clicmds"
)

func main() {
	app := cli.NewApp()
	app.Name = "extmon"
	app.Version = "0.1"
	app.Usage = "Observe what a browser extension really does"
	app.Commands = []*cli.Command{
		{
			Name:    "monitor",
			Aliases: []string{"m"},
			Usage:   "run a monitoring session until interrupted",
			Action:  clicmds.Monitor,
			Flags:   clicmds.MonitorFlags(),
		},
		{
			Name:    "reports",
			Aliases: []string{"r"},
			Usage:   "list or dump recorded sessions",
			Action:  clicmds.Reports,
			Flags:   clicmds.ReportsFlags(),
		},
	}
	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
