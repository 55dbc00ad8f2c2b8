package main

import (
	"github.com/urfave/cli"
)

func configure(app *cli.App) {
	app.Flags = configureLog(app.Flags)
	app.Before = setupLog
	serveCMD := makeServeCMD()
	migrationCMD := makePGMigrationCMD()
	searchCMD := makeSearchCMD()
	sessionCMDs := makeSessionCMDs()
	app.Commands = append([]cli.Command{serveCMD, migrationCMD, searchCMD}, sessionCMDs...)
}
