package main

import (
	"log"
	"os"

	"github.com/Arkiv-Network/editions/cmd/editions/account"
	"github.com/Arkiv-Network/editions/cmd/editions/edition"
	"github.com/Arkiv-Network/editions/cmd/editions/registry"
	"github.com/Arkiv-Network/editions/cmd/editions/serve"
	"github.com/urfave/cli/v2"
)

func main() {

	app := &cli.App{
		Name:  "editions",
		Usage: "Fixed supply edition sales",

		Commands: []*cli.Command{
			account.Account(),
			edition.Edition(),
			registry.Registry(),
			serve.Serve(),
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		log.Fatal(err)
	}
}
