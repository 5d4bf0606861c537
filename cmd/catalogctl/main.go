package main

import (
	"log"
	"os"

	"catalog_admin_v1_202610/internal/cli"
)

func main() {
	app := cli.NewApp(os.Stdout, nil)
	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
