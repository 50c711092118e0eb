package main

import (
	"log"
	"os"

	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core"
	"github.com/amitkumarsingh01/GlobalEdutech-Admin/core/resource"
	"github.com/amitkumarsingh01/GlobalEdutech-Admin/services/restapi"
)

func main() {
	defer os.Exit(0)

	logger := log.New(os.Stderr, "ADMIN : ", log.LstdFlags)

	conf := core.NewConfig()
	client := restapi.NewClient(conf, nil)

	// start CLI
	cli := commandLine{
		reg:  resource.DefaultRegistry(),
		svc:  resource.NewService(client),
		auth: client,
		out:  os.Stdout,
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
