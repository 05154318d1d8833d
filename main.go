package main

import (
	"context"
	"flag"
	"log"

	"github.com/allocd/allocd/app"
)

var mode string

func init() {
	flag.StringVar(&mode, "mode", "api", "Mode to run the app in: api or worker")

	flag.Parse()
}

func main() {
	a := app.Make(context.Background())
	defer a.Close()
	log.Print("Application building complete")

	var err error
	switch mode {
	case "api":
		log.Print("Listening for HTTP requests")
		err = a.Handle()
	case "worker":
		log.Print("Running worker")
		err = a.Work()
	}
	if err != nil {
		log.Fatal(err)
	}

	log.Print("Shutting down")
}
