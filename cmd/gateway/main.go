package main

import (
	"log"

	"github.com/kaaratech/mcq-assessment/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		log.Fatal(err)
	}
}
