package main

import (
	"github.com/sirupsen/logrus"

	"github.com/limaJavier/satkit/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		logrus.Fatal(err)
	}
}
