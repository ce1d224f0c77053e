package main

import (
	"os"

	"github.com/zhazhalove/elasticsearch-azure-entra-mock-dataset/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
