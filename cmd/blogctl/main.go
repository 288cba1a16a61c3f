package main

import (
	"os"

	"github.com/rylenlobo/blog-app-client/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
