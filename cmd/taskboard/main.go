package main

import "github.com/nhle/taskboard/internal/cli"

func main() {
	cli.Execute()
}
