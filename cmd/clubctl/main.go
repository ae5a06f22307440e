package main

import "github.com/mcoot/clubdesk/internal/cli"

func main() {
	cli.Execute()
}
