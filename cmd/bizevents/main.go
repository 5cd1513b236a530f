package main

import "github.com/pfrederiksen/bizevents/internal/cli"

func main() {
	cli.Execute()
}
