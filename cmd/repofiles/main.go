package main

import "github.com/cbout22/repofiles/internal/cli"

func main() {
	cli.Execute()
}
