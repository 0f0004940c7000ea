package main

import "github.com/nvoss/flacward/internal/cli"

func main() {
	cli.Execute()
}
