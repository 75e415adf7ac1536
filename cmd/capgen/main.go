package main

import "github.com/forPelevin/capgen/internal/cli"

func main() {
	cli.Main()
}
