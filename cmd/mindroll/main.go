package main

import "github.com/mcoot/mindroll/internal/cli"

func main() {
	cli.Execute()
}
