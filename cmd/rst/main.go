package main

import "github.com/lukelzlz/rst/internal/cli"

func main() {
	cli.Execute()
}
