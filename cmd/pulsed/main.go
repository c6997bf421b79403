package main

import "github.com/statuskit/statuskit/pkg/cli"

func main() {
	cli.Execute()
}
