package main

import "github.com/mchmarny/smecredit/pkg/cli"

func main() {
	cli.Execute()
}
