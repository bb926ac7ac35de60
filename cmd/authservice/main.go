package main

import "authbench.evalgo.org/cli"

func main() {
	cli.Execute()
}
