package main

import "pedeai/cli"

func main() {
	cli.Execute()
}
