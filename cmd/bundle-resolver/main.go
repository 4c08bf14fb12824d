package main

import "bundle-resolver/internal/cli"

func main() {
	cli.Execute()
}
