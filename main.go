package main

import "github.com/nhirsama/GasSentinel-Gateway/cli"

func main() {
	cli.Run()
}
