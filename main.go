package main

import "github.com/davzula/blinkwatch/cmd"

func main() {
	cmd.Execute()
}
