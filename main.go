package main

import "github.com/brogergvhs/ficpub/cmd"

func main() {
	cmd.Execute()
}
