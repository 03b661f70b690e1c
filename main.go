package main

import "github.com/ariebrainware/medibook/cmd"

func main() {
	cmd.Execute()
}
