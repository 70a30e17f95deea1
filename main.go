package main

import "github.com/twiced-technology-gmbh/focusboard/cmd"

func main() {
	cmd.Execute()
}
