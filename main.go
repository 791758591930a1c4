package main

import "github.com/sw33tLie/covidboard/cmd"

func main() {
	cmd.Execute()
}
