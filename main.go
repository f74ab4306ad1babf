package main

import "github.com/lepko/lepko/cmd"

func main() {
	cmd.Execute()
}
