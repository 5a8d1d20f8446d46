package main

import "expoplan/cmd"

func main() {
	cmd.Execute()
}
