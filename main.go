package main

import "osrc/cmd"

func main() {
	cmd.Execute()
}
