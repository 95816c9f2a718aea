package main

import "registry/cmd"

func main() {
	cmd.Execute()
}
