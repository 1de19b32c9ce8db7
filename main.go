package main

import "github.com/tunaaoguzhann/dataforge/cmd"

func main() {
	cmd.Execute()
}
