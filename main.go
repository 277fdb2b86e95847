package main

import "github.com/mapforge/hlockit/cmd"

func main() {
	cmd.Execute()
}
