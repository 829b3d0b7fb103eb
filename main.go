package main

import "github.com/icco/noisemaker/cmd"

func main() {
	cmd.Execute()
}
