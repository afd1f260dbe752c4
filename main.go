package main

import "github.com/kasuboski/medialink/cmd"

func main() {
	cmd.Execute()
}
