package main

import "github.com/eslsoft/kovoc/cmd"

func main() {
	cmd.Execute()
}
