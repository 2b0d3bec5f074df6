package main

import "github.com/kyle-brindley/turbo-turtle/cmd"

func main() {
	cmd.Execute()
}
