package main

import "github.com/sidebuddy/sidebuddy/internal/commands"

func main() {
	commands.Execute()
}
