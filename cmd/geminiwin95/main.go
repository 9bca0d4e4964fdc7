package main

import "github.com/diogo/geminiwin95/internal/commands"

func main() {
	commands.Execute()
}
