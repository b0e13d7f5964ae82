package main

import "github.com/K0NGR3SS/dailycheck/commands"

func main() {
	commands.Execute()
}
