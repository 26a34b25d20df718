package main

import "github.com/sana-a-khan/fabrix/cmd/fabrixctl/commands"

func main() {
	commands.Execute()
}
