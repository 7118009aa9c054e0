package main

import "github.com/shoalaudio/shoal/cmd"

func main() {
	cmd.Execute()
}
