package main

import "github.com/olivierh59500/swirl/cmd"

func main() {
	cmd.Execute()
}
