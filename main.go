package main

import "github.com/circa10a/appointment-reminder/cmd"

func main() {
	cmd.Execute()
}
