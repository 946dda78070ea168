package main

import "github.com/chrisuehlinger/domdebug/cmd"

func main() {
	cmd.Execute()
}
