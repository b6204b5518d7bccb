package main

import "hifz/engine/cmd"

func main() {
	cmd.Execute()
}
