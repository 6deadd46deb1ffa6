package main

import "github.com/ThatOtherAndrew/Sketchmatch/cmd"

func main() {
	cmd.Execute()
}
