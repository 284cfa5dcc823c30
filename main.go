package main

import "github.com/tanq16/hlsget/cmd"

func main() {
	cmd.Execute()
}
