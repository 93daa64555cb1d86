package main

import "github.com/gnames/gnbarcode/cmd"

func main() {
	cmd.Execute()
}
