package main

import "github.com/prasetya/phoneshop/cmd"

func main() {
	cmd.Start()
}
