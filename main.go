package main

import "github.com/quocvuong92/cmdrouter/cmd"

func main() {
	cmd.Execute()
}
