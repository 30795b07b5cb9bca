package main

import "github.com/cheerioskun/testtool/internal/cmd"

func main() {
	cmd.Execute()
}
