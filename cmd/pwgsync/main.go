package main

import "github.com/pwgsync/pwgsync/internal/cli"

func main() {
	cli.Execute()
}
