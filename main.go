package main

import "github.com/chrisdamba/foodmarket/cmd"

func main() {
	cmd.Execute()
}
