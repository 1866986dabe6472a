package main

import "github.com/KaramelBytes/linkeddata/cmd"

func main() {
	cmd.Execute()
}
