package main

import "github.com/themanforfree/jwglxt/cmd"

func main() {
	cmd.Execute()
}
