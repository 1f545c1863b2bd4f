package main

import "github.com/frahmantamala/evaluation-criteria/cmd"

func main() {
	cmd.Execute()
}
