package main

import "ruleform/cmd"

func main() {
	cmd.Execute()
}
