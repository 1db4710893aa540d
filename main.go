package main

import "github.com/frahmantamala/ewaste-management/cmd"

func main() {
	cmd.Execute()
}
