package main

import "matchwave-backend/cmd"

func main() {
	cmd.Run()
}
