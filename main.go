package main

import "github.com/jonesrussell/yophone-bot/cmd"

func main() {
	cmd.Main()
}
