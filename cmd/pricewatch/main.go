package main

import "pricewatch/cmd/pricewatch/cmd"

func main() {
	cmd.Execute()
}
