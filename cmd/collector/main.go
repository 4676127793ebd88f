package main

import "github.com/adreach/adsdk/internal/cli"

func main() {
	cli.Execute()
}
