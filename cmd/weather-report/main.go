package main

import "weather-report/internal/cli"

func main() {
	cli.Execute()
}
