package main

import "github.com/johnquangdev/voice-call-analytics/internal/cli"

func main() {
	cli.Execute()
}
