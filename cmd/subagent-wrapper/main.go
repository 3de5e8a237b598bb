package main

import wrapper "subagent-wrapper/internal/app"

func main() {
	wrapper.Run()
}
