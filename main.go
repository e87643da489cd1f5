package main

import (
	"paperwatch/cmd"
	"paperwatch/internal/logger"
)

func main() {
	logger.Init()
	cmd.Execute()
}
