// Package main layr 命令行入口
package main

import (
	"fmt"
	"os"

	"layr-ai-api/internal/cli"
)

// Version 版本信息，构建时注入
var Version = "dev"

func main() {
	if err := cli.Execute(Version); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
