// flavorcast はThe Dairy Godmotherのフレーバー予報と営業状態を答えるAPIサーバー兼CLI。
package main

import (
	"fmt"
	"os"

	"github.com/hitoshi/flavorcast/internal/app"
)

func main() {
	if err := app.Run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "flavorcast: %v\n", err)
		os.Exit(1)
	}
}
