// SPDX-License-Identifier: Apache-2.0
package main

import (
	"log"
	"os"

	"github.com/tliron/commonlog"

	"kansomid/internal/langserver"
)

const serverName = "kansomid"

func main() {
	commonlog.Configure(1, nil)

	log.Println("Starting kansomid language server...")
	if err := langserver.RunStdio(serverName); err != nil {
		log.Println("Error starting kansomid language server:", err)
		os.Exit(1)
	}
}
