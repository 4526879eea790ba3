// Command server runs the BookMate API: a book sharing marketplace where
// readers list books and exchange borrow requests.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
)

func main() {
	migrateCmd := flag.String("migrate", "", "run a migration command (up, down, status) and exit")
	flag.Parse()

	if err := run(*migrateCmd); err != nil {
		slog.Error("server exited with error", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
