package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

func main() {
	name := flag.String("name", "", "migration name")
	flag.Parse()

	if *name == "" {
		slog.Error("migration name is required")
		os.Exit(1)
	}
	if strings.ContainsAny(*name, " ") {
		slog.Error("migration name must not contain spaces")
		os.Exit(1)
	}

	version := time.Now().UTC().Format("20060102150405")
	base := fmt.Sprintf("%s_%s", version, *name)
	upPath := filepath.Join("db", "migrations", base+".up.sql")
	downPath := filepath.Join("db", "migrations", base+".down.sql")

	if err := os.MkdirAll(filepath.Dir(upPath), 0o755); err != nil {
		slog.Error("create migrations dir failed", "error", err)
		os.Exit(1)
	}
	if err := writeFile(upPath, "-- up migration\n"); err != nil {
		slog.Error("create up migration failed", "error", err)
		os.Exit(1)
	}
	if err := writeFile(downPath, "-- down migration\n"); err != nil {
		slog.Error("create down migration failed", "error", err)
		os.Exit(1)
	}
	slog.Info("migration files created", "up", upPath, "down", downPath)
}

func writeFile(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("file already exists: %s", path)
	} else if !os.IsNotExist(err) {
		return err
	}
	return os.WriteFile(path, []byte(content), 0o644)
}
