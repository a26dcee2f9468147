//go:build mage

package main

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// lineCount holds production and test line totals for one directory.
type lineCount struct {
	prod, test int
}

// Stats prints Go lines of code for each top-level directory.
func Stats() error {
	counts := map[string]*lineCount{}

	err := filepath.WalkDir(".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path == "vendor" || path == ".git" || path == binaryDir || strings.HasPrefix(path, "_") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, ".go") {
			return nil
		}
		n, err := countLines(path)
		if err != nil {
			return nil
		}
		top, _, _ := strings.Cut(filepath.ToSlash(path), "/")
		c, ok := counts[top]
		if !ok {
			c = &lineCount{}
			counts[top] = c
		}
		if strings.HasSuffix(path, "_test.go") {
			c.test += n
		} else {
			c.prod += n
		}
		return nil
	})
	if err != nil {
		return err
	}

	dirs := make([]string, 0, len(counts))
	for dir := range counts {
		dirs = append(dirs, dir)
	}
	slices.Sort(dirs)

	var total lineCount
	fmt.Printf("%-12s %8s %8s\n", "dir", "prod", "test")
	for _, dir := range dirs {
		c := counts[dir]
		fmt.Printf("%-12s %8d %8d\n", dir, c.prod, c.test)
		total.prod += c.prod
		total.test += c.test
	}
	fmt.Printf("%-12s %8d %8d\n", "total", total.prod, total.test)
	return nil
}

func countLines(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	count := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		count++
	}
	return count, scanner.Err()
}
